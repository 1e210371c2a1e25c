package claims

import (
	"context"

	"github.com/google/uuid"
)

// System defines the public contract for claim domain operations.
type System interface {
	Handler() *Handler

	ListByCorpus(ctx context.Context, corpusID uuid.UUID) ([]Claim, error)
	Find(ctx context.Context, id uuid.UUID) (*Claim, error)

	// Create classifies and persists a claim. Every supplied anchor id
	// must name an anchor belonging to the corpus.
	Create(ctx context.Context, corpusID uuid.UUID, cmd CreateCommand) (*Claim, error)

	// Delete removes the claim row permanently. Snapshots and packets
	// that already captured the claim keep their copies.
	Delete(ctx context.Context, corpusID, id uuid.UUID) error
}
