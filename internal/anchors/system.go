package anchors

import (
	"context"

	"github.com/google/uuid"
)

// System defines the public contract for anchor domain operations.
type System interface {
	Handler() *Handler

	ListByCorpus(ctx context.Context, corpusID uuid.UUID) ([]Anchor, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]Anchor, error)
	Find(ctx context.Context, id uuid.UUID) (*Anchor, error)

	// Proof loads the anchor and its page record and recomputes the quote
	// from stored page text and offsets. Anchors without usable provenance
	// are refused with ErrNoProvenance.
	Proof(ctx context.Context, id uuid.UUID) (*ProofResult, error)
}
