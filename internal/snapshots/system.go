package snapshots

import (
	"context"

	"github.com/google/uuid"
)

// System defines the public contract for snapshot operations.
type System interface {
	Handler() *Handler

	ListByCorpus(ctx context.Context, corpusID uuid.UUID) ([]Snapshot, error)
	Find(ctx context.Context, id uuid.UUID) (*Snapshot, error)

	// Create freezes the supplied claim set into an immutable, hashed
	// snapshot. The corpus's live claim and source ids are recorded as
	// scope regardless of what the payload contains.
	Create(ctx context.Context, cmd CreateCommand) (*Snapshot, error)

	// Verify recomputes the snapshot hash from the persisted claim copy.
	// A mismatch is reported in the result, never as an error.
	Verify(ctx context.Context, id uuid.UUID) (*VerifyResult, error)
}
