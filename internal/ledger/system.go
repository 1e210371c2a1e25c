package ledger

import (
	"context"

	"github.com/google/uuid"
)

// System defines the public contract for ledger operations. Appends happen
// through the package-level Append function inside the mutating system's
// transaction; this interface covers the read-side surface.
type System interface {
	Handler() *Handler

	List(ctx context.Context, corpusID uuid.UUID, limit int, filters Filters) ([]Event, error)
	Find(ctx context.Context, id uuid.UUID) (*Event, error)
	Count(ctx context.Context, corpusID uuid.UUID) (int, error)
	Verify(ctx context.Context, id uuid.UUID) (*VerifyResult, error)
}
