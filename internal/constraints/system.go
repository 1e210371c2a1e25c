package constraints

import (
	"context"

	"github.com/google/uuid"
)

// System defines the public contract for constraint reads.
type System interface {
	Handler() *Handler

	ListByCorpus(ctx context.Context, corpusID uuid.UUID) ([]Constraint, error)
	Find(ctx context.Context, id uuid.UUID) (*Constraint, error)
}
