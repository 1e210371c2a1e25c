package corpora

import (
	"context"

	"github.com/google/uuid"

	"github.com/tmoresby/veracity/pkg/pagination"
)

// System defines the public contract for corpus domain operations.
type System interface {
	Handler() *Handler

	List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Corpus], error)
	Find(ctx context.Context, id uuid.UUID) (*Corpus, error)
	Create(ctx context.Context, cmd CreateCommand) (*Corpus, error)
}
