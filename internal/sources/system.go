package sources

import (
	"context"

	"github.com/google/uuid"

	"github.com/tmoresby/veracity/pkg/pagination"
)

// System defines the public contract for source domain operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	List(ctx context.Context, corpusID uuid.UUID, page pagination.PageRequest) (*pagination.PageResult[Source], error)
	ListAll(ctx context.Context, corpusID uuid.UUID) ([]Source, error)
	Find(ctx context.Context, id uuid.UUID) (*Source, error)
	Create(ctx context.Context, cmd CreateCommand) (*Source, error)

	Pages(ctx context.Context, sourceID uuid.UUID) ([]PageRecord, error)
	FindPage(ctx context.Context, sourceID uuid.UUID, pageIndex int) (*PageRecord, error)
}
