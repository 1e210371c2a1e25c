package corpora

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tmoresby/veracity/internal/ledger"
	"github.com/tmoresby/veracity/pkg/pagination"
	"github.com/tmoresby/veracity/pkg/repository"
)

const corpusColumns = "id, purpose, created_at"

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a corpus repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "corpora"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Corpus], error) {
	page.Normalize(r.pagination)

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM corpora").Scan(&total); err != nil {
		return nil, fmt.Errorf("count corpora: %w", err)
	}

	q := "SELECT " + corpusColumns + " FROM corpora ORDER BY created_at DESC LIMIT $1 OFFSET $2"
	items, err := repository.QueryMany(ctx, r.db, q, []any{page.PageSize, page.Offset()}, scanCorpus)
	if err != nil {
		return nil, fmt.Errorf("query corpora: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Corpus, error) {
	q := "SELECT " + corpusColumns + " FROM corpora WHERE id = $1"

	c, err := repository.QueryOne(ctx, r.db, q, []any{id}, scanCorpus)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &c, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Corpus, error) {
	if !cmd.Purpose.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPurpose, cmd.Purpose)
	}

	id := uuid.New()
	q := `
		INSERT INTO corpora(id, purpose)
		VALUES ($1, $2)
		RETURNING ` + corpusColumns

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Corpus, error) {
		created, err := repository.QueryOne(ctx, tx, q, []any{id, string(cmd.Purpose)}, scanCorpus)
		if err != nil {
			return Corpus{}, err
		}

		_, err = ledger.Append(
			ctx, tx,
			created.ID,
			ledger.EventCorpusCreated,
			"corpus", created.ID.String(),
			map[string]any{"purpose": string(created.Purpose)},
		)
		if err != nil {
			return Corpus{}, err
		}

		return created, nil
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("corpus created", "id", c.ID, "purpose", c.Purpose)
	return &c, nil
}

func scanCorpus(s repository.Scanner) (Corpus, error) {
	var c Corpus
	err := s.Scan(&c.ID, &c.Purpose, &c.CreatedAt)
	return c, err
}
