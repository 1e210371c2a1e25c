package constraints

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tmoresby/veracity/pkg/repository"
)

const constraintColumns = "id, corpus_id, type, summary, claim_id, anchor_ids, payload"

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a constraint repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "constraints"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) ListByCorpus(ctx context.Context, corpusID uuid.UUID) ([]Constraint, error) {
	q := "SELECT " + constraintColumns + " FROM constraints WHERE corpus_id = $1 ORDER BY id"

	items, err := repository.QueryMany(ctx, r.db, q, []any{corpusID}, scanConstraint)
	if err != nil {
		return nil, fmt.Errorf("query constraints: %w", err)
	}
	return items, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Constraint, error) {
	q := "SELECT " + constraintColumns + " FROM constraints WHERE id = $1"

	c, err := repository.QueryOne(ctx, r.db, q, []any{id}, scanConstraint)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrNotFound)
	}
	return &c, nil
}

func scanConstraint(s repository.Scanner) (Constraint, error) {
	var (
		c       Constraint
		anchors []byte
		payload []byte
	)
	err := s.Scan(
		&c.ID,
		&c.CorpusID,
		&c.Type,
		&c.Summary,
		&c.ClaimID,
		&anchors,
		&payload,
	)
	if err != nil {
		return c, err
	}

	if err := json.Unmarshal(anchors, &c.AnchorIDs); err != nil {
		return c, fmt.Errorf("decode anchor ids: %w", err)
	}
	if c.AnchorIDs == nil {
		c.AnchorIDs = []uuid.UUID{}
	}
	c.Payload = json.RawMessage(payload)

	return c, nil
}
