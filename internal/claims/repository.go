package claims

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/tmoresby/veracity/internal/anchors"
	"github.com/tmoresby/veracity/internal/ledger"
	"github.com/tmoresby/veracity/pkg/repository"
)

const claimColumns = "id, corpus_id, classification, text, confidence, refusal_reason, anchor_ids, created_at"

type repo struct {
	db      *sql.DB
	anchors anchors.System
	logger  *slog.Logger
}

// New creates a claim repository implementing the System interface.
func New(db *sql.DB, anc anchors.System, logger *slog.Logger) System {
	return &repo{
		db:      db,
		anchors: anc,
		logger:  logger.With("system", "claims"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) ListByCorpus(ctx context.Context, corpusID uuid.UUID) ([]Claim, error) {
	q := "SELECT " + claimColumns + " FROM claims WHERE corpus_id = $1 ORDER BY id"

	claims, err := repository.QueryMany(ctx, r.db, q, []any{corpusID}, scanClaim)
	if err != nil {
		return nil, fmt.Errorf("query claims: %w", err)
	}
	return claims, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Claim, error) {
	q := "SELECT " + claimColumns + " FROM claims WHERE id = $1"

	c, err := repository.QueryOne(ctx, r.db, q, []any{id}, scanClaim)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &c, nil
}

func (r *repo) Create(ctx context.Context, corpusID uuid.UUID, cmd CreateCommand) (*Claim, error) {
	if strings.TrimSpace(cmd.Text) == "" {
		return nil, ErrEmptyText
	}

	anchorIDs := SortAnchorIDs(cmd.AnchorIDs)
	if err := r.checkAnchors(ctx, corpusID, anchorIDs); err != nil {
		return nil, err
	}

	classification, confidence, refusal := Classify(anchorIDs)

	anchorJSON, err := json.Marshal(anchorIDs)
	if err != nil {
		return nil, fmt.Errorf("marshal anchor ids: %w", err)
	}

	id := uuid.New()
	q := `
		INSERT INTO claims(id, corpus_id, classification, text, confidence, refusal_reason, anchor_ids)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + claimColumns

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Claim, error) {
		args := []any{id, corpusID, string(classification), cmd.Text, confidence, refusal, anchorJSON}
		created, err := repository.QueryOne(ctx, tx, q, args, scanClaim)
		if err != nil {
			return Claim{}, err
		}

		_, err = ledger.Append(
			ctx, tx,
			corpusID,
			ledger.EventClaimCreated,
			"claim", created.ID.String(),
			map[string]any{
				"classification": string(created.Classification),
				"anchor_count":   len(created.AnchorIDs),
			},
		)
		if err != nil {
			return Claim{}, err
		}

		return created, nil
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("claim created",
		"id", c.ID,
		"corpus_id", corpusID,
		"classification", c.Classification,
		"anchors", len(c.AnchorIDs),
	)
	return &c, nil
}

func (r *repo) Delete(ctx context.Context, corpusID, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		q := "DELETE FROM claims WHERE id = $1 AND corpus_id = $2"
		if err := repository.ExecExpectOne(ctx, tx, q, id, corpusID); err != nil {
			return struct{}{}, err
		}

		_, err := ledger.Append(
			ctx, tx,
			corpusID,
			ledger.EventClaimDeleted,
			"claim", id.String(),
			map[string]any{},
		)
		return struct{}{}, err
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("claim deleted", "id", id, "corpus_id", corpusID)
	return nil
}

// checkAnchors requires every supplied anchor id to resolve to an anchor
// in the given corpus.
func (r *repo) checkAnchors(ctx context.Context, corpusID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	found, err := r.anchors.ListByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("resolve anchors: %w", err)
	}

	known := make(map[uuid.UUID]uuid.UUID, len(found))
	for _, a := range found {
		known[a.ID] = a.CorpusID
	}

	for _, id := range ids {
		owner, ok := known[id]
		if !ok || owner != corpusID {
			return fmt.Errorf("%w: %s", ErrUnknownAnchor, id)
		}
	}
	return nil
}

func scanClaim(s repository.Scanner) (Claim, error) {
	var (
		c   Claim
		raw []byte
	)
	err := s.Scan(
		&c.ID,
		&c.CorpusID,
		&c.Classification,
		&c.Text,
		&c.Confidence,
		&c.RefusalReason,
		&raw,
		&c.CreatedAt,
	)
	if err != nil {
		return c, err
	}

	if err := json.Unmarshal(raw, &c.AnchorIDs); err != nil {
		return c, fmt.Errorf("decode anchor ids: %w", err)
	}
	return c, nil
}
