package anchors

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tmoresby/veracity/internal/sources"
	"github.com/tmoresby/veracity/pkg/repository"
)

const anchorColumns = "id, corpus_id, source_id, quote, source_document, page_ref, section_ref, timeline_date, provenance"

type repo struct {
	db      *sql.DB
	sources sources.System
	logger  *slog.Logger
}

// New creates an anchor repository implementing the System interface.
func New(db *sql.DB, srcs sources.System, logger *slog.Logger) System {
	return &repo{
		db:      db,
		sources: srcs,
		logger:  logger.With("system", "anchors"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) ListByCorpus(ctx context.Context, corpusID uuid.UUID) ([]Anchor, error) {
	q := "SELECT " + anchorColumns + " FROM anchors WHERE corpus_id = $1 ORDER BY id"

	anchors, err := repository.QueryMany(ctx, r.db, q, []any{corpusID}, scanAnchor)
	if err != nil {
		return nil, fmt.Errorf("query anchors: %w", err)
	}
	return anchors, nil
}

func (r *repo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]Anchor, error) {
	if len(ids) == 0 {
		return []Anchor{}, nil
	}

	q := "SELECT " + anchorColumns + " FROM anchors WHERE id = ANY($1) ORDER BY id"

	anchors, err := repository.QueryMany(ctx, r.db, q, []any{ids}, scanAnchor)
	if err != nil {
		return nil, fmt.Errorf("query anchors by id: %w", err)
	}
	return anchors, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Anchor, error) {
	q := "SELECT " + anchorColumns + " FROM anchors WHERE id = $1"

	a, err := repository.QueryOne(ctx, r.db, q, []any{id}, scanAnchor)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &a, nil
}

func (r *repo) Proof(ctx context.Context, id uuid.UUID) (*ProofResult, error) {
	a, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if a.ProvenanceState != ProvenancePresentValid || a.Provenance == nil {
		return nil, fmt.Errorf("%w: state %s", ErrNoProvenance, a.ProvenanceState)
	}

	page, err := r.sources.FindPage(ctx, a.Provenance.SourceID, a.Provenance.PageIndex)
	if err != nil {
		return nil, err
	}

	result := Prove(page.PageText, a.Provenance.QuoteStartChar, a.Provenance.QuoteEndChar, a.Quote)
	result.AnchorID = a.ID.String()
	result.SourceID = a.SourceID.String()
	result.PageIndex = a.Provenance.PageIndex

	return &result, nil
}

// InsertTx persists one anchor inside the caller's transaction. Used by the
// build system so anchor rows and the BUILD_RUN ledger event commit together.
func InsertTx(ctx context.Context, tx *sql.Tx, a Anchor) error {
	var provenance any
	if a.Provenance != nil {
		data, err := json.Marshal(a.Provenance)
		if err != nil {
			return fmt.Errorf("marshal provenance: %w", err)
		}
		provenance = data
	}

	q := `
		INSERT INTO anchors(id, corpus_id, source_id, quote, source_document, page_ref, section_ref, timeline_date, provenance)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := tx.ExecContext(
		ctx, q,
		a.ID,
		a.CorpusID,
		a.SourceID,
		a.Quote,
		a.SourceDocument,
		a.PageRef,
		a.SectionRef,
		a.TimelineDate,
		provenance,
	)
	return err
}

func scanAnchor(s repository.Scanner) (Anchor, error) {
	var (
		a   Anchor
		raw []byte
	)
	err := s.Scan(
		&a.ID,
		&a.CorpusID,
		&a.SourceID,
		&a.Quote,
		&a.SourceDocument,
		&a.PageRef,
		&a.SectionRef,
		&a.TimelineDate,
		&raw,
	)
	if err != nil {
		return a, err
	}

	a.Provenance, a.ProvenanceState = DecodeProvenance(raw)
	return a, nil
}
