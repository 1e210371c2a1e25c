package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tmoresby/veracity/pkg/canonical"
	"github.com/tmoresby/veracity/pkg/repository"
)

const eventColumns = "id, corpus_id, event_type, entity_type, entity_id, payload, occurred_at, hash_alg, hash_hex"

// Append inserts one ledger event using the caller's transaction so the
// entity write and its audit record commit or roll back together. The
// event hash is computed over the canonical form of the payload.
func Append(
	ctx context.Context,
	tx *sql.Tx,
	corpusID uuid.UUID,
	eventType EventType,
	entityType, entityID string,
	payload any,
) (*Event, error) {
	if !eventType.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEventType, eventType)
	}

	normalized, err := canonical.Normalize(payload)
	if err != nil {
		return nil, fmt.Errorf("normalize event payload: %w", err)
	}

	hashHex, err := ComputeHash(corpusID, eventType, entityType, entityID, normalized)
	if err != nil {
		return nil, fmt.Errorf("hash event: %w", err)
	}

	payloadJSON, err := canonical.Marshal(normalized)
	if err != nil {
		return nil, fmt.Errorf("marshal event payload: %w", err)
	}

	q := `
		INSERT INTO ledger_events(id, corpus_id, event_type, entity_type, entity_id, payload, hash_alg, hash_hex)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + eventColumns

	args := []any{
		uuid.New(),
		corpusID,
		string(eventType),
		entityType,
		entityID,
		string(payloadJSON),
		HashAlg,
		hashHex,
	}

	e, err := repository.QueryOne(ctx, tx, q, args, scanEvent)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &e, nil
}

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a ledger repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "ledger"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) List(ctx context.Context, corpusID uuid.UUID, limit int, filters Filters) ([]Event, error) {
	if limit < 1 {
		limit = MaxListLimit
	}
	if limit > MaxListLimit {
		return nil, fmt.Errorf("%w: %d > %d", ErrLimitExceeded, limit, MaxListLimit)
	}

	q := "SELECT " + eventColumns + " FROM ledger_events WHERE corpus_id = $1"
	args := []any{corpusID}

	if filters.EventType != nil {
		if !filters.EventType.Valid() {
			return nil, fmt.Errorf("%w: %s", ErrInvalidEventType, *filters.EventType)
		}
		args = append(args, string(*filters.EventType))
		q += fmt.Sprintf(" AND event_type = $%d", len(args))
	}
	if filters.After != nil {
		args = append(args, *filters.After)
		q += fmt.Sprintf(" AND occurred_at < $%d", len(args))
	}

	args = append(args, limit)
	q += fmt.Sprintf(" ORDER BY occurred_at DESC, id DESC LIMIT $%d", len(args))

	events, err := repository.QueryMany(ctx, r.db, q, args, scanEvent)
	if err != nil {
		return nil, fmt.Errorf("query ledger events: %w", err)
	}
	return events, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Event, error) {
	q := "SELECT " + eventColumns + " FROM ledger_events WHERE id = $1"

	e, err := repository.QueryOne(ctx, r.db, q, []any{id}, scanEvent)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &e, nil
}

func (r *repo) Count(ctx context.Context, corpusID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(
		ctx,
		"SELECT COUNT(*) FROM ledger_events WHERE corpus_id = $1",
		corpusID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count ledger events: %w", err)
	}
	return count, nil
}

// Verify recomputes an event's hash from its stored fields and compares it
// against the stored hash. A mismatch yields Verified=false, never an error.
func (r *repo) Verify(ctx context.Context, id uuid.UUID) (*VerifyResult, error) {
	e, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	payload, err := canonical.Decode(e.Payload)
	if err != nil {
		return nil, fmt.Errorf("decode event payload: %w", err)
	}

	recomputed, err := ComputeHash(e.CorpusID, e.EventType, e.EntityType, e.EntityID, payload)
	if err != nil {
		return nil, fmt.Errorf("recompute event hash: %w", err)
	}

	return &VerifyResult{
		EventID:        e.ID,
		Verified:       recomputed == e.HashHex,
		StoredHash:     e.HashHex,
		RecomputedHash: recomputed,
	}, nil
}

func scanEvent(s repository.Scanner) (Event, error) {
	var e Event
	err := s.Scan(
		&e.ID,
		&e.CorpusID,
		&e.EventType,
		&e.EntityType,
		&e.EntityID,
		&e.Payload,
		&e.OccurredAt,
		&e.HashAlg,
		&e.HashHex,
	)
	return e, err
}
