package snapshots

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/tmoresby/veracity/internal/claims"
	"github.com/tmoresby/veracity/internal/corpora"
	"github.com/tmoresby/veracity/internal/ledger"
	"github.com/tmoresby/veracity/internal/sources"
	"github.com/tmoresby/veracity/pkg/canonical"
	"github.com/tmoresby/veracity/pkg/repository"
)

const snapshotColumns = "id, corpus_id, created_at, claims, scope, hash_alg, hash_hex"

type repo struct {
	db      *sql.DB
	corpora corpora.System
	claims  claims.System
	sources sources.System
	logger  *slog.Logger
}

// New creates a snapshot repository implementing the System interface.
func New(db *sql.DB, cor corpora.System, cls claims.System, srcs sources.System, logger *slog.Logger) System {
	return &repo{
		db:      db,
		corpora: cor,
		claims:  cls,
		sources: srcs,
		logger:  logger.With("system", "snapshots"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) ListByCorpus(ctx context.Context, corpusID uuid.UUID) ([]Snapshot, error) {
	q := "SELECT " + snapshotColumns + " FROM snapshots WHERE corpus_id = $1 ORDER BY created_at DESC"

	items, err := repository.QueryMany(ctx, r.db, q, []any{corpusID}, scanSnapshot)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	return items, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Snapshot, error) {
	q := "SELECT " + snapshotColumns + " FROM snapshots WHERE id = $1"

	s, err := repository.QueryOne(ctx, r.db, q, []any{id}, scanSnapshot)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &s, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Snapshot, error) {
	if _, err := r.corpora.Find(ctx, cmd.CorpusID); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCorpusMissing, cmd.CorpusID)
	}

	violations, err := ValidateClaims(cmd.Claims)
	if err != nil {
		return nil, err
	}
	if len(violations) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidClaims, strings.Join(violations, "; "))
	}

	sorted := SortClaims(cmd.Claims)

	hashHex, err := Hash(cmd.CorpusID, sorted)
	if err != nil {
		return nil, fmt.Errorf("hash snapshot: %w", err)
	}

	// Persist the exact canonical bytes that were hashed so verification
	// recomputes from an identical document.
	claimsJSON, err := canonical.Marshal(sorted)
	if err != nil {
		return nil, fmt.Errorf("encode claims: %w", err)
	}

	scope, err := r.liveScope(ctx, cmd.CorpusID)
	if err != nil {
		return nil, err
	}

	scopeJSON, err := canonical.Marshal(scope)
	if err != nil {
		return nil, fmt.Errorf("encode scope: %w", err)
	}

	id := uuid.New()
	q := `
		INSERT INTO snapshots(id, corpus_id, claims, scope, hash_alg, hash_hex)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + snapshotColumns

	s, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Snapshot, error) {
		args := []any{id, cmd.CorpusID, string(claimsJSON), scopeJSON, HashAlg, hashHex}
		created, err := repository.QueryOne(ctx, tx, q, args, scanSnapshot)
		if err != nil {
			return Snapshot{}, err
		}

		_, err = ledger.Append(
			ctx, tx,
			cmd.CorpusID,
			ledger.EventSnapshotCreated,
			"snapshot", created.ID.String(),
			map[string]any{
				"hash_hex":    created.HashHex,
				"claim_count": len(created.Claims),
			},
		)
		if err != nil {
			return Snapshot{}, err
		}

		return created, nil
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("snapshot created",
		"id", s.ID,
		"corpus_id", s.CorpusID,
		"claims", len(s.Claims),
		"hash", s.HashHex,
	)
	return &s, nil
}

func (r *repo) Verify(ctx context.Context, id uuid.UUID) (*VerifyResult, error) {
	q := "SELECT corpus_id, claims, hash_hex FROM snapshots WHERE id = $1"

	var (
		corpusID  uuid.UUID
		claimsRaw []byte
		stored    string
	)
	err := r.db.QueryRowContext(ctx, q, id).Scan(&corpusID, &claimsRaw, &stored)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	recomputed, err := HashRaw(corpusID, claimsRaw)
	if err != nil {
		return nil, err
	}

	return &VerifyResult{
		Verified:          stored == recomputed,
		StoredHashHex:     stored,
		RecomputedHashHex: recomputed,
	}, nil
}

// liveScope collects the corpus's current claim and source ids, sorted.
// Scope is computed from live membership, never from the snapshot payload.
func (r *repo) liveScope(ctx context.Context, corpusID uuid.UUID) (Scope, error) {
	liveClaims, err := r.claims.ListByCorpus(ctx, corpusID)
	if err != nil {
		return Scope{}, fmt.Errorf("scope claims: %w", err)
	}
	liveSources, err := r.sources.ListAll(ctx, corpusID)
	if err != nil {
		return Scope{}, fmt.Errorf("scope sources: %w", err)
	}

	scope := Scope{
		IncludesClaimIDs:  make([]string, 0, len(liveClaims)),
		IncludesSourceIDs: make([]string, 0, len(liveSources)),
	}
	for _, c := range liveClaims {
		scope.IncludesClaimIDs = append(scope.IncludesClaimIDs, c.ID.String())
	}
	for _, s := range liveSources {
		scope.IncludesSourceIDs = append(scope.IncludesSourceIDs, s.ID.String())
	}
	slices.Sort(scope.IncludesClaimIDs)
	slices.Sort(scope.IncludesSourceIDs)

	return scope, nil
}

func scanSnapshot(s repository.Scanner) (Snapshot, error) {
	var (
		snap      Snapshot
		claimsRaw []byte
		scopeRaw  []byte
	)
	err := s.Scan(
		&snap.ID,
		&snap.CorpusID,
		&snap.CreatedAt,
		&claimsRaw,
		&scopeRaw,
		&snap.HashAlg,
		&snap.HashHex,
	)
	if err != nil {
		return snap, err
	}

	if err := decodeJSON(claimsRaw, &snap.Claims); err != nil {
		return snap, fmt.Errorf("decode snapshot claims: %w", err)
	}
	if err := decodeJSON(scopeRaw, &snap.Scope); err != nil {
		return snap, fmt.Errorf("decode snapshot scope: %w", err)
	}
	return snap, nil
}

func decodeJSON(raw []byte, v any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}
