package packets

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/tmoresby/veracity/internal/anchors"
	"github.com/tmoresby/veracity/internal/claims"
	"github.com/tmoresby/veracity/internal/ledger"
	"github.com/tmoresby/veracity/internal/snapshots"
	"github.com/tmoresby/veracity/pkg/canonical"
	"github.com/tmoresby/veracity/pkg/repository"
)

const packetColumns = "id, corpus_id, claim_id, snapshot_id, snapshot_hash_hex, payload, hash_alg, hash_hex, created_at"

type repo struct {
	db        *sql.DB
	claims    claims.System
	snapshots snapshots.System
	anchors   anchors.System
	logger    *slog.Logger
}

// New creates a packet repository implementing the System interface.
func New(db *sql.DB, cls claims.System, snaps snapshots.System, anc anchors.System, logger *slog.Logger) System {
	return &repo{
		db:        db,
		claims:    cls,
		snapshots: snaps,
		anchors:   anc,
		logger:    logger.With("system", "packets"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) ListByCorpus(ctx context.Context, corpusID uuid.UUID) ([]Packet, error) {
	q := "SELECT " + packetColumns + " FROM packets WHERE corpus_id = $1 ORDER BY created_at DESC"

	items, err := repository.QueryMany(ctx, r.db, q, []any{corpusID}, scanPacket)
	if err != nil {
		return nil, fmt.Errorf("query packets: %w", err)
	}
	return items, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Packet, error) {
	q := "SELECT " + packetColumns + " FROM packets WHERE id = $1"

	p, err := repository.QueryOne(ctx, r.db, q, []any{id}, scanPacket)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &p, nil
}

func (r *repo) Create(ctx context.Context, corpusID, claimID, snapshotID uuid.UUID) (*Packet, error) {
	claim, err := r.claims.Find(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if claim.CorpusID != corpusID {
		return nil, fmt.Errorf("%w: claim %s", claims.ErrNotFound, claimID)
	}

	if claim.Classification != claims.Defensible || len(claim.AnchorIDs) == 0 {
		return nil, fmt.Errorf("%w: classification %s with %d anchors",
			ErrNotDefensible, claim.Classification, len(claim.AnchorIDs))
	}

	snapshot, err := r.snapshots.Find(ctx, snapshotID)
	if err != nil {
		return nil, err
	}
	if snapshot.CorpusID != corpusID {
		return nil, fmt.Errorf("%w: snapshot %s", ErrSnapshotCorpus, snapshotID)
	}

	if !slices.Contains(snapshot.Scope.IncludesClaimIDs, claimID.String()) {
		return nil, fmt.Errorf("%w: claim %s", ErrOutsideScope, claimID)
	}

	anchorSet, err := r.anchors.ListByIDs(ctx, claim.AnchorIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve anchors: %w", err)
	}

	payload := BuildPayload(corpusID, snapshotID, snapshot.HashHex, claim, anchorSet)

	hashHex, err := Hash(payload)
	if err != nil {
		return nil, fmt.Errorf("hash packet: %w", err)
	}

	payloadJSON, err := canonical.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	id := uuid.New()
	q := `
		INSERT INTO packets(id, corpus_id, claim_id, snapshot_id, snapshot_hash_hex, payload, hash_alg, hash_hex)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + packetColumns

	p, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Packet, error) {
		args := []any{id, corpusID, claimID, snapshotID, snapshot.HashHex, string(payloadJSON), HashAlg, hashHex}
		created, err := repository.QueryOne(ctx, tx, q, args, scanPacket)
		if err != nil {
			return Packet{}, err
		}

		_, err = ledger.Append(
			ctx, tx,
			corpusID,
			ledger.EventPacketCreated,
			"packet", created.ID.String(),
			map[string]any{
				"claim_id":    claimID.String(),
				"snapshot_id": snapshotID.String(),
				"hash_hex":    created.HashHex,
			},
		)
		if err != nil {
			return Packet{}, err
		}

		return created, nil
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("packet created",
		"id", p.ID,
		"corpus_id", corpusID,
		"claim_id", claimID,
		"snapshot_id", snapshotID,
		"hash", p.HashHex,
	)
	return &p, nil
}

func (r *repo) Verify(ctx context.Context, id uuid.UUID) (*VerifyResult, error) {
	q := "SELECT payload, hash_hex FROM packets WHERE id = $1"

	var (
		payloadRaw []byte
		stored     string
	)
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&payloadRaw, &stored); err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	recomputed, err := HashRaw(payloadRaw)
	if err != nil {
		return nil, err
	}

	return &VerifyResult{
		Verified:          stored == recomputed,
		StoredHashHex:     stored,
		RecomputedHashHex: recomputed,
	}, nil
}

func (r *repo) VerifyChain(ctx context.Context, id uuid.UUID) (*ChainResult, error) {
	p, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	own, err := r.Verify(ctx, id)
	if err != nil {
		return nil, err
	}

	snapshotCheck, err := r.snapshots.Verify(ctx, p.SnapshotID)
	if err != nil {
		return nil, err
	}

	snapshot, err := r.snapshots.Find(ctx, p.SnapshotID)
	if err != nil {
		return nil, err
	}

	result := &ChainResult{
		PacketHashOK:      own.Verified,
		SnapshotHashOK:    snapshotCheck.Verified,
		SnapshotBindingOK: p.Payload.SnapshotHashHex == snapshot.HashHex,
		ScopeOK:           scopeCovers(snapshot.Scope, p.Payload),
	}
	return result, nil
}

// scopeCovers reports whether the claim and every anchor's source remain
// members of the snapshot's recorded scope.
func scopeCovers(scope snapshots.Scope, payload Payload) bool {
	if !slices.Contains(scope.IncludesClaimIDs, payload.Claim.ID) {
		return false
	}
	for _, a := range payload.Anchors {
		if !slices.Contains(scope.IncludesSourceIDs, a.SourceID) {
			return false
		}
	}
	return true
}

func scanPacket(s repository.Scanner) (Packet, error) {
	var (
		p   Packet
		raw []byte
	)
	err := s.Scan(
		&p.ID,
		&p.CorpusID,
		&p.ClaimID,
		&p.SnapshotID,
		&p.SnapshotHashHex,
		&raw,
		&p.HashAlg,
		&p.HashHex,
		&p.CreatedAt,
	)
	if err != nil {
		return p, err
	}

	if err := json.Unmarshal(raw, &p.Payload); err != nil {
		return p, fmt.Errorf("decode packet payload: %w", err)
	}
	return p, nil
}
