// Package snapshots implements the snapshot engine: freezing an ordered
// claim set plus the corpus's membership scope into one content hash. A
// snapshot is immutable once created; verification recomputes the hash
// from the persisted claim copy and reports agreement as data.
package snapshots

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"

	"github.com/tmoresby/veracity/internal/claims"
	"github.com/tmoresby/veracity/pkg/canonical"
)

// HashAlg names the digest algorithm recorded on every snapshot.
const HashAlg = "SHA-256"

// Scope records which claim and source ids existed in the corpus at
// snapshot time. Both sets are held sorted.
type Scope struct {
	IncludesClaimIDs  []string `json:"includes_claim_ids"`
	IncludesSourceIDs []string `json:"includes_source_ids"`
}

// Snapshot is an immutable, hashed freeze of a claim set. Claims holds a
// deep copy of the caller-supplied payload that was hashed; Scope records
// live corpus membership independently, so the two can legitimately
// diverge when the caller snapshots a subset.
type Snapshot struct {
	ID        uuid.UUID      `json:"id"`
	CorpusID  uuid.UUID      `json:"corpus_id"`
	CreatedAt time.Time      `json:"created_at"`
	Claims    []claims.Claim `json:"claims"`
	Scope     Scope          `json:"scope"`
	HashAlg   string         `json:"hash_alg"`
	HashHex   string         `json:"hash_hex"`
}

// CreateCommand carries the snapshot creation request body.
type CreateCommand struct {
	CorpusID uuid.UUID      `json:"corpus_id"`
	Claims   []claims.Claim `json:"claims"`
}

// VerifyResult reports hash recomputation. Mismatch is data, not an error.
type VerifyResult struct {
	Verified          bool   `json:"verified"`
	StoredHashHex     string `json:"stored_hash_hex"`
	RecomputedHashHex string `json:"recomputed_hash_hex"`
}

// claimsSchema validates the caller-supplied claim payload before it is
// hashed. Creation-rule consistency (classification vs anchors) is not
// re-checked here; the snapshot freezes what the caller asserts.
const claimsSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["id", "classification", "text", "confidence", "anchor_ids"],
		"properties": {
			"id": {"type": "string", "format": "uuid"},
			"corpus_id": {"type": "string", "format": "uuid"},
			"classification": {"enum": ["DEFENSIBLE", "RESTRICTED", "AMBIGUOUS"]},
			"text": {"type": "string", "minLength": 1},
			"confidence": {"type": "number", "minimum": 0, "maximum": 1},
			"refusal_reason": {"type": ["string", "null"]},
			"anchor_ids": {
				"type": "array",
				"items": {"type": "string", "format": "uuid"}
			}
		}
	}
}`

// ValidateClaims checks the claim payload against the snapshot claim
// schema and returns the individual violations.
func ValidateClaims(payload []claims.Claim) ([]string, error) {
	// Round-trip through JSON so schema validation sees the wire shape.
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal claims: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(claimsSchema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return nil, fmt.Errorf("validate claims: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		violations = append(violations, e.String())
	}
	return violations, nil
}

// SortClaims returns the claims sorted ascending by id, with each claim's
// anchor ids sorted, so the snapshot hash is independent of input order.
func SortClaims(in []claims.Claim) []claims.Claim {
	sorted := slices.Clone(in)
	for i := range sorted {
		sorted[i].AnchorIDs = claims.SortAnchorIDs(sorted[i].AnchorIDs)
	}
	slices.SortFunc(sorted, func(a, b claims.Claim) int {
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return sorted
}

// Hash computes the snapshot content hash over the corpus id and the
// already-sorted claim set.
func Hash(corpusID uuid.UUID, sorted []claims.Claim) (string, error) {
	return canonical.Hash(map[string]any{
		"canon":     canonical.Version,
		"corpus_id": corpusID.String(),
		"claims":    sorted,
	})
}

// HashRaw recomputes the snapshot hash from a persisted claims document.
// The stored bytes are decoded number-preserving so recomputation
// reproduces exactly what was hashed at creation.
func HashRaw(corpusID uuid.UUID, claimsJSON []byte) (string, error) {
	decoded, err := canonical.Decode(claimsJSON)
	if err != nil {
		return "", fmt.Errorf("decode persisted claims: %w", err)
	}
	return canonical.Hash(map[string]any{
		"canon":     canonical.Version,
		"corpus_id": corpusID.String(),
		"claims":    decoded,
	})
}
