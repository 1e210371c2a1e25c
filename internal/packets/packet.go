// Package packets implements the evidence packet engine. A packet binds
// one DEFENSIBLE claim and its anchors to an existing snapshot through a
// dependent hash: the packet payload embeds the snapshot's hash, so the
// packet hash covers the snapshot's content transitively. Packets are
// immutable; verification recomputes from the embedded payload alone.
package packets

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tmoresby/veracity/internal/anchors"
	"github.com/tmoresby/veracity/internal/claims"
	"github.com/tmoresby/veracity/pkg/canonical"
)

// HashAlg names the digest algorithm recorded on every packet.
const HashAlg = "SHA-256"

// ClaimProjection is the claim subset embedded in packet payloads.
type ClaimProjection struct {
	ID             string   `json:"id"`
	Classification string   `json:"classification"`
	Text           string   `json:"text"`
	Confidence     float64  `json:"confidence"`
	AnchorIDs      []string `json:"anchor_ids"`
}

// AnchorProjection is the anchor subset embedded in packet payloads.
type AnchorProjection struct {
	ID             string  `json:"id"`
	Quote          string  `json:"quote"`
	SourceDocument string  `json:"source_document"`
	PageRef        string  `json:"page_ref"`
	SectionRef     *string `json:"section_ref"`
	TimelineDate   string  `json:"timeline_date"`
	SourceID       string  `json:"source_id"`
}

// Payload is the hashed packet body: the claim, its anchors sorted by id,
// and the referenced snapshot's id and hash.
type Payload struct {
	CorpusID        string             `json:"corpus_id"`
	SnapshotID      string             `json:"snapshot_id"`
	SnapshotHashHex string             `json:"snapshot_hash_hex"`
	Claim           ClaimProjection    `json:"claim"`
	Anchors         []AnchorProjection `json:"anchors"`
}

// Packet is one immutable claim-to-snapshot binding.
type Packet struct {
	ID              uuid.UUID `json:"id"`
	CorpusID        uuid.UUID `json:"corpus_id"`
	ClaimID         uuid.UUID `json:"claim_id"`
	SnapshotID      uuid.UUID `json:"snapshot_id"`
	SnapshotHashHex string    `json:"snapshot_hash_hex"`
	Payload         Payload   `json:"packet_payload"`
	HashAlg         string    `json:"hash_alg"`
	HashHex         string    `json:"hash_hex"`
	CreatedAt       time.Time `json:"created_at"`
}

// VerifyResult reports packet hash recomputation.
type VerifyResult struct {
	Verified          bool   `json:"verified"`
	StoredHashHex     string `json:"stored_hash_hex"`
	RecomputedHashHex string `json:"recomputed_hash_hex"`
}

// ChainResult reports the four independent chain checks. They are never
// collapsed into one flag: a verifier needs to know which link broke.
type ChainResult struct {
	// PacketHashOK: the packet hash matches its embedded payload.
	PacketHashOK bool `json:"packet_hash_ok"`
	// SnapshotHashOK: the snapshot's stored hash matches a fresh
	// recomputation from the snapshot's own persisted claims. Catches
	// snapshot corruption occurring after packet creation.
	SnapshotHashOK bool `json:"snapshot_hash_ok"`
	// SnapshotBindingOK: the packet's embedded snapshot hash copy still
	// equals the snapshot's stored hash.
	SnapshotBindingOK bool `json:"snapshot_binding_ok"`
	// ScopeOK: the claim id and every anchor's source id remain members
	// of the snapshot's recorded scope.
	ScopeOK bool `json:"scope_ok"`
}

// BuildPayload assembles the hashed packet body from an already-validated
// claim and its anchors. Anchors must be supplied sorted by id; the
// claim's anchor ids are re-sorted here so the payload never depends on
// caller ordering.
func BuildPayload(corpusID, snapshotID uuid.UUID, snapshotHashHex string, claim *claims.Claim, anchorSet []anchors.Anchor) Payload {
	sortedIDs := claims.SortAnchorIDs(claim.AnchorIDs)
	ids := make([]string, 0, len(sortedIDs))
	for _, id := range sortedIDs {
		ids = append(ids, id.String())
	}

	projected := make([]AnchorProjection, 0, len(anchorSet))
	for _, a := range anchorSet {
		projected = append(projected, AnchorProjection{
			ID:             a.ID.String(),
			Quote:          a.Quote,
			SourceDocument: a.SourceDocument,
			PageRef:        a.PageRef,
			SectionRef:     a.SectionRef,
			TimelineDate:   a.TimelineDate,
			SourceID:       a.SourceID.String(),
		})
	}

	return Payload{
		CorpusID:        corpusID.String(),
		SnapshotID:      snapshotID.String(),
		SnapshotHashHex: snapshotHashHex,
		Claim: ClaimProjection{
			ID:             claim.ID.String(),
			Classification: string(claim.Classification),
			Text:           claim.Text,
			Confidence:     claim.Confidence,
			AnchorIDs:      ids,
		},
		Anchors: projected,
	}
}

// Hash computes the packet content hash over the payload.
func Hash(p Payload) (string, error) {
	return canonical.Hash(map[string]any{
		"canon":             canonical.Version,
		"corpus_id":         p.CorpusID,
		"snapshot_id":       p.SnapshotID,
		"snapshot_hash_hex": p.SnapshotHashHex,
		"claim":             p.Claim,
		"anchors":           p.Anchors,
	})
}

// HashRaw recomputes the packet hash from a persisted payload document.
// The stored bytes are decoded number-preserving so recomputation
// reproduces exactly what was hashed at creation.
func HashRaw(raw []byte) (string, error) {
	decoded, err := canonical.Decode(raw)
	if err != nil {
		return "", fmt.Errorf("decode persisted payload: %w", err)
	}

	doc, ok := decoded.(map[string]any)
	if !ok {
		return "", fmt.Errorf("decode persisted payload: not an object")
	}

	return canonical.Hash(map[string]any{
		"canon":             canonical.Version,
		"corpus_id":         doc["corpus_id"],
		"snapshot_id":       doc["snapshot_id"],
		"snapshot_hash_hex": doc["snapshot_hash_hex"],
		"claim":             doc["claim"],
		"anchors":           doc["anchors"],
	})
}
