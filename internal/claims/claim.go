// Package claims implements the claim domain for Veracity. A claim is an
// assertion attached to a corpus, classified by the anchors supporting it:
// at least one anchor makes it DEFENSIBLE, none makes it RESTRICTED with a
// recorded refusal reason. AMBIGUOUS exists for externally assigned
// classifications and is never produced by the automatic rule.
package claims

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Classification is a claim's evidentiary disposition.
type Classification string

const (
	Defensible Classification = "DEFENSIBLE"
	Restricted Classification = "RESTRICTED"
	Ambiguous  Classification = "AMBIGUOUS"
)

// Valid reports whether the classification is one of the known variants.
func (c Classification) Valid() bool {
	switch c {
	case Defensible, Restricted, Ambiguous:
		return true
	}
	return false
}

// Classification confidence values produced by the deterministic rule.
const (
	DefensibleConfidence = 0.75
	RestrictedConfidence = 0.60
)

// RestrictedReason is recorded on every claim refused for lack of anchors.
const RestrictedReason = "no supporting anchors attached"

// Claim is one assertion with its classification and supporting anchors.
// AnchorIDs is held sorted so the claim hashes identically regardless of
// the order anchors were supplied in.
type Claim struct {
	ID             uuid.UUID      `json:"id"`
	CorpusID       uuid.UUID      `json:"corpus_id"`
	Classification Classification `json:"classification"`
	Text           string         `json:"text"`
	Confidence     float64        `json:"confidence"`
	RefusalReason  *string        `json:"refusal_reason,omitempty"`
	AnchorIDs      []uuid.UUID    `json:"anchor_ids"`
	CreatedAt      time.Time      `json:"created_at"`
}

// CreateCommand carries the caller-supplied fields for claim creation.
// Classification, confidence, and refusal reason are derived, never
// accepted from the caller.
type CreateCommand struct {
	Text      string      `json:"text"`
	AnchorIDs []uuid.UUID `json:"anchor_ids"`
}

// Classify applies the deterministic classification rule to a set of
// anchor ids: non-empty means DEFENSIBLE at 0.75 with no refusal, empty
// means RESTRICTED at 0.60 with the standard refusal reason.
func Classify(anchorIDs []uuid.UUID) (Classification, float64, *string) {
	if len(anchorIDs) > 0 {
		return Defensible, DefensibleConfidence, nil
	}
	reason := RestrictedReason
	return Restricted, RestrictedConfidence, &reason
}

// SortAnchorIDs returns a copy of ids sorted ascending by canonical UUID
// string with duplicates removed. Anchor sets are order-free; sorting
// before persistence keeps every downstream hash order-independent.
func SortAnchorIDs(ids []uuid.UUID) []uuid.UUID {
	sorted := slices.Clone(ids)
	slices.SortFunc(sorted, func(a, b uuid.UUID) int {
		return cmp.Compare(a.String(), b.String())
	})
	return slices.Compact(sorted)
}
