// Package record implements the verified record aggregator: one
// canonical, hashed summary of a corpus's claims and their dispositions.
// The record hash covers evidentiary content only; generation time and
// other volatile metadata stay outside it.
package record

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/tmoresby/veracity/internal/anchors"
	"github.com/tmoresby/veracity/internal/claims"
	"github.com/tmoresby/veracity/internal/constraints"
	"github.com/tmoresby/veracity/internal/sources"
	"github.com/tmoresby/veracity/pkg/canonical"
)

// HashAlg names the digest algorithm recorded on every record.
const HashAlg = "SHA-256"

// AnchorSummary is the anchor projection embedded in record claims.
type AnchorSummary struct {
	ID             string  `json:"id"`
	Quote          string  `json:"quote"`
	SourceDocument string  `json:"source_document"`
	PageRef        string  `json:"page_ref"`
	SectionRef     *string `json:"section_ref"`
	TimelineDate   string  `json:"timeline_date"`
	SourceID       string  `json:"source_id"`
}

// ClaimEntry is one claim's appearance in the record. Supported and
// ambiguous claims embed their anchors; restricted claims embed the
// refusal reason and omit anchors; ambiguous claims are flagged.
type ClaimEntry struct {
	ID            string          `json:"id"`
	Text          string          `json:"text"`
	Confidence    float64         `json:"confidence"`
	RefusalReason *string         `json:"refusal_reason,omitempty"`
	AnchorIDs     []string        `json:"anchor_ids"`
	Anchors       []AnchorSummary `json:"anchors,omitempty"`
	Flagged       bool            `json:"flagged,omitempty"`
}

// Record is the aggregated, hashed corpus summary.
type Record struct {
	CorpusID         uuid.UUID                `json:"corpus_id"`
	GeneratedAt      time.Time                `json:"generated_at"`
	Sources          []sources.Source         `json:"sources"`
	SupportedClaims  []ClaimEntry             `json:"supported_claims"`
	RestrictedClaims []ClaimEntry             `json:"restricted_claims"`
	AmbiguousClaims  []ClaimEntry             `json:"ambiguous_claims"`
	Conflicts        []constraints.Constraint `json:"conflicts"`
	MissingEvidence  []constraints.Constraint `json:"missing_evidence"`
	TimeMismatches   []constraints.Constraint `json:"time_mismatches"`
	HashAlg          string                   `json:"hash_alg"`
	RecordHashHex    string                   `json:"record_hash_hex"`
}

// Build aggregates corpus state into a record and computes its hash. It
// is pure over its inputs.
func Build(
	corpusID uuid.UUID,
	srcs []sources.Source,
	corpusClaims []claims.Claim,
	corpusAnchors []anchors.Anchor,
	corpusConstraints []constraints.Constraint,
	generatedAt time.Time,
) (*Record, error) {
	anchorsByID := make(map[uuid.UUID]anchors.Anchor, len(corpusAnchors))
	for _, a := range corpusAnchors {
		anchorsByID[a.ID] = a
	}

	r := &Record{
		CorpusID:         corpusID,
		GeneratedAt:      generatedAt,
		Sources:          sortSources(srcs),
		SupportedClaims:  []ClaimEntry{},
		RestrictedClaims: []ClaimEntry{},
		AmbiguousClaims:  []ClaimEntry{},
		Conflicts:        []constraints.Constraint{},
		MissingEvidence:  []constraints.Constraint{},
		TimeMismatches:   []constraints.Constraint{},
		HashAlg:          HashAlg,
	}

	for _, c := range sortClaims(corpusClaims) {
		entry := claimEntry(c)
		switch c.Classification {
		case claims.Defensible:
			entry.Anchors = anchorSummaries(c.AnchorIDs, anchorsByID)
			r.SupportedClaims = append(r.SupportedClaims, entry)
		case claims.Restricted:
			r.RestrictedClaims = append(r.RestrictedClaims, entry)
		case claims.Ambiguous:
			entry.Anchors = anchorSummaries(c.AnchorIDs, anchorsByID)
			entry.Flagged = true
			r.AmbiguousClaims = append(r.AmbiguousClaims, entry)
		}
	}

	for _, c := range sortConstraints(corpusConstraints) {
		switch c.Type {
		case constraints.TypeConflict:
			r.Conflicts = append(r.Conflicts, c)
		case constraints.TypeMissingEvidence:
			r.MissingEvidence = append(r.MissingEvidence, c)
		case constraints.TypeTimeMismatch:
			r.TimeMismatches = append(r.TimeMismatches, c)
		}
	}

	hashHex, err := Hash(r)
	if err != nil {
		return nil, err
	}
	r.RecordHashHex = hashHex

	return r, nil
}

// Hash computes the record hash over evidentiary content only:
// generated_at, hash_alg, and the hash field itself are excluded.
func Hash(r *Record) (string, error) {
	return canonical.Hash(map[string]any{
		"canon":             canonical.Version,
		"sources":           r.Sources,
		"supported_claims":  r.SupportedClaims,
		"restricted_claims": r.RestrictedClaims,
		"ambiguous_claims":  r.AmbiguousClaims,
		"conflicts":         r.Conflicts,
		"missing_evidence":  r.MissingEvidence,
		"time_mismatches":   r.TimeMismatches,
	})
}

func claimEntry(c claims.Claim) ClaimEntry {
	ids := make([]string, 0, len(c.AnchorIDs))
	for _, id := range claims.SortAnchorIDs(c.AnchorIDs) {
		ids = append(ids, id.String())
	}
	return ClaimEntry{
		ID:            c.ID.String(),
		Text:          c.Text,
		Confidence:    c.Confidence,
		RefusalReason: c.RefusalReason,
		AnchorIDs:     ids,
	}
}

func anchorSummaries(ids []uuid.UUID, byID map[uuid.UUID]anchors.Anchor) []AnchorSummary {
	summaries := make([]AnchorSummary, 0, len(ids))
	for _, id := range claims.SortAnchorIDs(ids) {
		a, ok := byID[id]
		if !ok {
			continue
		}
		summaries = append(summaries, AnchorSummary{
			ID:             a.ID.String(),
			Quote:          a.Quote,
			SourceDocument: a.SourceDocument,
			PageRef:        a.PageRef,
			SectionRef:     a.SectionRef,
			TimelineDate:   a.TimelineDate,
			SourceID:       a.SourceID.String(),
		})
	}
	return summaries
}

func sortSources(in []sources.Source) []sources.Source {
	out := slices.Clone(in)
	slices.SortFunc(out, func(a, b sources.Source) int {
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return out
}

func sortClaims(in []claims.Claim) []claims.Claim {
	out := slices.Clone(in)
	slices.SortFunc(out, func(a, b claims.Claim) int {
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return out
}

func sortConstraints(in []constraints.Constraint) []constraints.Constraint {
	out := slices.Clone(in)
	slices.SortFunc(out, func(a, b constraints.Constraint) int {
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return out
}
