package record_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tmoresby/veracity/internal/anchors"
	"github.com/tmoresby/veracity/internal/claims"
	"github.com/tmoresby/veracity/internal/constraints"
	"github.com/tmoresby/veracity/internal/record"
	"github.com/tmoresby/veracity/internal/sources"
)

var (
	corpusID = uuid.MustParse("b67e0f43-2f4a-4d78-a7e0-04c11cf54a01")
	sourceID = uuid.MustParse("5e0ee02d-8781-45e0-a87f-3b4a7c2a4f11")
	anchorID = uuid.MustParse("3f2a9c44-68a2-4b1e-9d5f-2f6f0ac1f001")
)

func fixtureInputs() ([]sources.Source, []claims.Claim, []anchors.Anchor, []constraints.Constraint) {
	refusal := claims.RestrictedReason

	srcs := []sources.Source{{
		ID:        sourceID,
		CorpusID:  corpusID,
		Role:      sources.RolePrimary,
		Filename:  "disclosure.pdf",
		SHA256Hex: "abc123",
	}}

	corpusClaims := []claims.Claim{
		{
			ID:             uuid.MustParse("00000000-0000-0000-0000-000000000001"),
			CorpusID:       corpusID,
			Classification: claims.Defensible,
			Text:           "the form was signed",
			Confidence:     claims.DefensibleConfidence,
			AnchorIDs:      []uuid.UUID{anchorID},
		},
		{
			ID:             uuid.MustParse("00000000-0000-0000-0000-000000000002"),
			CorpusID:       corpusID,
			Classification: claims.Restricted,
			Text:           "the witness was present",
			Confidence:     claims.RestrictedConfidence,
			RefusalReason:  &refusal,
			AnchorIDs:      []uuid.UUID{},
		},
		{
			ID:             uuid.MustParse("00000000-0000-0000-0000-000000000003"),
			CorpusID:       corpusID,
			Classification: claims.Ambiguous,
			Text:           "the signature may predate the filing",
			Confidence:     0.5,
			AnchorIDs:      []uuid.UUID{anchorID},
		},
	}

	corpusAnchors := []anchors.Anchor{{
		ID:             anchorID,
		CorpusID:       corpusID,
		SourceID:       sourceID,
		Quote:          "signed the disclosure form",
		SourceDocument: "disclosure.pdf",
		PageRef:        "p. 3",
		TimelineDate:   "2021-03-12",
	}}

	corpusConstraints := []constraints.Constraint{{
		ID:        uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001"),
		CorpusID:  corpusID,
		Type:      constraints.TypeMissingEvidence,
		Summary:   "no witness page uploaded",
		AnchorIDs: []uuid.UUID{},
		Payload:   json.RawMessage(`{"requested_assertion":"witnessed","reason":"absent"}`),
	}}

	return srcs, corpusClaims, corpusAnchors, corpusConstraints
}

func TestBuildPartitions(t *testing.T) {
	srcs, cls, anc, cons := fixtureInputs()

	r, err := record.Build(corpusID, srcs, cls, anc, cons, time.Now())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if len(r.SupportedClaims) != 1 || len(r.RestrictedClaims) != 1 || len(r.AmbiguousClaims) != 1 {
		t.Fatalf("partition sizes = %d/%d/%d, want 1/1/1",
			len(r.SupportedClaims), len(r.RestrictedClaims), len(r.AmbiguousClaims))
	}

	// Supported and ambiguous embed anchors; restricted omits them.
	if len(r.SupportedClaims[0].Anchors) != 1 {
		t.Error("supported claim must embed its anchors")
	}
	if len(r.RestrictedClaims[0].Anchors) != 0 {
		t.Error("restricted claim must omit anchors")
	}
	if r.RestrictedClaims[0].RefusalReason == nil {
		t.Error("restricted claim must embed its refusal reason")
	}
	if !r.AmbiguousClaims[0].Flagged {
		t.Error("ambiguous claim must be flagged")
	}
	if len(r.AmbiguousClaims[0].Anchors) != 1 {
		t.Error("ambiguous claim must embed its anchors")
	}

	if len(r.MissingEvidence) != 1 || len(r.Conflicts) != 0 || len(r.TimeMismatches) != 0 {
		t.Errorf("constraint partitions = %d/%d/%d",
			len(r.Conflicts), len(r.MissingEvidence), len(r.TimeMismatches))
	}

	if len(r.RecordHashHex) != 64 {
		t.Errorf("record hash = %q", r.RecordHashHex)
	}
}

func TestHashExcludesGeneratedAt(t *testing.T) {
	srcs, cls, anc, cons := fixtureInputs()

	first, err := record.Build(corpusID, srcs, cls, anc, cons, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	second, err := record.Build(corpusID, srcs, cls, anc, cons, time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if first.RecordHashHex != second.RecordHashHex {
		t.Error("record hash must not cover generated_at")
	}
}

func TestHashCoversContent(t *testing.T) {
	srcs, cls, anc, cons := fixtureInputs()
	now := time.Now()

	base, err := record.Build(corpusID, srcs, cls, anc, cons, now)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	cls[0].Text = "the form was never signed"
	changed, err := record.Build(corpusID, srcs, cls, anc, cons, now)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if base.RecordHashHex == changed.RecordHashHex {
		t.Error("editing claim text must change the record hash")
	}
}

func TestRenderText(t *testing.T) {
	srcs, cls, anc, cons := fixtureInputs()

	r, err := record.Build(corpusID, srcs, cls, anc, cons, time.Now())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	text := record.RenderText(r)

	for _, want := range []string{
		"VERIFIED RECORD",
		r.RecordHashHex,
		"disclosure.pdf",
		"the form was signed",
		"the witness was present",
		"refused: " + claims.RestrictedReason,
		"[flagged] the signature may predate the filing",
		"MISSING EVIDENCE: no witness page uploaded",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("rendering missing %q", want)
		}
	}

	// Rendering is pure: repeated renders are identical.
	if text != record.RenderText(r) {
		t.Error("rendering must be deterministic")
	}
}
