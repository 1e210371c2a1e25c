package bundle_test

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tmoresby/veracity/internal/anchors"
	"github.com/tmoresby/veracity/internal/bundle"
	"github.com/tmoresby/veracity/internal/claims"
	"github.com/tmoresby/veracity/internal/corpora"
	"github.com/tmoresby/veracity/internal/extraction"
	"github.com/tmoresby/veracity/internal/ledger"
	"github.com/tmoresby/veracity/internal/snapshots"
	"github.com/tmoresby/veracity/internal/sources"
	"github.com/tmoresby/veracity/pkg/canonical"
)

const pageText = "The defendant signed the disclosure form on 12 March 2021."

func fixtureData(t *testing.T) bundle.CorpusData {
	t.Helper()

	corpusID := uuid.MustParse("b67e0f43-2f4a-4d78-a7e0-04c11cf54a01")
	sourceID := uuid.MustParse("5e0ee02d-8781-45e0-a87f-3b4a7c2a4f11")
	anchorID := uuid.MustParse("3f2a9c44-68a2-4b1e-9d5f-2f6f0ac1f001")
	claimID := uuid.MustParse("00000000-0000-0000-0000-000000000001")

	src := sources.Source{
		ID:        sourceID,
		CorpusID:  corpusID,
		Role:      sources.RolePrimary,
		Filename:  "disclosure.pdf",
		SHA256Hex: canonical.DigestString("raw pdf bytes"),
	}

	page := sources.PageRecord{
		SourceID:          sourceID,
		PageIndex:         0,
		PageText:          pageText,
		PageTextSHA256Hex: canonical.DigestString(pageText),
	}

	anchor := anchors.Anchor{
		ID:             anchorID,
		CorpusID:       corpusID,
		SourceID:       sourceID,
		Quote:          "defendant",
		SourceDocument: "disclosure.pdf",
		PageRef:        "p. 1",
		TimelineDate:   "2021-03-12",
		Provenance: &anchors.Provenance{
			ExtractorName:    extraction.SupportedExtractor,
			ExtractorVersion: extraction.SupportedExtractorVersion,
			SourceID:         sourceID,
			PageIndex:        0,
			QuoteStartChar:   4,
			QuoteEndChar:     13,
		},
		ProvenanceState: anchors.ProvenancePresentValid,
	}

	claim := claims.Claim{
		ID:             claimID,
		CorpusID:       corpusID,
		Classification: claims.Defensible,
		Text:           "the defendant signed the form",
		Confidence:     claims.DefensibleConfidence,
		AnchorIDs:      []uuid.UUID{anchorID},
		CreatedAt:      time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
	}

	event := ledger.Event{
		ID:         uuid.MustParse("9c0f1d22-3a44-4b55-8c66-7d8899aa0b01"),
		CorpusID:   corpusID,
		EventType:  ledger.EventCorpusCreated,
		EntityType: "corpus",
		EntityID:   corpusID.String(),
		Payload:    json.RawMessage(`{"purpose":"COMPLIANCE_INTERNAL_REVIEW"}`),
		OccurredAt: time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
		HashAlg:    ledger.HashAlg,
		HashHex:    "deadbeef",
	}

	return bundle.CorpusData{
		Corpus: corpora.Corpus{
			ID:        corpusID,
			Purpose:   corpora.PurposeComplianceInternalReview,
			CreatedAt: time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
		},
		Sources:    []sources.Source{src},
		Pages:      map[uuid.UUID][]sources.PageRecord{sourceID: {page}},
		PageImages: map[string][]byte{},
		Anchors:    []anchors.Anchor{anchor},
		Claims:     []claims.Claim{claim},
		Snapshots: []snapshots.Snapshot{{
			ID:       uuid.MustParse("f8d2c1aa-7b3e-4a90-8f12-6c5e9d0b4e02"),
			CorpusID: corpusID,
			Claims:   []claims.Claim{claim},
			Scope: snapshots.Scope{
				IncludesClaimIDs:  []string{claimID.String()},
				IncludesSourceIDs: []string{sourceID.String()},
			},
			HashAlg: snapshots.HashAlg,
			HashHex: "cafe",
		}},
		Events:      []ledger.Event{event},
		RawSources:  map[string][]byte{},
		GeneratedAt: time.Date(2026, 2, 2, 12, 0, 0, 0, time.UTC),
	}
}

func TestAssembleDeterminism(t *testing.T) {
	opts := bundle.Options{Deterministic: true}

	first, err := bundle.Assemble(fixtureData(t), opts)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	second, err := bundle.Assemble(fixtureData(t), opts)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	if first.Manifest.ManifestHashHex != second.Manifest.ManifestHashHex {
		t.Errorf("manifest hash unstable: %s vs %s",
			first.Manifest.ManifestHashHex, second.Manifest.ManifestHashHex)
	}
	if len(first.Files) != len(second.Files) {
		t.Fatalf("file count differs: %d vs %d", len(first.Files), len(second.Files))
	}
	for i := range first.Files {
		if first.Files[i].Path != second.Files[i].Path {
			t.Errorf("member order unstable at %d: %s vs %s",
				i, first.Files[i].Path, second.Files[i].Path)
		}
		if !bytes.Equal(first.Files[i].Data, second.Files[i].Data) {
			t.Errorf("member %s bytes unstable", first.Files[i].Path)
		}
	}

	var zip1, zip2 bytes.Buffer
	if err := bundle.WriteZip(&zip1, first, opts); err != nil {
		t.Fatalf("write zip: %v", err)
	}
	if err := bundle.WriteZip(&zip2, second, opts); err != nil {
		t.Fatalf("write zip: %v", err)
	}
	if !bytes.Equal(zip1.Bytes(), zip2.Bytes()) {
		t.Error("deterministic exports must be byte-identical zips")
	}
}

func TestAssembleLayout(t *testing.T) {
	archive, err := bundle.Assemble(fixtureData(t), bundle.Options{Deterministic: true})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	paths := make(map[string]bool, len(archive.Files))
	for _, f := range archive.Files {
		paths[f.Path] = true
	}

	for _, want := range []string{
		"corpus.json",
		"sources.json",
		"ledger.json",
		"snapshots/f8d2c1aa-7b3e-4a90-8f12-6c5e9d0b4e02.json",
		"pages/5e0ee02d-8781-45e0-a87f-3b4a7c2a4f11/page-0.json",
		"anchors_proof_index.json",
		"audit_summary.json",
		"packet_proof_index.json",
		"snapshot_proof_index.json",
		"ledger_proof_index.json",
		"audit_lines.txt",
		"MANIFEST.json",
	} {
		if !paths[want] {
			t.Errorf("missing bundle member %s", want)
		}
	}

	if archive.Files[len(archive.Files)-1].Path != bundle.ManifestName {
		t.Errorf("manifest must be the final member, got %s", archive.Files[len(archive.Files)-1].Path)
	}

	// Page text never leaves through export; only its hash does.
	for _, f := range archive.Files {
		if bytes.Contains(f.Data, []byte(pageText)) {
			t.Errorf("member %s leaks raw page text", f.Path)
		}
	}

	if archive.Manifest.GeneratedAt != nil {
		t.Error("deterministic manifest must omit generated_at")
	}
}

func TestAssembleEventCap(t *testing.T) {
	data := fixtureData(t)
	for len(data.Events) <= bundle.MaxLedgerEvents {
		data.Events = append(data.Events, data.Events[0])
	}

	_, err := bundle.Assemble(data, bundle.Options{})
	if err == nil {
		t.Fatal("expected refusal over the event cap")
	}
	if bundle.MapHTTPStatus(err) == 500 {
		t.Errorf("cap refusal must not map to a server fault: %v", err)
	}
}

func TestAuditLines(t *testing.T) {
	data := fixtureData(t)

	lines := bundle.AuditLines(data)
	if lines == "" {
		t.Fatal("expected one audit line")
	}

	fields := strings.Split(strings.TrimSuffix(lines, "\n"), "|")
	if len(fields) != 7 {
		t.Fatalf("expected 7 pipe-delimited fields, got %d: %q", len(fields), lines)
	}

	if fields[0] != data.Anchors[0].ID.String() {
		t.Errorf("field 0 = %q, want anchor id", fields[0])
	}
	if fields[5] != canonical.DigestString(pageText) {
		t.Errorf("field 5 must be the page text hash")
	}
	if fields[6] != canonical.DigestString("defendant") {
		t.Errorf("field 6 must be the live-recomputed substring hash")
	}
}

func TestAuditLinesSkipsUnprovenanced(t *testing.T) {
	data := fixtureData(t)
	data.Anchors[0].Provenance = nil
	data.Anchors[0].ProvenanceState = anchors.ProvenanceAbsent

	if lines := bundle.AuditLines(data); lines != "" {
		t.Errorf("unprovenanced anchors must not appear in audit lines: %q", lines)
	}
}

func TestExportVerifyRoundTrip(t *testing.T) {
	opts := bundle.Options{Deterministic: true}
	archive, err := bundle.Assemble(fixtureData(t), opts)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	var buf bytes.Buffer
	if err := bundle.WriteZip(&buf, archive, opts); err != nil {
		t.Fatalf("write zip: %v", err)
	}

	result, err := bundle.Verify(context.Background(), buf.Bytes(), true)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	if !result.BundleOK || !result.ManifestOK {
		t.Errorf("fresh export must verify clean: %+v", result)
	}
	for _, fr := range result.FileResults {
		if !fr.OK {
			t.Errorf("file %s failed verification: expected %s actual %s", fr.Path, fr.Expected, fr.Actual)
		}
	}
}

func TestVerifyDetectsTampering(t *testing.T) {
	opts := bundle.Options{Deterministic: true}
	archive, err := bundle.Assemble(fixtureData(t), opts)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	// Rewrite the zip with one member's bytes corrupted.
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range archive.Files {
		member, err := zw.Create(f.Path)
		if err != nil {
			t.Fatalf("create member: %v", err)
		}
		data := f.Data
		if f.Path == "corpus.json" {
			data = append([]byte(nil), data...)
			data[0] ^= 0xff
		}
		if _, err := member.Write(data); err != nil {
			t.Fatalf("write member: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	result, err := bundle.Verify(context.Background(), buf.Bytes(), true)
	if err != nil {
		t.Fatalf("verify must not error on mismatch: %v", err)
	}

	if result.BundleOK {
		t.Error("tampered bundle must not verify")
	}
	if !result.ManifestOK {
		t.Error("manifest itself is intact; manifest_ok should hold")
	}

	found := false
	for _, fr := range result.FileResults {
		if fr.Path == "corpus.json" {
			found = true
			if fr.OK {
				t.Error("corrupted member reported ok")
			}
			if fr.Expected == fr.Actual {
				t.Error("expected and actual hashes should differ")
			}
		}
	}
	if !found {
		t.Error("corrupted member missing from file results")
	}
}

func TestVerifyStrictFlagsExtras(t *testing.T) {
	opts := bundle.Options{Deterministic: true}
	archive, err := bundle.Assemble(fixtureData(t), opts)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range archive.Files {
		member, err := zw.Create(f.Path)
		if err != nil {
			t.Fatalf("create member: %v", err)
		}
		if _, err := member.Write(f.Data); err != nil {
			t.Fatalf("write member: %v", err)
		}
	}
	extra, err := zw.Create("smuggled.txt")
	if err != nil {
		t.Fatalf("create extra: %v", err)
	}
	extra.Write([]byte("not in the manifest"))
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	strict, err := bundle.Verify(context.Background(), buf.Bytes(), true)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if strict.BundleOK {
		t.Error("strict verification must fail on unlisted files")
	}

	lenient, err := bundle.Verify(context.Background(), buf.Bytes(), false)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !lenient.BundleOK {
		t.Error("non-strict verification ignores unlisted extras")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	if _, err := bundle.Verify(context.Background(), []byte("not a zip"), true); err == nil {
		t.Error("expected error for unreadable archive")
	}
}
