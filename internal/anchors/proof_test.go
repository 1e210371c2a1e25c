package anchors_test

import (
	"testing"

	"github.com/tmoresby/veracity/internal/anchors"
	"github.com/tmoresby/veracity/pkg/canonical"
)

func TestProve(t *testing.T) {
	page := "The defendant signed the disclosure form on 12 March 2021."

	tests := []struct {
		name         string
		start        int
		end          int
		quote        string
		wantInRange  bool
		wantMatches  bool
		wantProven   bool
	}{
		{
			name:        "exact match",
			start:       4,
			end:         13,
			quote:       "defendant",
			wantInRange: true,
			wantMatches: true,
			wantProven:  true,
		},
		{
			name:        "quote differs from substring",
			start:       4,
			end:         13,
			quote:       "plaintiff",
			wantInRange: true,
			wantMatches: false,
			wantProven:  false,
		},
		{
			name:        "full page quote",
			start:       0,
			end:         len(page),
			quote:       page,
			wantInRange: true,
			wantMatches: true,
			wantProven:  true,
		},
		{
			name:        "empty quote at valid offset",
			start:       10,
			end:         10,
			quote:       "",
			wantInRange: true,
			wantMatches: true,
			wantProven:  true,
		},
		{
			name:        "negative start",
			start:       -1,
			end:         5,
			quote:       "The d",
			wantInRange: false,
		},
		{
			name:        "end before start",
			start:       13,
			end:         4,
			quote:       "defendant",
			wantInRange: false,
		},
		{
			name:        "end past page text",
			start:       0,
			end:         len(page) + 1,
			quote:       page,
			wantInRange: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := anchors.Prove(page, tt.start, tt.end, tt.quote)

			if result.OffsetsInRange != tt.wantInRange {
				t.Errorf("OffsetsInRange = %v, want %v", result.OffsetsInRange, tt.wantInRange)
			}
			if result.QuoteMatches != tt.wantMatches {
				t.Errorf("QuoteMatches = %v, want %v", result.QuoteMatches, tt.wantMatches)
			}
			if result.Proven != tt.wantProven {
				t.Errorf("Proven = %v, want %v", result.Proven, tt.wantProven)
			}

			if result.PageTextSHA256 != canonical.DigestString(page) {
				t.Errorf("PageTextSHA256 does not match page digest")
			}

			if tt.wantInRange {
				want := page[tt.start:tt.end]
				if result.Substring != want {
					t.Errorf("Substring = %q, want %q", result.Substring, want)
				}
				if result.SubstringSHA256 != canonical.DigestString(want) {
					t.Errorf("SubstringSHA256 does not match substring digest")
				}
			} else {
				if result.Substring != "" || result.SubstringSHA256 != "" {
					t.Errorf("out-of-range proof should not expose a substring")
				}
			}
		})
	}
}

func TestProveOffsetsAreBytes(t *testing.T) {
	// Multi-byte text: offsets index bytes, not runes.
	page := "témoin: oui"

	result := anchors.Prove(page, 0, 8, "témoin:")
	if !result.Proven {
		t.Fatalf("expected byte-offset quote to prove, got %+v", result)
	}
}

func TestDecodeProvenance(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantState anchors.ProvenanceState
	}{
		{
			name:      "nil raw is absent",
			raw:       "",
			wantState: anchors.ProvenanceAbsent,
		},
		{
			name:      "malformed json",
			raw:       `{"extractor_name": `,
			wantState: anchors.ProvenancePresentUnparseable,
		},
		{
			name:      "missing extractor name",
			raw:       `{"extractor_version":"1.0","page_index":0,"quote_start_char":0,"quote_end_char":5}`,
			wantState: anchors.ProvenancePresentUnparseable,
		},
		{
			name:      "inverted offsets",
			raw:       `{"extractor_name":"pdf-page-text","extractor_version":"1.0","page_index":0,"quote_start_char":10,"quote_end_char":4}`,
			wantState: anchors.ProvenancePresentUnparseable,
		},
		{
			name:      "negative start",
			raw:       `{"extractor_name":"pdf-page-text","extractor_version":"1.0","page_index":0,"quote_start_char":-1,"quote_end_char":4}`,
			wantState: anchors.ProvenancePresentUnparseable,
		},
		{
			name:      "valid record",
			raw:       `{"extractor_name":"pdf-page-text","extractor_version":"1.0","source_id":"5e0ee02d-8781-45e0-a87f-3b4a7c2a4f11","page_index":2,"quote_start_char":4,"quote_end_char":13}`,
			wantState: anchors.ProvenancePresentValid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var raw []byte
			if tt.raw != "" {
				raw = []byte(tt.raw)
			}

			p, state := anchors.DecodeProvenance(raw)
			if state != tt.wantState {
				t.Errorf("state = %s, want %s", state, tt.wantState)
			}

			if tt.wantState == anchors.ProvenancePresentValid {
				if p == nil {
					t.Fatal("expected decoded provenance record")
				}
				if p.PageIndex != 2 || p.QuoteStartChar != 4 || p.QuoteEndChar != 13 {
					t.Errorf("unexpected decoded fields: %+v", p)
				}
			} else if p != nil {
				t.Errorf("expected nil provenance for state %s", tt.wantState)
			}
		})
	}
}

func TestProvable(t *testing.T) {
	valid := &anchors.Anchor{
		ProvenanceState: anchors.ProvenancePresentValid,
		Provenance:      &anchors.Provenance{ExtractorName: "pdf-page-text"},
	}
	if !valid.Provable("pdf-page-text") {
		t.Error("expected valid provenance from named extractor to be provable")
	}
	if valid.Provable("other-extractor") {
		t.Error("foreign extractor should not be provable")
	}

	absent := &anchors.Anchor{ProvenanceState: anchors.ProvenanceAbsent}
	if absent.Provable("pdf-page-text") {
		t.Error("absent provenance should not be provable")
	}
}
