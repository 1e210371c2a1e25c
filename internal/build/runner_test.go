package build

import (
	"testing"

	"github.com/google/uuid"

	"github.com/tmoresby/veracity/internal/anchors"
	"github.com/tmoresby/veracity/internal/extraction"
	"github.com/tmoresby/veracity/internal/sources"
)

func TestBuildAnchors(t *testing.T) {
	corpusID := uuid.New()
	src := sources.Source{ID: uuid.New(), CorpusID: corpusID, Filename: "disclosure.pdf"}
	pages := []extraction.Page{
		{PageIndex: 0, Text: "The defendant signed the disclosure form."},
	}
	extractor := extraction.NewStatic(pages, nil)

	candidates := []extraction.Candidate{
		{
			PageIndex:      0,
			QuoteStartChar: 4,
			QuoteEndChar:   13,
			SourceDocument: "disclosure.pdf",
			PageRef:        "p. 1",
			TimelineDate:   "2021-03-12",
		},
	}

	built, err := buildAnchors(corpusID, src, pages, candidates, extractor)
	if err != nil {
		t.Fatalf("buildAnchors: %v", err)
	}
	if len(built) != 1 {
		t.Fatalf("expected 1 anchor, got %d", len(built))
	}

	a := built[0]
	if a.Quote != "defendant" {
		t.Errorf("quote = %q, want %q", a.Quote, "defendant")
	}
	if a.ProvenanceState != anchors.ProvenancePresentValid {
		t.Errorf("provenance state = %s", a.ProvenanceState)
	}
	if a.Provenance == nil || a.Provenance.ExtractorName != extraction.SupportedExtractor {
		t.Errorf("provenance = %+v", a.Provenance)
	}
	if a.Provenance.SourceID != src.ID || a.Provenance.QuoteStartChar != 4 || a.Provenance.QuoteEndChar != 13 {
		t.Errorf("provenance fields = %+v", a.Provenance)
	}
}

func TestBuildAnchorsRejectsBadCandidates(t *testing.T) {
	corpusID := uuid.New()
	src := sources.Source{ID: uuid.New(), CorpusID: corpusID}
	pages := []extraction.Page{{PageIndex: 0, Text: "short"}}
	extractor := extraction.NewStatic(pages, nil)

	tests := []struct {
		name      string
		candidate extraction.Candidate
	}{
		{"missing page", extraction.Candidate{PageIndex: 7, QuoteStartChar: 0, QuoteEndChar: 1}},
		{"offsets past text", extraction.Candidate{PageIndex: 0, QuoteStartChar: 0, QuoteEndChar: 99}},
		{"inverted offsets", extraction.Candidate{PageIndex: 0, QuoteStartChar: 3, QuoteEndChar: 1}},
		{"negative start", extraction.Candidate{PageIndex: 0, QuoteStartChar: -1, QuoteEndChar: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildAnchors(corpusID, src, pages, []extraction.Candidate{tt.candidate}, extractor)
			if err == nil {
				t.Error("expected error for bad candidate")
			}
		})
	}
}
