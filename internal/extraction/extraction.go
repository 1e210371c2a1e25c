// Package extraction defines the contract between Veracity's evidence core
// and the page-extraction collaborator. The core never parses PDF content
// itself: an Extractor yields page text plus its hash and an optional
// rendered image, and an Anchorer proposes quoted excerpts with character
// offsets. Both are injected so production wiring and tests can supply
// different implementations.
package extraction

import (
	"context"

	"github.com/tmoresby/veracity/pkg/canonical"
)

// SupportedExtractor is the extractor name whose anchors participate in
// proof artifacts. Anchors produced by other extractors are stored but
// excluded from proof indexes, and the exclusion is surfaced to callers.
const SupportedExtractor = "pdf-page-text"

// SupportedExtractorVersion is the current version of the supported extractor.
const SupportedExtractorVersion = "1.0"

// Page is one extracted page: its full text, the SHA-256 of that text, and
// an optional rendered PNG.
type Page struct {
	PageIndex     int
	Text          string
	TextSHA256Hex string
	PNG           []byte
}

// Candidate is a proposed anchor: a verbatim excerpt with character offsets
// into the page text it was taken from.
type Candidate struct {
	PageIndex      int
	QuoteStartChar int
	QuoteEndChar   int
	SourceDocument string
	PageRef        string
	SectionRef     *string
	TimelineDate   string
}

// Extractor yields the pages of an uploaded source.
type Extractor interface {
	Name() string
	Version() string
	Pages(ctx context.Context, data []byte) ([]Page, error)
}

// Anchorer proposes anchor candidates over extracted pages.
type Anchorer interface {
	Candidates(ctx context.Context, pages []Page) ([]Candidate, error)
}

// Static is a fixture-backed Extractor and Anchorer for tests and local
// development: it returns pre-supplied pages and candidates regardless of
// the uploaded bytes, recomputing each page's text hash.
type Static struct {
	ExtractorName    string
	ExtractorVersion string
	FixturePages     []Page
	FixtureCands     []Candidate
}

// NewStatic creates a Static collaborator reporting the supported extractor
// name and version.
func NewStatic(pages []Page, candidates []Candidate) *Static {
	return &Static{
		ExtractorName:    SupportedExtractor,
		ExtractorVersion: SupportedExtractorVersion,
		FixturePages:     pages,
		FixtureCands:     candidates,
	}
}

func (s *Static) Name() string {
	return s.ExtractorName
}

func (s *Static) Version() string {
	return s.ExtractorVersion
}

func (s *Static) Pages(_ context.Context, _ []byte) ([]Page, error) {
	pages := make([]Page, len(s.FixturePages))
	for i, p := range s.FixturePages {
		p.TextSHA256Hex = canonical.DigestString(p.Text)
		pages[i] = p
	}
	return pages, nil
}

func (s *Static) Candidates(_ context.Context, _ []Page) ([]Candidate, error) {
	out := make([]Candidate, len(s.FixtureCands))
	copy(out, s.FixtureCands)
	return out, nil
}
