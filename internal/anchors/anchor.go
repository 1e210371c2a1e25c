// Package anchors implements the anchor domain for Veracity. An anchor is
// a verbatim quoted excerpt with exact provenance: source, page, and
// character offsets into the extracted page text. The forensic-soundness
// guarantee is that for any anchor with valid provenance,
// page_text[start:end] equals the recorded quote exactly; the proof
// operation recomputes that from stored data so a party holding only the
// page text and the anchor record can check it without API access.
package anchors

import (
	"encoding/json"

	"github.com/google/uuid"
)

// ProvenanceState classifies whether an anchor's provenance record is
// usable for proof. Stored provenance that fails to decode is reported as
// unparseable rather than silently treated as absent.
type ProvenanceState string

const (
	ProvenancePresentValid       ProvenanceState = "present-valid"
	ProvenancePresentUnparseable ProvenanceState = "present-unparseable"
	ProvenanceAbsent             ProvenanceState = "absent"
)

// Provenance records where an anchor's quote was extracted from.
type Provenance struct {
	ExtractorName    string    `json:"extractor_name"`
	ExtractorVersion string    `json:"extractor_version"`
	SourceID         uuid.UUID `json:"source_id"`
	PageIndex        int       `json:"page_index"`
	QuoteStartChar   int       `json:"quote_start_char"`
	QuoteEndChar     int       `json:"quote_end_char"`
}

// Anchor is one verbatim excerpt attached to a corpus.
type Anchor struct {
	ID              uuid.UUID       `json:"id"`
	CorpusID        uuid.UUID       `json:"corpus_id"`
	SourceID        uuid.UUID       `json:"source_id"`
	Quote           string          `json:"quote"`
	SourceDocument  string          `json:"source_document"`
	PageRef         string          `json:"page_ref"`
	SectionRef      *string         `json:"section_ref,omitempty"`
	TimelineDate    string          `json:"timeline_date"`
	Provenance      *Provenance     `json:"provenance,omitempty"`
	ProvenanceState ProvenanceState `json:"provenance_state"`
}

// Provable reports whether the anchor can participate in proof artifacts:
// valid provenance produced by the named extractor.
func (a *Anchor) Provable(extractorName string) bool {
	return a.ProvenanceState == ProvenancePresentValid &&
		a.Provenance != nil &&
		a.Provenance.ExtractorName == extractorName
}

// DecodeProvenance interprets a raw provenance column value into a typed
// record and its validity state. A SQL NULL (nil or empty raw value) is
// absent; JSON that fails to decode is present-unparseable.
func DecodeProvenance(raw []byte) (*Provenance, ProvenanceState) {
	if len(raw) == 0 {
		return nil, ProvenanceAbsent
	}

	var p Provenance
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, ProvenancePresentUnparseable
	}
	if p.ExtractorName == "" || p.QuoteEndChar < p.QuoteStartChar || p.QuoteStartChar < 0 {
		return nil, ProvenancePresentUnparseable
	}

	return &p, ProvenancePresentValid
}
