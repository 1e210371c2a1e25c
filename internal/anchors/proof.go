package anchors

import "github.com/tmoresby/veracity/pkg/canonical"

// ProofResult is the outcome of recomputing an anchor's quote from page
// text and byte offsets. A failed match is data, never an error.
type ProofResult struct {
	AnchorID          string `json:"anchor_id,omitempty"`
	SourceID          string `json:"source_id,omitempty"`
	PageIndex         int    `json:"page_index"`
	QuoteStartChar    int    `json:"quote_start_char"`
	QuoteEndChar      int    `json:"quote_end_char"`
	Substring         string `json:"substring"`
	SubstringSHA256   string `json:"substring_sha256_hex"`
	PageTextSHA256    string `json:"page_text_sha256_hex"`
	OffsetsInRange    bool   `json:"offsets_in_range"`
	QuoteMatches      bool   `json:"quote_matches"`
	Proven            bool   `json:"proven"`
}

// Prove recomputes pageText[start:end] and its SHA-256 and compares the
// substring against the recorded quote. It is a standalone operation: a
// verifier holding only the page text and the anchor record can run it
// with no corpus access. Offsets are byte offsets into the UTF-8 page
// text, matching the extraction collaborator's convention.
func Prove(pageText string, start, end int, quote string) ProofResult {
	result := ProofResult{
		QuoteStartChar: start,
		QuoteEndChar:   end,
		PageTextSHA256: canonical.DigestString(pageText),
	}

	if start < 0 || end < start || end > len(pageText) {
		return result
	}
	result.OffsetsInRange = true

	result.Substring = pageText[start:end]
	result.SubstringSHA256 = canonical.DigestString(result.Substring)
	result.QuoteMatches = result.Substring == quote
	result.Proven = result.QuoteMatches

	return result
}
