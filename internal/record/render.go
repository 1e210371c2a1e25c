package record

import (
	"fmt"
	"strings"
)

// RenderText produces the plain-text rendering of a record. It is a pure
// function of the record and performs no additional hashing.
func RenderText(r *Record) string {
	var b strings.Builder

	fmt.Fprintf(&b, "VERIFIED RECORD\n")
	fmt.Fprintf(&b, "Corpus: %s\n", r.CorpusID)
	fmt.Fprintf(&b, "Generated: %s\n", r.GeneratedAt.UTC().Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "Record hash (%s): %s\n", r.HashAlg, r.RecordHashHex)

	fmt.Fprintf(&b, "\nSOURCES (%d)\n", len(r.Sources))
	for _, s := range r.Sources {
		fmt.Fprintf(&b, "  [%s] %s  sha256=%s\n", s.Role, s.Filename, s.SHA256Hex)
	}

	fmt.Fprintf(&b, "\nSUPPORTED CLAIMS (%d)\n", len(r.SupportedClaims))
	for _, c := range r.SupportedClaims {
		fmt.Fprintf(&b, "  %s (confidence %.2f)\n", c.Text, c.Confidence)
		for _, a := range c.Anchors {
			fmt.Fprintf(&b, "    \"%s\" - %s, %s\n", a.Quote, a.SourceDocument, a.PageRef)
		}
	}

	fmt.Fprintf(&b, "\nRESTRICTED CLAIMS (%d)\n", len(r.RestrictedClaims))
	for _, c := range r.RestrictedClaims {
		fmt.Fprintf(&b, "  %s (confidence %.2f)\n", c.Text, c.Confidence)
		if c.RefusalReason != nil {
			fmt.Fprintf(&b, "    refused: %s\n", *c.RefusalReason)
		}
	}

	fmt.Fprintf(&b, "\nAMBIGUOUS CLAIMS (%d)\n", len(r.AmbiguousClaims))
	for _, c := range r.AmbiguousClaims {
		fmt.Fprintf(&b, "  [flagged] %s (confidence %.2f)\n", c.Text, c.Confidence)
		for _, a := range c.Anchors {
			fmt.Fprintf(&b, "    \"%s\" - %s, %s\n", a.Quote, a.SourceDocument, a.PageRef)
		}
	}

	fmt.Fprintf(&b, "\nCONSTRAINTS: %d conflicts, %d missing evidence, %d time mismatches\n",
		len(r.Conflicts), len(r.MissingEvidence), len(r.TimeMismatches))
	for _, c := range r.Conflicts {
		fmt.Fprintf(&b, "  CONFLICT: %s\n", c.Summary)
	}
	for _, c := range r.MissingEvidence {
		fmt.Fprintf(&b, "  MISSING EVIDENCE: %s\n", c.Summary)
	}
	for _, c := range r.TimeMismatches {
		fmt.Fprintf(&b, "  TIME MISMATCH: %s\n", c.Summary)
	}

	return b.String()
}
