// Package build runs the extraction pipeline over a corpus: pull each
// uploaded source's bytes from blob storage, extract page text and images
// through the extraction collaborator, persist page records and anchor
// candidates, and append one BUILD_RUN ledger event. The whole run commits
// in a single transaction.
package build

import (
	"github.com/google/uuid"
)

// Mode selects how much of the pipeline a build run executes.
type Mode string

const (
	// ModeFull persists page records and page images, then anchors.
	ModeFull Mode = "full"
	// ModeAnchorsOnly regenerates anchors against the pages already
	// persisted by an earlier full build.
	ModeAnchorsOnly Mode = "anchors_only"
)

// Valid reports whether m is a known build mode.
func (m Mode) Valid() bool {
	return m == ModeFull || m == ModeAnchorsOnly
}

// Command carries a build request.
type Command struct {
	CorpusID uuid.UUID
	Mode     Mode
}

// Result reports what one build run produced.
type Result struct {
	CorpusID uuid.UUID `json:"corpus_id"`
	Mode     Mode      `json:"mode"`
	Sources  int       `json:"sources"`
	Pages    int       `json:"pages"`
	Anchors  int       `json:"anchors"`
}
