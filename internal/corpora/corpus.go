// Package corpora implements the corpus domain for Veracity. A corpus is
// the immutable root of all other entities: sources, anchors, claims,
// constraints, snapshots, packets, and ledger events all belong to exactly
// one corpus. Corpora are created once and never deleted.
package corpora

import (
	"time"

	"github.com/google/uuid"
)

// Purpose classifies why a corpus was assembled.
type Purpose string

const (
	PurposeLitigationSupport        Purpose = "LITIGATION_SUPPORT"
	PurposeInvestigativeJournalism  Purpose = "INVESTIGATIVE_JOURNALISM"
	PurposeComplianceInternalReview Purpose = "COMPLIANCE_INTERNAL_REVIEW"
	PurposeResearchExploratory      Purpose = "RESEARCH_EXPLORATORY"
)

// Valid reports whether p is a known purpose.
func (p Purpose) Valid() bool {
	switch p {
	case PurposeLitigationSupport, PurposeInvestigativeJournalism,
		PurposeComplianceInternalReview, PurposeResearchExploratory:
		return true
	}
	return false
}

// Corpus is the root entity for an investigation's evidence.
type Corpus struct {
	ID        uuid.UUID `json:"id"`
	Purpose   Purpose   `json:"purpose"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateCommand carries the data needed to create a corpus.
type CreateCommand struct {
	Purpose Purpose `json:"purpose"`
}
