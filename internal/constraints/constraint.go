// Package constraints implements read access to analysis constraints: the
// conflict, missing-evidence, and time-mismatch findings recorded against
// a corpus. Constraints are produced by the analysis subsystem; this core
// only reads and reports them.
package constraints

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Type discriminates the constraint payload union.
type Type string

const (
	TypeConflict        Type = "CONFLICT"
	TypeMissingEvidence Type = "MISSING_EVIDENCE"
	TypeTimeMismatch    Type = "TIME_MISMATCH"
)

// Valid reports whether the type is one of the known variants.
func (t Type) Valid() bool {
	switch t {
	case TypeConflict, TypeMissingEvidence, TypeTimeMismatch:
		return true
	}
	return false
}

// ConflictSide identifies one anchor in a conflict pair.
type ConflictSide struct {
	AnchorID       uuid.UUID `json:"anchor_id"`
	SourceDocument string    `json:"source_document"`
	PageRef        string    `json:"page_ref"`
}

// ConflictPayload describes two anchors asserting incompatible facts.
type ConflictPayload struct {
	Left  ConflictSide `json:"left"`
	Right ConflictSide `json:"right"`
}

// MissingEvidencePayload describes an assertion the corpus cannot support.
type MissingEvidencePayload struct {
	RequestedAssertion string `json:"requested_assertion"`
	Reason             string `json:"reason"`
}

// TimeMismatchPayload describes anchors whose dates contradict each other.
type TimeMismatchPayload struct {
	EarlierDate string `json:"earlier_date"`
	LaterDate   string `json:"later_date"`
	Note        string `json:"note"`
}

// Constraint is one recorded finding. Payload holds the raw union value;
// DecodePayload interprets it by Type.
type Constraint struct {
	ID        uuid.UUID       `json:"id"`
	CorpusID  uuid.UUID       `json:"corpus_id"`
	Type      Type            `json:"type"`
	Summary   string          `json:"summary"`
	ClaimID   *uuid.UUID      `json:"claim_id,omitempty"`
	AnchorIDs []uuid.UUID     `json:"anchor_ids"`
	Payload   json.RawMessage `json:"payload"`
}

// DecodePayload returns the typed payload variant for the constraint's
// type: *ConflictPayload, *MissingEvidencePayload, or *TimeMismatchPayload.
func (c *Constraint) DecodePayload() (any, error) {
	switch c.Type {
	case TypeConflict:
		var p ConflictPayload
		if err := json.Unmarshal(c.Payload, &p); err != nil {
			return nil, fmt.Errorf("decode conflict payload: %w", err)
		}
		return &p, nil
	case TypeMissingEvidence:
		var p MissingEvidencePayload
		if err := json.Unmarshal(c.Payload, &p); err != nil {
			return nil, fmt.Errorf("decode missing-evidence payload: %w", err)
		}
		return &p, nil
	case TypeTimeMismatch:
		var p TimeMismatchPayload
		if err := json.Unmarshal(c.Payload, &p); err != nil {
			return nil, fmt.Errorf("decode time-mismatch payload: %w", err)
		}
		return &p, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, c.Type)
}
