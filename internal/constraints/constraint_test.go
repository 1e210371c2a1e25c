package constraints_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/tmoresby/veracity/internal/constraints"
)

func TestDecodePayload(t *testing.T) {
	t.Run("conflict", func(t *testing.T) {
		c := &constraints.Constraint{
			Type: constraints.TypeConflict,
			Payload: json.RawMessage(`{
				"left":  {"anchor_id": "3f2a9c44-68a2-4b1e-9d5f-2f6f0ac1f001", "source_document": "deposition.pdf", "page_ref": "p. 4"},
				"right": {"anchor_id": "3f2a9c44-68a2-4b1e-9d5f-2f6f0ac1f002", "source_document": "contract.pdf", "page_ref": "p. 11"}
			}`),
		}

		decoded, err := c.DecodePayload()
		if err != nil {
			t.Fatalf("DecodePayload: %v", err)
		}

		p, ok := decoded.(*constraints.ConflictPayload)
		if !ok {
			t.Fatalf("decoded type = %T, want *ConflictPayload", decoded)
		}
		if p.Left.SourceDocument != "deposition.pdf" || p.Right.PageRef != "p. 11" {
			t.Errorf("unexpected conflict payload: %+v", p)
		}
	})

	t.Run("missing evidence", func(t *testing.T) {
		c := &constraints.Constraint{
			Type:    constraints.TypeMissingEvidence,
			Payload: json.RawMessage(`{"requested_assertion": "signature was witnessed", "reason": "no witness page uploaded"}`),
		}

		decoded, err := c.DecodePayload()
		if err != nil {
			t.Fatalf("DecodePayload: %v", err)
		}

		p, ok := decoded.(*constraints.MissingEvidencePayload)
		if !ok {
			t.Fatalf("decoded type = %T, want *MissingEvidencePayload", decoded)
		}
		if p.RequestedAssertion != "signature was witnessed" {
			t.Errorf("unexpected payload: %+v", p)
		}
	})

	t.Run("time mismatch", func(t *testing.T) {
		c := &constraints.Constraint{
			Type:    constraints.TypeTimeMismatch,
			Payload: json.RawMessage(`{"earlier_date": "2021-03-12", "later_date": "2021-02-01", "note": "filing predates signature"}`),
		}

		decoded, err := c.DecodePayload()
		if err != nil {
			t.Fatalf("DecodePayload: %v", err)
		}

		p, ok := decoded.(*constraints.TimeMismatchPayload)
		if !ok {
			t.Fatalf("decoded type = %T, want *TimeMismatchPayload", decoded)
		}
		if p.Note != "filing predates signature" {
			t.Errorf("unexpected payload: %+v", p)
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		c := &constraints.Constraint{Type: "SPECULATION", Payload: json.RawMessage(`{}`)}

		if _, err := c.DecodePayload(); !errors.Is(err, constraints.ErrUnknownType) {
			t.Errorf("err = %v, want ErrUnknownType", err)
		}
	})

	t.Run("malformed payload", func(t *testing.T) {
		c := &constraints.Constraint{Type: constraints.TypeConflict, Payload: json.RawMessage(`{"left":`)}

		if _, err := c.DecodePayload(); err == nil {
			t.Error("expected decode error for malformed payload")
		}
	})
}

func TestTypeValid(t *testing.T) {
	for _, typ := range []constraints.Type{
		constraints.TypeConflict,
		constraints.TypeMissingEvidence,
		constraints.TypeTimeMismatch,
	} {
		if !typ.Valid() {
			t.Errorf("%s should be valid", typ)
		}
	}
	if constraints.Type("HUNCH").Valid() {
		t.Error("unknown type should be invalid")
	}
}
