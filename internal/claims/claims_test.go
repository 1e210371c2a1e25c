package claims_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/tmoresby/veracity/internal/claims"
)

func TestClassify(t *testing.T) {
	t.Run("anchored claims are defensible", func(t *testing.T) {
		classification, confidence, refusal := claims.Classify([]uuid.UUID{uuid.New()})

		if classification != claims.Defensible {
			t.Errorf("classification = %s, want %s", classification, claims.Defensible)
		}
		if confidence != claims.DefensibleConfidence {
			t.Errorf("confidence = %v, want %v", confidence, claims.DefensibleConfidence)
		}
		if refusal != nil {
			t.Errorf("expected no refusal reason, got %q", *refusal)
		}
	})

	t.Run("anchorless claims are restricted", func(t *testing.T) {
		classification, confidence, refusal := claims.Classify(nil)

		if classification != claims.Restricted {
			t.Errorf("classification = %s, want %s", classification, claims.Restricted)
		}
		if confidence != claims.RestrictedConfidence {
			t.Errorf("confidence = %v, want %v", confidence, claims.RestrictedConfidence)
		}
		if refusal == nil || *refusal != claims.RestrictedReason {
			t.Errorf("refusal = %v, want %q", refusal, claims.RestrictedReason)
		}
	})
}

func TestSortAnchorIDs(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	b := uuid.MustParse("00000000-0000-0000-0000-000000000002")
	c := uuid.MustParse("00000000-0000-0000-0000-000000000003")

	sorted := claims.SortAnchorIDs([]uuid.UUID{c, a, b, a})

	want := []uuid.UUID{a, b, c}
	if len(sorted) != len(want) {
		t.Fatalf("len = %d, want %d (%v)", len(sorted), len(want), sorted)
	}
	for i := range want {
		if sorted[i] != want[i] {
			t.Errorf("sorted[%d] = %s, want %s", i, sorted[i], want[i])
		}
	}

	// Input order must not matter.
	again := claims.SortAnchorIDs([]uuid.UUID{b, c, a})
	for i := range want {
		if again[i] != want[i] {
			t.Errorf("reordered input: sorted[%d] = %s, want %s", i, again[i], want[i])
		}
	}

	// Input slice is left untouched.
	original := []uuid.UUID{c, a}
	claims.SortAnchorIDs(original)
	if original[0] != c || original[1] != a {
		t.Error("SortAnchorIDs mutated its input")
	}
}

func TestClassificationValid(t *testing.T) {
	for _, c := range []claims.Classification{claims.Defensible, claims.Restricted, claims.Ambiguous} {
		if !c.Valid() {
			t.Errorf("%s should be valid", c)
		}
	}
	if claims.Classification("SPECULATIVE").Valid() {
		t.Error("unknown classification should be invalid")
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{claims.ErrNotFound, http.StatusNotFound},
		{claims.ErrDuplicate, http.StatusConflict},
		{claims.ErrEmptyText, http.StatusUnprocessableEntity},
		{claims.ErrUnknownAnchor, http.StatusUnprocessableEntity},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := claims.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
