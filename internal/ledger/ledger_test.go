package ledger_test

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/tmoresby/veracity/internal/ledger"
	"github.com/tmoresby/veracity/pkg/canonical"
)

func TestEventTypeValid(t *testing.T) {
	valid := []ledger.EventType{
		ledger.EventCorpusCreated,
		ledger.EventSourceUploaded,
		ledger.EventBuildRun,
		ledger.EventClaimCreated,
		ledger.EventClaimDeleted,
		ledger.EventSnapshotCreated,
		ledger.EventPacketCreated,
	}
	for _, et := range valid {
		if !et.Valid() {
			t.Errorf("%s should be valid", et)
		}
	}

	if ledger.EventType("CORPUS_DELETED").Valid() {
		t.Error("unknown event type should be invalid")
	}
	if ledger.EventType("").Valid() {
		t.Error("empty event type should be invalid")
	}
}

func TestComputeHashDeterministic(t *testing.T) {
	corpusID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	entityID := uuid.MustParse("22222222-2222-2222-2222-222222222222").String()

	a, err := ledger.ComputeHash(corpusID, ledger.EventClaimCreated, "claim", entityID,
		map[string]any{"text": "x", "anchor_count": 2})
	if err != nil {
		t.Fatalf("ComputeHash failed: %v", err)
	}

	b, err := ledger.ComputeHash(corpusID, ledger.EventClaimCreated, "claim", entityID,
		map[string]any{"anchor_count": 2, "text": "x"})
	if err != nil {
		t.Fatalf("ComputeHash failed: %v", err)
	}

	if a != b {
		t.Errorf("hash not key-order independent: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64", len(a))
	}
}

func TestComputeHashCoversEveryField(t *testing.T) {
	corpusID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	base, err := ledger.ComputeHash(corpusID, ledger.EventClaimCreated, "claim", "e1", nil)
	if err != nil {
		t.Fatalf("ComputeHash failed: %v", err)
	}

	variants := []struct {
		name string
		hash func() (string, error)
	}{
		{"corpus", func() (string, error) {
			return ledger.ComputeHash(uuid.MustParse("33333333-3333-3333-3333-333333333333"),
				ledger.EventClaimCreated, "claim", "e1", nil)
		}},
		{"event type", func() (string, error) {
			return ledger.ComputeHash(corpusID, ledger.EventClaimDeleted, "claim", "e1", nil)
		}},
		{"entity type", func() (string, error) {
			return ledger.ComputeHash(corpusID, ledger.EventClaimCreated, "anchor", "e1", nil)
		}},
		{"entity id", func() (string, error) {
			return ledger.ComputeHash(corpusID, ledger.EventClaimCreated, "claim", "e2", nil)
		}},
		{"payload", func() (string, error) {
			return ledger.ComputeHash(corpusID, ledger.EventClaimCreated, "claim", "e1",
				map[string]any{"k": 1})
		}},
	}

	for _, v := range variants {
		t.Run(v.name, func(t *testing.T) {
			got, err := v.hash()
			if err != nil {
				t.Fatalf("ComputeHash failed: %v", err)
			}
			if got == base {
				t.Errorf("changing %s did not change the hash", v.name)
			}
		})
	}
}

// Verification decodes the stored payload bytes and recomputes the event
// hash, so the round trip through storage must preserve number encoding:
// Append persists the canonical bytes and Verify decodes them
// number-preserving.
func TestComputeHashSurvivesStoredPayloadRoundTrip(t *testing.T) {
	corpusID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	payload := map[string]any{"confidence": 1e-07, "anchor_count": 2}

	normalized, err := canonical.Normalize(payload)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	created, err := ledger.ComputeHash(corpusID, ledger.EventClaimCreated, "claim", "e1", normalized)
	if err != nil {
		t.Fatalf("ComputeHash failed: %v", err)
	}

	stored, err := canonical.Marshal(normalized)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Contains(stored, []byte("1e-07")) {
		t.Fatalf("expected e-notation confidence in stored bytes: %s", stored)
	}

	decoded, err := canonical.Decode(stored)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	recomputed, err := ledger.ComputeHash(corpusID, ledger.EventClaimCreated, "claim", "e1", decoded)
	if err != nil {
		t.Fatalf("ComputeHash failed: %v", err)
	}

	if created != recomputed {
		t.Errorf("stored payload rehash differs: %s vs %s", created, recomputed)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", ledger.ErrNotFound, http.StatusNotFound},
		{"duplicate", ledger.ErrDuplicate, http.StatusConflict},
		{"invalid event type", ledger.ErrInvalidEventType, http.StatusBadRequest},
		{"limit exceeded", ledger.ErrLimitExceeded, http.StatusBadRequest},
		{"wrapped limit", fmt.Errorf("list: %w", ledger.ErrLimitExceeded), http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ledger.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
