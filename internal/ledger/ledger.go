// Package ledger implements the append-only audit log for Veracity. Every
// corpus mutation appends exactly one individually content-hashed event;
// events are never updated or deleted, so corrupted history remains
// observable rather than repairable.
package ledger

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/tmoresby/veracity/pkg/canonical"
)

// EventType enumerates the corpus mutations recorded in the ledger.
type EventType string

const (
	EventCorpusCreated   EventType = "CORPUS_CREATED"
	EventSourceUploaded  EventType = "SOURCE_UPLOADED"
	EventBuildRun        EventType = "BUILD_RUN"
	EventClaimCreated    EventType = "CLAIM_CREATED"
	EventClaimDeleted    EventType = "CLAIM_DELETED"
	EventSnapshotCreated EventType = "SNAPSHOT_CREATED"
	EventPacketCreated   EventType = "PACKET_CREATED"
)

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	switch t {
	case EventCorpusCreated, EventSourceUploaded, EventBuildRun,
		EventClaimCreated, EventClaimDeleted, EventSnapshotCreated,
		EventPacketCreated:
		return true
	}
	return false
}

// Event is one append-only audit record.
type Event struct {
	ID         uuid.UUID       `json:"id"`
	CorpusID   uuid.UUID       `json:"corpus_id"`
	EventType  EventType       `json:"event_type"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurred_at"`
	HashAlg    string          `json:"hash_alg"`
	HashHex    string          `json:"hash_hex"`
}

// HashAlg is the only hash algorithm the ledger records.
const HashAlg = "SHA-256"

// ComputeHash returns the content hash of a ledger event. The hash covers
// corpus, event type, entity reference, and payload; occurred_at and the
// row id are excluded so the hash is recomputable from durable fields alone.
func ComputeHash(corpusID uuid.UUID, eventType EventType, entityType, entityID string, payload any) (string, error) {
	return canonical.Hash(map[string]any{
		"canon":      canonical.Version,
		"corpus_id":  corpusID.String(),
		"event_type": string(eventType),
		"entity": map[string]any{
			"entity_type": entityType,
			"entity_id":   entityID,
		},
		"payload": payload,
	})
}

// VerifyResult reports a hash recomputation outcome. A mismatch is data,
// not an error.
type VerifyResult struct {
	EventID        uuid.UUID `json:"event_id"`
	Verified       bool      `json:"verified"`
	StoredHash     string    `json:"stored_hash_hex"`
	RecomputedHash string    `json:"recomputed_hash_hex"`
}

// Filters narrows ledger listings.
type Filters struct {
	EventType *EventType `json:"event_type,omitempty"`

	// After is a paging cursor over the newest-first listing: it selects
	// events that occurred strictly before the given time, i.e. the page
	// after the one that ended at that timestamp.
	After *time.Time `json:"after,omitempty"`
}

// MaxListLimit caps ledger listings and the bundle export event count.
// Exceeding it on export is a refusal, never a silent truncation.
const MaxListLimit = 500
