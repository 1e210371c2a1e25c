package packets_test

import (
	"bytes"
	"testing"

	"github.com/google/uuid"

	"github.com/tmoresby/veracity/internal/anchors"
	"github.com/tmoresby/veracity/internal/claims"
	"github.com/tmoresby/veracity/internal/packets"
	"github.com/tmoresby/veracity/pkg/canonical"
)

var (
	corpusID   = uuid.MustParse("b67e0f43-2f4a-4d78-a7e0-04c11cf54a01")
	snapshotID = uuid.MustParse("f8d2c1aa-7b3e-4a90-8f12-6c5e9d0b4e02")
	claimID    = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	anchorA    = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	anchorB    = uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	sourceID   = uuid.MustParse("5e0ee02d-8781-45e0-a87f-3b4a7c2a4f11")
)

func fixtureClaim(anchorIDs ...uuid.UUID) *claims.Claim {
	return &claims.Claim{
		ID:             claimID,
		CorpusID:       corpusID,
		Classification: claims.Defensible,
		Text:           "the form was signed on 12 March 2021",
		Confidence:     claims.DefensibleConfidence,
		AnchorIDs:      anchorIDs,
	}
}

func fixtureAnchors() []anchors.Anchor {
	return []anchors.Anchor{
		{
			ID:             anchorA,
			CorpusID:       corpusID,
			SourceID:       sourceID,
			Quote:          "signed the disclosure form",
			SourceDocument: "disclosure.pdf",
			PageRef:        "p. 3",
			TimelineDate:   "2021-03-12",
		},
		{
			ID:             anchorB,
			CorpusID:       corpusID,
			SourceID:       sourceID,
			Quote:          "on 12 March 2021",
			SourceDocument: "disclosure.pdf",
			PageRef:        "p. 3",
			TimelineDate:   "2021-03-12",
		},
	}
}

func TestBuildPayload(t *testing.T) {
	snapshotHash := "d3a1f60b9c"
	claim := fixtureClaim(anchorB, anchorA)

	payload := packets.BuildPayload(corpusID, snapshotID, snapshotHash, claim, fixtureAnchors())

	if payload.CorpusID != corpusID.String() || payload.SnapshotID != snapshotID.String() {
		t.Errorf("payload ids wrong: %+v", payload)
	}
	if payload.SnapshotHashHex != snapshotHash {
		t.Errorf("snapshot hash not embedded: %q", payload.SnapshotHashHex)
	}

	// Claim anchor ids come out sorted regardless of stored order.
	if payload.Claim.AnchorIDs[0] != anchorA.String() || payload.Claim.AnchorIDs[1] != anchorB.String() {
		t.Errorf("claim anchor ids not sorted: %v", payload.Claim.AnchorIDs)
	}

	if len(payload.Anchors) != 2 {
		t.Fatalf("expected 2 projected anchors, got %d", len(payload.Anchors))
	}
	if payload.Anchors[0].Quote != "signed the disclosure form" {
		t.Errorf("unexpected anchor projection: %+v", payload.Anchors[0])
	}
	if payload.Anchors[0].SourceID != sourceID.String() {
		t.Errorf("anchor projection missing source id: %+v", payload.Anchors[0])
	}
}

func TestHashBindsSnapshot(t *testing.T) {
	claim := fixtureClaim(anchorA)
	anchorSet := fixtureAnchors()[:1]

	withSnapshot := packets.BuildPayload(corpusID, snapshotID, "aaaa", claim, anchorSet)
	first, err := packets.Hash(withSnapshot)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	// Changing only the embedded snapshot hash must change the packet hash:
	// that is the dependent-hash binding.
	rebound := packets.BuildPayload(corpusID, snapshotID, "bbbb", claim, anchorSet)
	second, err := packets.Hash(rebound)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if first == second {
		t.Error("packet hash must cover the embedded snapshot hash")
	}
}

func TestHashDeterminism(t *testing.T) {
	claim := fixtureClaim(anchorB, anchorA)
	payload := packets.BuildPayload(corpusID, snapshotID, "aaaa", claim, fixtureAnchors())

	first, err := packets.Hash(payload)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	reordered := fixtureClaim(anchorA, anchorB)
	again, err := packets.Hash(packets.BuildPayload(corpusID, snapshotID, "aaaa", reordered, fixtureAnchors()))
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if first != again {
		t.Errorf("hash depends on anchor id input order: %s vs %s", first, again)
	}
}

func TestHashRawRoundTrip(t *testing.T) {
	payload := packets.BuildPayload(corpusID, snapshotID, "aaaa", fixtureClaim(anchorA), fixtureAnchors()[:1])

	created, err := packets.Hash(payload)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	persisted, err := canonical.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	recomputed, err := packets.HashRaw(persisted)
	if err != nil {
		t.Fatalf("hash raw: %v", err)
	}

	if created != recomputed {
		t.Errorf("persisted payload rehash differs: %s vs %s", created, recomputed)
	}
}

// Stored payload bytes must reproduce the exact number encoding the packet
// hash was computed over; a storage layer that re-renders numbers would
// fail verification on uncorrupted data.
func TestHashRawPreservesNumberEncoding(t *testing.T) {
	claim := fixtureClaim(anchorA)
	claim.Classification = claims.Ambiguous
	claim.Confidence = 1e-07

	payload := packets.BuildPayload(corpusID, snapshotID, "d3a1f60b9c", claim, fixtureAnchors()[:1])

	created, err := packets.Hash(payload)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	persisted, err := canonical.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Contains(persisted, []byte("1e-07")) {
		t.Fatalf("expected e-notation confidence in canonical bytes: %s", persisted)
	}

	recomputed, err := packets.HashRaw(persisted)
	if err != nil {
		t.Fatalf("hash raw: %v", err)
	}
	if created != recomputed {
		t.Errorf("exact stored bytes must rehash to the creation hash: %s vs %s", created, recomputed)
	}

	rerendered := bytes.Replace(persisted, []byte("1e-07"), []byte("0.0000001"), 1)
	altered, err := packets.HashRaw(rerendered)
	if err != nil {
		t.Fatalf("hash raw rerendered: %v", err)
	}
	if altered == created {
		t.Error("a re-rendered number encoding must not reproduce the creation hash")
	}
}

func TestCorruptedPayloadFailsVerification(t *testing.T) {
	payload := packets.BuildPayload(corpusID, snapshotID, "aaaa", fixtureClaim(anchorA), fixtureAnchors()[:1])

	stored, err := packets.Hash(payload)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	// Tamper with the embedded claim text without recomputing the hash.
	payload.Claim.Text = "the form was never signed"
	persisted, err := canonical.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	recomputed, err := packets.HashRaw(persisted)
	if err != nil {
		t.Fatalf("hash raw: %v", err)
	}

	if stored == recomputed {
		t.Error("tampered payload must not rehash to the stored value")
	}
}
