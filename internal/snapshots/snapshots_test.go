package snapshots_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tmoresby/veracity/internal/claims"
	"github.com/tmoresby/veracity/internal/snapshots"
	"github.com/tmoresby/veracity/pkg/canonical"
)

func fixtureClaim(id string, anchorIDs ...string) claims.Claim {
	c := claims.Claim{
		ID:             uuid.MustParse(id),
		CorpusID:       uuid.MustParse("b67e0f43-2f4a-4d78-a7e0-04c11cf54a01"),
		Classification: claims.Defensible,
		Text:           "the form was signed on 12 March 2021",
		Confidence:     claims.DefensibleConfidence,
		AnchorIDs:      []uuid.UUID{},
		CreatedAt:      time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC),
	}
	for _, a := range anchorIDs {
		c.AnchorIDs = append(c.AnchorIDs, uuid.MustParse(a))
	}
	return c
}

func TestSortClaims(t *testing.T) {
	a1 := "00000000-0000-0000-0000-00000000000a"
	a2 := "00000000-0000-0000-0000-00000000000b"
	c1 := fixtureClaim("00000000-0000-0000-0000-000000000001", a2, a1)
	c2 := fixtureClaim("00000000-0000-0000-0000-000000000002")

	sorted := snapshots.SortClaims([]claims.Claim{c2, c1})

	if sorted[0].ID != c1.ID || sorted[1].ID != c2.ID {
		t.Errorf("claims not id-sorted: %s, %s", sorted[0].ID, sorted[1].ID)
	}
	if sorted[0].AnchorIDs[0].String() != a1 || sorted[0].AnchorIDs[1].String() != a2 {
		t.Errorf("anchor ids not sorted within claim: %v", sorted[0].AnchorIDs)
	}

	// Input must not be mutated.
	if c1.AnchorIDs[0].String() != a2 {
		t.Error("SortClaims mutated its input")
	}
}

func TestHashDeterminism(t *testing.T) {
	corpusID := uuid.MustParse("b67e0f43-2f4a-4d78-a7e0-04c11cf54a01")
	a1 := "00000000-0000-0000-0000-00000000000a"
	a2 := "00000000-0000-0000-0000-00000000000b"
	c1 := fixtureClaim("00000000-0000-0000-0000-000000000001", a1, a2)
	c2 := fixtureClaim("00000000-0000-0000-0000-000000000002", a2)

	first, err := snapshots.Hash(corpusID, snapshots.SortClaims([]claims.Claim{c1, c2}))
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	// Same claim set in a different input order, with anchor ids shuffled.
	c1b := fixtureClaim("00000000-0000-0000-0000-000000000001", a2, a1)
	second, err := snapshots.Hash(corpusID, snapshots.SortClaims([]claims.Claim{c2, c1b}))
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if first != second {
		t.Errorf("hash depends on input order: %s vs %s", first, second)
	}
	if len(first) != 64 {
		t.Errorf("expected 64-char hex digest, got %q", first)
	}
}

func TestHashSensitivity(t *testing.T) {
	corpusID := uuid.MustParse("b67e0f43-2f4a-4d78-a7e0-04c11cf54a01")
	c1 := fixtureClaim("00000000-0000-0000-0000-000000000001")

	base, err := snapshots.Hash(corpusID, snapshots.SortClaims([]claims.Claim{c1}))
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	edited := c1
	edited.Text = "the form was signed on 13 March 2021"
	changed, err := snapshots.Hash(corpusID, snapshots.SortClaims([]claims.Claim{edited}))
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if base == changed {
		t.Error("editing claim text must change the snapshot hash")
	}

	otherCorpus, err := snapshots.Hash(uuid.New(), snapshots.SortClaims([]claims.Claim{c1}))
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if base == otherCorpus {
		t.Error("corpus id must be covered by the snapshot hash")
	}
}

func TestHashRawRoundTrip(t *testing.T) {
	corpusID := uuid.MustParse("b67e0f43-2f4a-4d78-a7e0-04c11cf54a01")
	sorted := snapshots.SortClaims([]claims.Claim{
		fixtureClaim("00000000-0000-0000-0000-000000000001", "00000000-0000-0000-0000-00000000000a"),
	})

	created, err := snapshots.Hash(corpusID, sorted)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	persisted, err := canonical.Marshal(sorted)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	recomputed, err := snapshots.HashRaw(corpusID, persisted)
	if err != nil {
		t.Fatalf("hash raw: %v", err)
	}

	if created != recomputed {
		t.Errorf("persisted claims rehash differs: %s vs %s", created, recomputed)
	}
}

// Verification recomputes from stored bytes, so the stored document must
// reproduce the exact number encoding the hash was computed over. A
// storage layer that re-renders numbers (jsonb would turn 1e-07 into
// 0.0000001) produces a different document with a different hash.
func TestHashRawPreservesNumberEncoding(t *testing.T) {
	corpusID := uuid.MustParse("b67e0f43-2f4a-4d78-a7e0-04c11cf54a01")
	c := fixtureClaim("00000000-0000-0000-0000-000000000001")
	c.Classification = claims.Ambiguous
	c.Confidence = 1e-07

	sorted := snapshots.SortClaims([]claims.Claim{c})

	created, err := snapshots.Hash(corpusID, sorted)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	persisted, err := canonical.Marshal(sorted)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Contains(persisted, []byte("1e-07")) {
		t.Fatalf("expected e-notation confidence in canonical bytes: %s", persisted)
	}

	recomputed, err := snapshots.HashRaw(corpusID, persisted)
	if err != nil {
		t.Fatalf("hash raw: %v", err)
	}
	if created != recomputed {
		t.Errorf("exact stored bytes must rehash to the creation hash: %s vs %s", created, recomputed)
	}

	rerendered := bytes.Replace(persisted, []byte("1e-07"), []byte("0.0000001"), 1)
	altered, err := snapshots.HashRaw(corpusID, rerendered)
	if err != nil {
		t.Fatalf("hash raw rerendered: %v", err)
	}
	if altered == created {
		t.Error("a re-rendered number encoding must not reproduce the creation hash")
	}
}

func TestValidateClaims(t *testing.T) {
	valid := fixtureClaim("00000000-0000-0000-0000-000000000001", "00000000-0000-0000-0000-00000000000a")

	violations, err := snapshots.ValidateClaims([]claims.Claim{valid})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(violations) != 0 {
		t.Errorf("expected no violations, got %v", violations)
	}

	bad := valid
	bad.Text = ""
	bad.Confidence = 1.5
	violations, err = snapshots.ValidateClaims([]claims.Claim{bad})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(violations) == 0 {
		t.Error("expected violations for empty text and out-of-range confidence")
	}
}

func TestValidateClaimsEmptySet(t *testing.T) {
	violations, err := snapshots.ValidateClaims([]claims.Claim{})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(violations) != 0 {
		t.Errorf("empty claim set is a legal snapshot payload, got %v", violations)
	}
}
