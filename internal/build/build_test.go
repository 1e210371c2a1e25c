package build_test

import (
	"testing"

	"github.com/tmoresby/veracity/internal/build"
)

func TestModeValid(t *testing.T) {
	if !build.ModeFull.Valid() || !build.ModeAnchorsOnly.Valid() {
		t.Error("known modes should be valid")
	}
	if build.Mode("incremental").Valid() {
		t.Error("unknown mode should be invalid")
	}
	if build.Mode("").Valid() {
		t.Error("empty mode should be invalid")
	}
}
