package database_test

import (
	"testing"

	"github.com/tmoresby/veracity/pkg/database"
)

func TestFinalizeDefaults(t *testing.T) {
	cfg := &database.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if cfg.Host != "localhost" || cfg.Port != 5432 {
		t.Errorf("unexpected address defaults: %s:%d", cfg.Host, cfg.Port)
	}
	if cfg.Name != "veracity" || cfg.User != "veracity" {
		t.Errorf("unexpected database defaults: %s/%s", cfg.Name, cfg.User)
	}
	if cfg.MaxOpenConns != 16 || cfg.MaxIdleConns != 4 {
		t.Errorf("unexpected pool defaults: %d/%d", cfg.MaxOpenConns, cfg.MaxIdleConns)
	}
}

func TestFinalizeRejectsUnknownSSLMode(t *testing.T) {
	cfg := &database.Config{SSLMode: "enabled"}
	if err := cfg.Finalize(nil); err == nil {
		t.Error("expected error for unknown ssl_mode")
	}
}

func TestMergeOverwritesNonZeroFields(t *testing.T) {
	cfg := &database.Config{Host: "db.internal", MaxOpenConns: 8}
	cfg.Merge(&database.Config{Port: 5433, MaxOpenConns: 32})

	if cfg.Host != "db.internal" {
		t.Errorf("merge clobbered host: %s", cfg.Host)
	}
	if cfg.Port != 5433 || cfg.MaxOpenConns != 32 {
		t.Errorf("merge did not apply overlay: %d/%d", cfg.Port, cfg.MaxOpenConns)
	}
}
