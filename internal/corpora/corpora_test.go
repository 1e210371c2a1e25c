package corpora_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/tmoresby/veracity/internal/corpora"
)

func TestPurposeValid(t *testing.T) {
	tests := []struct {
		purpose corpora.Purpose
		want    bool
	}{
		{corpora.PurposeLitigationSupport, true},
		{corpora.PurposeInvestigativeJournalism, true},
		{corpora.PurposeComplianceInternalReview, true},
		{corpora.PurposeResearchExploratory, true},
		{corpora.Purpose("GENERAL"), false},
		{corpora.Purpose(""), false},
		{corpora.Purpose("litigation_support"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.purpose), func(t *testing.T) {
			if got := tt.purpose.Valid(); got != tt.want {
				t.Errorf("Valid(%q) = %v, want %v", tt.purpose, got, tt.want)
			}
		})
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", corpora.ErrNotFound, http.StatusNotFound},
		{"duplicate", corpora.ErrDuplicate, http.StatusConflict},
		{"invalid purpose", corpora.ErrInvalidPurpose, http.StatusBadRequest},
		{"wrapped purpose", fmt.Errorf("create: %w", corpora.ErrInvalidPurpose), http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := corpora.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
