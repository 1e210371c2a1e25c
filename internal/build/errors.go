package build

import (
	"errors"
	"net/http"
)

// Domain errors for build operations.
var (
	ErrCorpusMissing = errors.New("corpus not found")
	ErrInvalidMode   = errors.New("unknown build mode")
	ErrNoSources     = errors.New("corpus has no sources to build")
)

// MapHTTPStatus maps build domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrCorpusMissing) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrInvalidMode) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrNoSources) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
