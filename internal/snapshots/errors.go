package snapshots

import (
	"errors"
	"net/http"
)

// Domain errors for snapshot operations.
var (
	ErrNotFound      = errors.New("snapshot not found")
	ErrDuplicate     = errors.New("snapshot already exists")
	ErrCorpusMissing = errors.New("corpus not found")
	ErrInvalidClaims = errors.New("claims payload failed validation")
)

// MapHTTPStatus maps snapshot domain errors to appropriate HTTP status
// codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrCorpusMissing) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidClaims) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
