package bundle

import (
	"errors"
	"net/http"
)

// Domain errors for bundle operations.
var (
	ErrCorpusMissing = errors.New("corpus not found")
	// ErrTooManyEvents refuses export of audit trails over the event
	// cap rather than truncating them.
	ErrTooManyEvents = errors.New("ledger event count exceeds export cap")
	ErrInvalidBundle = errors.New("bundle is not a readable archive")
)

// MapHTTPStatus maps bundle domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrCorpusMissing) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrTooManyEvents) {
		return http.StatusUnprocessableEntity
	}
	if errors.Is(err, ErrInvalidBundle) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
