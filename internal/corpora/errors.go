package corpora

import (
	"errors"
	"net/http"
)

// Domain errors for corpus operations.
var (
	ErrNotFound       = errors.New("corpus not found")
	ErrDuplicate      = errors.New("corpus already exists")
	ErrInvalidPurpose = errors.New("unknown corpus purpose")
)

// MapHTTPStatus maps corpus domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidPurpose) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
