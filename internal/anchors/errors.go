package anchors

import (
	"errors"
	"net/http"
)

// Domain errors for anchor operations.
var (
	ErrNotFound     = errors.New("anchor not found")
	ErrDuplicate    = errors.New("anchor already exists")
	ErrNoProvenance = errors.New("anchor has no usable provenance")
)

// MapHTTPStatus maps anchor domain errors to appropriate HTTP status codes.
// ErrNoProvenance is a policy refusal, not a server fault: the anchor
// exists but is excluded from proof artifacts.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrNoProvenance) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
