package claims

import (
	"errors"
	"net/http"
)

// Domain errors for claim operations.
var (
	ErrNotFound      = errors.New("claim not found")
	ErrDuplicate     = errors.New("claim already exists")
	ErrEmptyText     = errors.New("claim text is required")
	ErrUnknownAnchor = errors.New("anchor does not exist in this corpus")
)

// MapHTTPStatus maps claim domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrEmptyText) || errors.Is(err, ErrUnknownAnchor) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
