package constraints

import (
	"errors"
	"net/http"
)

// Domain errors for constraint operations.
var (
	ErrNotFound    = errors.New("constraint not found")
	ErrUnknownType = errors.New("unknown constraint type")
)

// MapHTTPStatus maps constraint domain errors to appropriate HTTP status
// codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnknownType) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
