package record

import (
	"errors"
	"net/http"
)

// Domain errors for record operations.
var ErrCorpusMissing = errors.New("corpus not found")

// MapHTTPStatus maps record domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrCorpusMissing) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
