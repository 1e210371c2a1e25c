package packets

import (
	"errors"
	"net/http"

	"github.com/tmoresby/veracity/internal/claims"
	"github.com/tmoresby/veracity/internal/snapshots"
)

// Domain errors for packet operations.
var (
	ErrNotFound       = errors.New("packet not found")
	ErrDuplicate      = errors.New("packet already exists")
	ErrNotDefensible  = errors.New("claim is not defensible")
	ErrSnapshotCorpus = errors.New("snapshot belongs to a different corpus")
	ErrOutsideScope   = errors.New("claim outside snapshot scope")
)

// MapHTTPStatus maps packet domain errors to appropriate HTTP status
// codes. Policy refusals are 422s with distinct messages, never generic
// server faults.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrNotDefensible) ||
		errors.Is(err, ErrSnapshotCorpus) ||
		errors.Is(err, ErrOutsideScope) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// httpStatus resolves status for creation errors, which can surface from
// the claim and snapshot systems as well as this package.
func httpStatus(err error) int {
	if status := MapHTTPStatus(err); status != http.StatusInternalServerError {
		return status
	}
	if status := claims.MapHTTPStatus(err); status != http.StatusInternalServerError {
		return status
	}
	if status := snapshots.MapHTTPStatus(err); status != http.StatusInternalServerError {
		return status
	}
	return http.StatusInternalServerError
}
