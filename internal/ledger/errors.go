package ledger

import (
	"errors"
	"net/http"
)

// Domain errors for ledger operations.
var (
	ErrNotFound         = errors.New("ledger event not found")
	ErrDuplicate        = errors.New("ledger event already exists")
	ErrInvalidEventType = errors.New("unknown ledger event type")
	ErrLimitExceeded    = errors.New("ledger list limit exceeds maximum")
)

// MapHTTPStatus maps ledger domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidEventType) || errors.Is(err, ErrLimitExceeded) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
