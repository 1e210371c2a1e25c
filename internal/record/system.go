package record

import (
	"context"

	"github.com/google/uuid"
)

// System defines the public contract for verified record generation.
type System interface {
	Handler() *Handler

	// Record aggregates the corpus's current state into a hashed record.
	Record(ctx context.Context, corpusID uuid.UUID) (*Record, error)
}
