package anchors

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/tmoresby/veracity/pkg/handlers"
	"github.com/tmoresby/veracity/pkg/routes"
)

// Handler provides HTTP endpoints for anchor operations.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "anchors"),
	}
}

// Routes returns the route group definition for anchor endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/anchors",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "GET", Pattern: "/{id}/proof", Handler: h.Proof},
		},
	}
}

// Find returns a single anchor by id.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	a, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, a)
}

// Proof recomputes the anchor's quote from stored page text and offsets.
// A mismatch is reported in the body; only missing records and provenance
// refusals produce error statuses.
func (h *Handler) Proof(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	result, err := h.sys.Proof(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
