package constraints

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/tmoresby/veracity/pkg/handlers"
	"github.com/tmoresby/veracity/pkg/routes"
)

// Handler provides read-only HTTP endpoints for constraints.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "constraints"),
	}
}

// Routes returns the route group definition for constraint endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/constraints",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
		},
	}
}

// CorpusRoutes returns constraint routes mounted under the corpus prefix.
func (h *Handler) CorpusRoutes() []routes.Route {
	return []routes.Route{
		{Method: "GET", Pattern: "/{id}/constraints", Handler: h.List},
	}
}

// List returns every constraint recorded against the corpus.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	corpusID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	items, err := h.sys.ListByCorpus(r.Context(), corpusID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, items)
}

// Find returns a single constraint by id.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	c, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, c)
}
