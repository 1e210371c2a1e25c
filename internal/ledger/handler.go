package ledger

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/tmoresby/veracity/pkg/handlers"
	"github.com/tmoresby/veracity/pkg/routes"
)

// Handler provides HTTP endpoints for ledger operations.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "ledger"),
	}
}

// Routes returns the route group definition for ledger endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/ledger",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "GET", Pattern: "/{id}/verify", Handler: h.Verify},
		},
	}
}

// CorpusRoutes returns the route group mounted under /corpus/{id}.
func (h *Handler) CorpusRoutes() routes.Group {
	return routes.Group{
		Prefix: "/corpus",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{id}/ledger", Handler: h.List},
		},
	}
}

// List returns a corpus's ledger events, most recent first. Query
// parameters: limit (max 500), event_type, and after, an RFC 3339 paging
// cursor selecting events older than the given timestamp (the next page
// of the descending listing).
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	corpusID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	var filters Filters
	if et := r.URL.Query().Get("event_type"); et != "" {
		t := EventType(et)
		filters.EventType = &t
	}
	if after := r.URL.Query().Get("after"); after != "" {
		ts, err := time.Parse(time.RFC3339, after)
		if err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
			return
		}
		filters.After = &ts
	}

	events, err := h.sys.List(r.Context(), corpusID, limit, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]any{"events": events})
}

// Find returns a single ledger event by id.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	e, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, e)
}

// Verify recomputes an event's hash. Mismatches are reported in the body,
// never as an error status.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	result, err := h.sys.Verify(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
