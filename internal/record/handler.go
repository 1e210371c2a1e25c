package record

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/tmoresby/veracity/pkg/handlers"
	"github.com/tmoresby/veracity/pkg/routes"
)

// Handler provides HTTP endpoints for verified records.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "record"),
	}
}

// CorpusRoutes returns record routes mounted under the corpus prefix. The
// .pdf variant serves the plain-text rendering, matching the original
// review surface.
func (h *Handler) CorpusRoutes() []routes.Route {
	return []routes.Route{
		{Method: "GET", Pattern: "/{id}/verified-record", Handler: h.JSON},
		{Method: "GET", Pattern: "/{id}/verified-record.pdf", Handler: h.Text},
	}
}

// JSON serves the record as canonical JSON.
func (h *Handler) JSON(w http.ResponseWriter, r *http.Request) {
	corpusID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrCorpusMissing)
		return
	}

	rec, err := h.sys.Record(r.Context(), corpusID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rec)
}

// Text serves the plain-text rendering.
func (h *Handler) Text(w http.ResponseWriter, r *http.Request) {
	corpusID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrCorpusMissing)
		return
	}

	rec, err := h.sys.Record(r.Context(), corpusID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, RenderText(rec))
}
