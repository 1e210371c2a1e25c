package build

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/tmoresby/veracity/pkg/handlers"
	"github.com/tmoresby/veracity/pkg/routes"
)

// Handler provides the HTTP endpoint for build runs.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "build"),
	}
}

// CorpusRoutes returns build routes mounted under the corpus prefix.
func (h *Handler) CorpusRoutes() []routes.Route {
	return []routes.Route{
		{Method: "POST", Pattern: "/{id}/build", Handler: h.Run},
	}
}

// Run executes the extraction pipeline for a corpus.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	corpusID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrCorpusMissing)
		return
	}

	var body struct {
		Mode Mode `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidMode)
		return
	}

	result, err := h.sys.Run(r.Context(), Command{CorpusID: corpusID, Mode: body.Mode})
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
