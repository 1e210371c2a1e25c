package claims

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/tmoresby/veracity/pkg/handlers"
	"github.com/tmoresby/veracity/pkg/routes"
)

// Handler provides HTTP endpoints for claim operations. Claims are always
// addressed through their corpus, so the routes mount under /corpus.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "claims"),
	}
}

// CorpusRoutes returns claim routes mounted under the corpus prefix.
func (h *Handler) CorpusRoutes() []routes.Route {
	return []routes.Route{
		{Method: "GET", Pattern: "/{id}/claims", Handler: h.List},
		{Method: "POST", Pattern: "/{id}/claims", Handler: h.Create},
		{Method: "DELETE", Pattern: "/{id}/claims/{claimId}", Handler: h.Delete},
	}
}

// List returns every claim in the corpus, id-ordered.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	corpusID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	claims, err := h.sys.ListByCorpus(r.Context(), corpusID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, claims)
}

// Create classifies and stores a claim from a JSON body of text and
// anchor ids.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	corpusID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	var cmd CreateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrEmptyText)
		return
	}

	c, err := h.sys.Create(r.Context(), corpusID, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, c)
}

// Delete hard-deletes a claim.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	corpusID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	claimID, err := uuid.Parse(r.PathValue("claimId"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	if err := h.sys.Delete(r.Context(), corpusID, claimID); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
