package bundle

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/tmoresby/veracity/pkg/handlers"
	"github.com/tmoresby/veracity/pkg/routes"
)

// maxVerifyUploadSize bounds uploaded bundle ZIPs for verification.
const maxVerifyUploadSize = 256 << 20

// Handler provides HTTP endpoints for bundle export and verification.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "bundle"),
	}
}

// Routes returns the bundle verification route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/bundles",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/verify", Handler: h.Verify},
		},
	}
}

// ReviewRoutes returns the audit-lines review route group.
func (h *Handler) ReviewRoutes() routes.Group {
	return routes.Group{
		Prefix: "/review",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{id}/audit_lines", Handler: h.AuditLines},
		},
	}
}

// CorpusRoutes returns export routes mounted under the corpus prefix.
func (h *Handler) CorpusRoutes() []routes.Route {
	return []routes.Route{
		{Method: "GET", Pattern: "/{id}/export_bundle", Handler: h.Export},
	}
}

// Export assembles and streams the corpus bundle as a ZIP. Assembly runs
// to completion before the first byte is written so failures surface as
// proper error responses.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	corpusID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrCorpusMissing)
		return
	}

	opts := Options{
		IncludeRawSources: r.URL.Query().Get("include_raw_sources") == "true",
		Deterministic:     r.URL.Query().Get("deterministic") == "true",
	}

	archive, err := h.sys.Export(r.Context(), corpusID, opts)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	var buf bytes.Buffer
	if err := WriteZip(&buf, archive, opts); err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="bundle-%s.zip"`, corpusID))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buf.Len()))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, &buf); err != nil {
		h.logger.Error("stream bundle", "corpus_id", corpusID, "error", err)
	}
}

// AuditLines serves the flat pipe-delimited proof ledger as plain text.
func (h *Handler) AuditLines(w http.ResponseWriter, r *http.Request) {
	corpusID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrCorpusMissing)
		return
	}

	lines, err := h.sys.AuditLines(r.Context(), corpusID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, lines)
}

// Verify checks an uploaded bundle ZIP against its manifest. The multipart
// field is named "bundle"; strict mode defaults to on.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxVerifyUploadSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidBundle)
		return
	}

	file, _, err := r.FormFile("bundle")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidBundle)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxVerifyUploadSize))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidBundle)
		return
	}

	strict := r.URL.Query().Get("strict") != "false"

	result, err := h.sys.VerifyArchive(r.Context(), data, strict)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
