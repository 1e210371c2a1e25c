package sources

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/tmoresby/veracity/internal/ledger"
	"github.com/tmoresby/veracity/pkg/canonical"
	"github.com/tmoresby/veracity/pkg/pagination"
	"github.com/tmoresby/veracity/pkg/repository"
	"github.com/tmoresby/veracity/pkg/storage"
)

const (
	sourceColumns = "id, corpus_id, role, filename, sha256_hex, storage_path, uploaded_at, page_count"
	pageColumns   = "source_id, page_index, page_text, page_text_sha256_hex, page_png_path"
)

type repo struct {
	db         *sql.DB
	storage    storage.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a source repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		logger:     logger.With("system", "sources"),
		pagination: pagination,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) List(ctx context.Context, corpusID uuid.UUID, page pagination.PageRequest) (*pagination.PageResult[Source], error) {
	page.Normalize(r.pagination)

	var total int
	if err := r.db.QueryRowContext(
		ctx,
		"SELECT COUNT(*) FROM sources WHERE corpus_id = $1",
		corpusID,
	).Scan(&total); err != nil {
		return nil, fmt.Errorf("count sources: %w", err)
	}

	q := "SELECT " + sourceColumns + ` FROM sources
		WHERE corpus_id = $1
		ORDER BY uploaded_at DESC LIMIT $2 OFFSET $3`

	items, err := repository.QueryMany(ctx, r.db, q, []any{corpusID, page.PageSize, page.Offset()}, scanSource)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) ListAll(ctx context.Context, corpusID uuid.UUID) ([]Source, error) {
	q := "SELECT " + sourceColumns + " FROM sources WHERE corpus_id = $1 ORDER BY id"

	items, err := repository.QueryMany(ctx, r.db, q, []any{corpusID}, scanSource)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	return items, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Source, error) {
	q := "SELECT " + sourceColumns + " FROM sources WHERE id = $1"

	s, err := repository.QueryOne(ctx, r.db, q, []any{id}, scanSource)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &s, nil
}

// Create stores the raw bytes on a content-addressed blob key, registers
// the source row, and appends a SOURCE_UPLOADED ledger event in the same
// transaction. The content hash is computed here so it is always
// recomputable against the stored bytes.
func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Source, error) {
	if !cmd.Role.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, cmd.Role)
	}
	if len(cmd.Data) == 0 {
		return nil, fmt.Errorf("%w: empty upload", ErrInvalidFile)
	}

	shaHex := canonical.DigestBytes(cmd.Data)
	key := storage.SourceKey(shaHex, sanitizeFilename(cmd.Filename))

	if err := r.storage.Upload(ctx, key, bytes.NewReader(cmd.Data), cmd.ContentType); err != nil {
		return nil, fmt.Errorf("upload source blob: %w", err)
	}

	pageCount := extractPDFPageCount(r.logger, cmd.Data, cmd.ContentType)

	q := `
		INSERT INTO sources(id, corpus_id, role, filename, sha256_hex, storage_path, page_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + sourceColumns

	insertArgs := []any{
		uuid.New(),
		cmd.CorpusID,
		string(cmd.Role),
		cmd.Filename,
		shaHex,
		key,
		pageCount,
	}

	s, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Source, error) {
		created, err := repository.QueryOne(ctx, tx, q, insertArgs, scanSource)
		if err != nil {
			return Source{}, err
		}

		_, err = ledger.Append(
			ctx, tx,
			created.CorpusID,
			ledger.EventSourceUploaded,
			"source", created.ID.String(),
			map[string]any{
				"filename":   created.Filename,
				"role":       string(created.Role),
				"sha256_hex": created.SHA256Hex,
			},
		)
		if err != nil {
			return Source{}, err
		}

		return created, nil
	})
	if err != nil {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("source uploaded", "id", s.ID, "filename", s.Filename, "sha256", s.SHA256Hex)
	return &s, nil
}

func (r *repo) Pages(ctx context.Context, sourceID uuid.UUID) ([]PageRecord, error) {
	q := "SELECT " + pageColumns + " FROM page_records WHERE source_id = $1 ORDER BY page_index"

	pages, err := repository.QueryMany(ctx, r.db, q, []any{sourceID}, scanPage)
	if err != nil {
		return nil, fmt.Errorf("query page records: %w", err)
	}
	return pages, nil
}

func (r *repo) FindPage(ctx context.Context, sourceID uuid.UUID, pageIndex int) (*PageRecord, error) {
	q := "SELECT " + pageColumns + " FROM page_records WHERE source_id = $1 AND page_index = $2"

	p, err := repository.QueryOne(ctx, r.db, q, []any{sourceID, pageIndex}, scanPage)
	if err != nil {
		return nil, repository.MapError(err, ErrPageNotFound, ErrDuplicate)
	}
	return &p, nil
}

// UpsertPageTx persists one page record inside the caller's transaction.
// Re-running a build for an unchanged source rewrites identical rows.
func UpsertPageTx(ctx context.Context, tx *sql.Tx, p PageRecord) error {
	q := `
		INSERT INTO page_records(source_id, page_index, page_text, page_text_sha256_hex, page_png_path)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (source_id, page_index) DO UPDATE
		SET page_text = EXCLUDED.page_text,
		    page_text_sha256_hex = EXCLUDED.page_text_sha256_hex,
		    page_png_path = COALESCE(EXCLUDED.page_png_path, page_records.page_png_path)`

	_, err := tx.ExecContext(ctx, q, p.SourceID, p.PageIndex, p.PageText, p.PageTextSHA256Hex, p.PagePNGPath)
	return err
}

func scanSource(s repository.Scanner) (Source, error) {
	var src Source
	err := s.Scan(
		&src.ID,
		&src.CorpusID,
		&src.Role,
		&src.Filename,
		&src.SHA256Hex,
		&src.StoragePath,
		&src.UploadedAt,
		&src.PageCount,
	)
	return src, err
}

func scanPage(s repository.Scanner) (PageRecord, error) {
	var p PageRecord
	err := s.Scan(
		&p.SourceID,
		&p.PageIndex,
		&p.PageText,
		&p.PageTextSHA256Hex,
		&p.PagePNGPath,
	)
	return p, err
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "" {
		name = "source"
	}
	return url.PathEscape(name)
}

func extractPDFPageCount(logger *slog.Logger, data []byte, contentType string) *int {
	if contentType != "application/pdf" {
		return nil
	}

	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		logger.Warn("failed to extract PDF page count", "error", err)
		return nil
	}

	return &count
}
