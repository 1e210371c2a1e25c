package build

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tmoresby/veracity/internal/anchors"
	"github.com/tmoresby/veracity/internal/corpora"
	"github.com/tmoresby/veracity/internal/extraction"
	"github.com/tmoresby/veracity/internal/ledger"
	"github.com/tmoresby/veracity/internal/sources"
	"github.com/tmoresby/veracity/pkg/repository"
	"github.com/tmoresby/veracity/pkg/storage"
)

type runner struct {
	db        *sql.DB
	corpora   corpora.System
	sources   sources.System
	storage   storage.System
	extractor extraction.Extractor
	anchorer  extraction.Anchorer
	logger    *slog.Logger
}

// New creates a build runner implementing the System interface.
func New(
	db *sql.DB,
	cor corpora.System,
	srcs sources.System,
	store storage.System,
	extractor extraction.Extractor,
	anchorer extraction.Anchorer,
	logger *slog.Logger,
) System {
	return &runner{
		db:        db,
		corpora:   cor,
		sources:   srcs,
		storage:   store,
		extractor: extractor,
		anchorer:  anchorer,
		logger:    logger.With("system", "build"),
	}
}

func (r *runner) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *runner) Run(ctx context.Context, cmd Command) (*Result, error) {
	if !cmd.Mode.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, cmd.Mode)
	}

	if _, err := r.corpora.Find(ctx, cmd.CorpusID); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCorpusMissing, cmd.CorpusID)
	}

	srcs, err := r.sources.ListAll(ctx, cmd.CorpusID)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	if len(srcs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSources, cmd.CorpusID)
	}

	type staged struct {
		source  sources.Source
		pages   []extraction.Page
		anchors []anchors.Anchor
	}

	runs := make([]staged, 0, len(srcs))
	pageCount := 0

	for _, src := range srcs {
		pages, err := r.extractPages(ctx, cmd.Mode, src)
		if err != nil {
			return nil, err
		}

		candidates, err := r.anchorer.Candidates(ctx, pages)
		if err != nil {
			return nil, fmt.Errorf("anchor candidates for %s: %w", src.ID, err)
		}

		built, err := buildAnchors(cmd.CorpusID, src, pages, candidates, r.extractor)
		if err != nil {
			return nil, err
		}

		runs = append(runs, staged{source: src, pages: pages, anchors: built})
		pageCount += len(pages)
	}

	// Page images go to blob storage before the transaction; a failed tx
	// leaves orphaned blobs, which re-running the build overwrites.
	if cmd.Mode == ModeFull {
		for i := range runs {
			if err := r.uploadPageImages(ctx, runs[i].source, runs[i].pages); err != nil {
				return nil, err
			}
		}
	}

	anchorCount := 0
	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		for _, run := range runs {
			if cmd.Mode == ModeFull {
				for _, page := range run.pages {
					record := pageRecord(run.source, page)
					if err := sources.UpsertPageTx(ctx, tx, record); err != nil {
						return struct{}{}, fmt.Errorf("persist page %d of %s: %w", page.PageIndex, run.source.ID, err)
					}
				}
			}

			for _, a := range run.anchors {
				if err := anchors.InsertTx(ctx, tx, a); err != nil {
					return struct{}{}, fmt.Errorf("persist anchor for %s: %w", run.source.ID, err)
				}
				anchorCount++
			}
		}

		_, err := ledger.Append(
			ctx, tx,
			cmd.CorpusID,
			ledger.EventBuildRun,
			"corpus", cmd.CorpusID.String(),
			map[string]any{
				"mode":    string(cmd.Mode),
				"sources": len(runs),
				"pages":   pageCount,
				"anchors": anchorCount,
			},
		)
		return struct{}{}, err
	})
	if err != nil {
		return nil, err
	}

	result := &Result{
		CorpusID: cmd.CorpusID,
		Mode:     cmd.Mode,
		Sources:  len(runs),
		Pages:    pageCount,
		Anchors:  anchorCount,
	}

	r.logger.Info("build complete",
		"corpus_id", cmd.CorpusID,
		"mode", cmd.Mode,
		"sources", result.Sources,
		"pages", result.Pages,
		"anchors", result.Anchors,
	)
	return result, nil
}

// extractPages yields the pages to anchor against: freshly extracted from
// the stored blob in full mode, re-read from persisted page records in
// anchors_only mode.
func (r *runner) extractPages(ctx context.Context, mode Mode, src sources.Source) ([]extraction.Page, error) {
	if mode == ModeAnchorsOnly {
		records, err := r.sources.Pages(ctx, src.ID)
		if err != nil {
			return nil, fmt.Errorf("load pages for %s: %w", src.ID, err)
		}

		pages := make([]extraction.Page, 0, len(records))
		for _, rec := range records {
			pages = append(pages, extraction.Page{
				PageIndex:     rec.PageIndex,
				Text:          rec.PageText,
				TextSHA256Hex: rec.PageTextSHA256Hex,
			})
		}
		return pages, nil
	}

	reader, err := r.storage.Download(ctx, src.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", src.StoragePath, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src.StoragePath, err)
	}

	pages, err := r.extractor.Pages(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", src.ID, err)
	}
	return pages, nil
}

func (r *runner) uploadPageImages(ctx context.Context, src sources.Source, pages []extraction.Page) error {
	for _, page := range pages {
		if len(page.PNG) == 0 {
			continue
		}

		key := storage.PageImageKey(src.SHA256Hex, page.PageIndex)
		if err := r.storage.Upload(ctx, key, bytes.NewReader(page.PNG), "image/png"); err != nil {
			return fmt.Errorf("upload page image %s: %w", key, err)
		}
	}
	return nil
}

func pageRecord(src sources.Source, page extraction.Page) sources.PageRecord {
	record := sources.PageRecord{
		SourceID:          src.ID,
		PageIndex:         page.PageIndex,
		PageText:          page.Text,
		PageTextSHA256Hex: page.TextSHA256Hex,
	}
	if len(page.PNG) > 0 {
		path := storage.PageImageKey(src.SHA256Hex, page.PageIndex)
		record.PagePNGPath = &path
	}
	return record
}

// buildAnchors turns candidates into anchor rows, slicing each quote out
// of its page text so the stored quote is the page's verbatim content.
func buildAnchors(
	corpusID uuid.UUID,
	src sources.Source,
	pages []extraction.Page,
	candidates []extraction.Candidate,
	extractor extraction.Extractor,
) ([]anchors.Anchor, error) {
	byIndex := make(map[int]extraction.Page, len(pages))
	for _, p := range pages {
		byIndex[p.PageIndex] = p
	}

	built := make([]anchors.Anchor, 0, len(candidates))
	for _, c := range candidates {
		page, ok := byIndex[c.PageIndex]
		if !ok {
			return nil, fmt.Errorf("candidate references missing page %d of %s", c.PageIndex, src.ID)
		}
		if c.QuoteStartChar < 0 || c.QuoteEndChar < c.QuoteStartChar || c.QuoteEndChar > len(page.Text) {
			return nil, fmt.Errorf("candidate offsets [%d:%d) out of range on page %d of %s",
				c.QuoteStartChar, c.QuoteEndChar, c.PageIndex, src.ID)
		}

		provenance := &anchors.Provenance{
			ExtractorName:    extractor.Name(),
			ExtractorVersion: extractor.Version(),
			SourceID:         src.ID,
			PageIndex:        c.PageIndex,
			QuoteStartChar:   c.QuoteStartChar,
			QuoteEndChar:     c.QuoteEndChar,
		}

		built = append(built, anchors.Anchor{
			ID:              uuid.New(),
			CorpusID:        corpusID,
			SourceID:        src.ID,
			Quote:           page.Text[c.QuoteStartChar:c.QuoteEndChar],
			SourceDocument:  c.SourceDocument,
			PageRef:         c.PageRef,
			SectionRef:      c.SectionRef,
			TimelineDate:    c.TimelineDate,
			Provenance:      provenance,
			ProvenanceState: anchors.ProvenancePresentValid,
		})
	}
	return built, nil
}
