package bundle

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tmoresby/veracity/internal/anchors"
	"github.com/tmoresby/veracity/internal/claims"
	"github.com/tmoresby/veracity/internal/corpora"
	"github.com/tmoresby/veracity/internal/ledger"
	"github.com/tmoresby/veracity/internal/packets"
	"github.com/tmoresby/veracity/internal/snapshots"
	"github.com/tmoresby/veracity/internal/sources"
	"github.com/tmoresby/veracity/pkg/storage"
)

type service struct {
	corpora   corpora.System
	sources   sources.System
	anchors   anchors.System
	claims    claims.System
	snapshots snapshots.System
	packets   packets.System
	ledger    ledger.System
	storage   storage.System
	logger    *slog.Logger
}

// New creates the bundle service implementing the System interface.
func New(
	cor corpora.System,
	srcs sources.System,
	anc anchors.System,
	cls claims.System,
	snaps snapshots.System,
	pkts packets.System,
	led ledger.System,
	store storage.System,
	logger *slog.Logger,
) System {
	return &service{
		corpora:   cor,
		sources:   srcs,
		anchors:   anc,
		claims:    cls,
		snapshots: snaps,
		packets:   pkts,
		ledger:    led,
		storage:   store,
		logger:    logger.With("system", "bundle"),
	}
}

func (s *service) Handler() *Handler {
	return NewHandler(s, s.logger)
}

func (s *service) Export(ctx context.Context, corpusID uuid.UUID, opts Options) (*Archive, error) {
	data, err := s.gather(ctx, corpusID, opts)
	if err != nil {
		return nil, err
	}

	archive, err := Assemble(*data, opts)
	if err != nil {
		return nil, err
	}

	s.logger.Info("bundle exported",
		"corpus_id", corpusID,
		"files", len(archive.Files),
		"manifest_hash", archive.Manifest.ManifestHashHex,
		"deterministic", opts.Deterministic,
	)
	return archive, nil
}

func (s *service) AuditLines(ctx context.Context, corpusID uuid.UUID) (string, error) {
	data, err := s.gather(ctx, corpusID, Options{})
	if err != nil {
		return "", err
	}
	return AuditLines(*data), nil
}

func (s *service) VerifyArchive(ctx context.Context, data []byte, strict bool) (*VerifyResult, error) {
	return Verify(ctx, data, strict)
}

// gather reads everything the assembler needs. The event-cap check runs
// first so oversized corpora are refused before any expensive reads.
func (s *service) gather(ctx context.Context, corpusID uuid.UUID, opts Options) (*CorpusData, error) {
	corpus, err := s.corpora.Find(ctx, corpusID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCorpusMissing, corpusID)
	}

	eventCount, err := s.ledger.Count(ctx, corpusID)
	if err != nil {
		return nil, fmt.Errorf("count ledger events: %w", err)
	}
	if eventCount > MaxLedgerEvents {
		return nil, fmt.Errorf("%w: %d events, cap %d", ErrTooManyEvents, eventCount, MaxLedgerEvents)
	}

	events, err := s.ledger.List(ctx, corpusID, ledger.MaxListLimit, ledger.Filters{})
	if err != nil {
		return nil, fmt.Errorf("list ledger events: %w", err)
	}

	srcs, err := s.sources.ListAll(ctx, corpusID)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	pages := make(map[uuid.UUID][]sources.PageRecord, len(srcs))
	pageImages := map[string][]byte{}
	rawSources := map[string][]byte{}

	for _, src := range srcs {
		records, err := s.sources.Pages(ctx, src.ID)
		if err != nil {
			return nil, fmt.Errorf("list pages for %s: %w", src.ID, err)
		}
		pages[src.ID] = records

		for _, record := range records {
			if record.PagePNGPath == nil {
				continue
			}
			img, err := s.download(ctx, *record.PagePNGPath)
			if err != nil {
				return nil, fmt.Errorf("download page image %s: %w", *record.PagePNGPath, err)
			}
			path := fmt.Sprintf("pages/%s/page-%d.png", record.SourceID, record.PageIndex)
			pageImages[path] = img
		}

		if opts.IncludeRawSources {
			raw, err := s.download(ctx, src.StoragePath)
			if err != nil {
				return nil, fmt.Errorf("download source %s: %w", src.ID, err)
			}
			rawSources[fmt.Sprintf("sources_raw/%s/%s", src.SHA256Hex, src.Filename)] = raw
		}
	}

	corpusAnchors, err := s.anchors.ListByCorpus(ctx, corpusID)
	if err != nil {
		return nil, fmt.Errorf("list anchors: %w", err)
	}

	corpusClaims, err := s.claims.ListByCorpus(ctx, corpusID)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}

	corpusSnapshots, err := s.snapshots.ListByCorpus(ctx, corpusID)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	corpusPackets, err := s.packets.ListByCorpus(ctx, corpusID)
	if err != nil {
		return nil, fmt.Errorf("list packets: %w", err)
	}

	return &CorpusData{
		Corpus:      *corpus,
		Sources:     srcs,
		Pages:       pages,
		PageImages:  pageImages,
		Anchors:     corpusAnchors,
		Claims:      corpusClaims,
		Snapshots:   corpusSnapshots,
		Packets:     corpusPackets,
		Events:      events,
		RawSources:  rawSources,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

func (s *service) download(ctx context.Context, key string) ([]byte, error) {
	reader, err := s.storage.Download(ctx, key)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}
