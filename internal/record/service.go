package record

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tmoresby/veracity/internal/anchors"
	"github.com/tmoresby/veracity/internal/claims"
	"github.com/tmoresby/veracity/internal/constraints"
	"github.com/tmoresby/veracity/internal/corpora"
	"github.com/tmoresby/veracity/internal/sources"
)

type service struct {
	corpora     corpora.System
	sources     sources.System
	anchors     anchors.System
	claims      claims.System
	constraints constraints.System
	logger      *slog.Logger
}

// New creates the record service implementing the System interface.
func New(
	cor corpora.System,
	srcs sources.System,
	anc anchors.System,
	cls claims.System,
	cons constraints.System,
	logger *slog.Logger,
) System {
	return &service{
		corpora:     cor,
		sources:     srcs,
		anchors:     anc,
		claims:      cls,
		constraints: cons,
		logger:      logger.With("system", "record"),
	}
}

func (s *service) Handler() *Handler {
	return NewHandler(s, s.logger)
}

func (s *service) Record(ctx context.Context, corpusID uuid.UUID) (*Record, error) {
	if _, err := s.corpora.Find(ctx, corpusID); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCorpusMissing, corpusID)
	}

	srcs, err := s.sources.ListAll(ctx, corpusID)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	corpusClaims, err := s.claims.ListByCorpus(ctx, corpusID)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}

	corpusAnchors, err := s.anchors.ListByCorpus(ctx, corpusID)
	if err != nil {
		return nil, fmt.Errorf("list anchors: %w", err)
	}

	corpusConstraints, err := s.constraints.ListByCorpus(ctx, corpusID)
	if err != nil {
		return nil, fmt.Errorf("list constraints: %w", err)
	}

	r, err := Build(corpusID, srcs, corpusClaims, corpusAnchors, corpusConstraints, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	s.logger.Info("record generated",
		"corpus_id", corpusID,
		"supported", len(r.SupportedClaims),
		"restricted", len(r.RestrictedClaims),
		"ambiguous", len(r.AmbiguousClaims),
		"hash", r.RecordHashHex,
	)
	return r, nil
}
