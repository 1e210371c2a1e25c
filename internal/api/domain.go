package api

import (
	"github.com/tmoresby/veracity/internal/anchors"
	"github.com/tmoresby/veracity/internal/build"
	"github.com/tmoresby/veracity/internal/bundle"
	"github.com/tmoresby/veracity/internal/claims"
	"github.com/tmoresby/veracity/internal/constraints"
	"github.com/tmoresby/veracity/internal/corpora"
	"github.com/tmoresby/veracity/internal/extraction"
	"github.com/tmoresby/veracity/internal/ledger"
	"github.com/tmoresby/veracity/internal/packets"
	"github.com/tmoresby/veracity/internal/record"
	"github.com/tmoresby/veracity/internal/snapshots"
	"github.com/tmoresby/veracity/internal/sources"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Corpora     corpora.System
	Sources     sources.System
	Ledger      ledger.System
	Anchors     anchors.System
	Claims      claims.System
	Constraints constraints.System
	Snapshots   snapshots.System
	Packets     packets.System
	Build       build.System
	Bundle      bundle.System
	Record      record.System
}

// NewDomain creates all domain systems from the API runtime. The extraction
// collaborators are injected so deployments can swap the page extractor and
// anchor heuristic without touching the evidence core.
func NewDomain(
	runtime *Runtime,
	extractor extraction.Extractor,
	anchorer extraction.Anchorer,
) *Domain {
	db := runtime.Database.Connection()

	corporaSystem := corpora.New(db, runtime.Logger, runtime.Pagination)

	sourcesSystem := sources.New(
		db,
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	ledgerSystem := ledger.New(db, runtime.Logger)

	anchorsSystem := anchors.New(db, sourcesSystem, runtime.Logger)

	claimsSystem := claims.New(db, anchorsSystem, runtime.Logger)

	constraintsSystem := constraints.New(db, runtime.Logger)

	snapshotsSystem := snapshots.New(
		db,
		corporaSystem,
		claimsSystem,
		sourcesSystem,
		runtime.Logger,
	)

	packetsSystem := packets.New(
		db,
		claimsSystem,
		snapshotsSystem,
		anchorsSystem,
		runtime.Logger,
	)

	buildSystem := build.New(
		db,
		corporaSystem,
		sourcesSystem,
		runtime.Storage,
		extractor,
		anchorer,
		runtime.Logger,
	)

	bundleSystem := bundle.New(
		corporaSystem,
		sourcesSystem,
		anchorsSystem,
		claimsSystem,
		snapshotsSystem,
		packetsSystem,
		ledgerSystem,
		runtime.Storage,
		runtime.Logger,
	)

	recordSystem := record.New(
		corporaSystem,
		sourcesSystem,
		anchorsSystem,
		claimsSystem,
		constraintsSystem,
		runtime.Logger,
	)

	return &Domain{
		Corpora:     corporaSystem,
		Sources:     sourcesSystem,
		Ledger:      ledgerSystem,
		Anchors:     anchorsSystem,
		Claims:      claimsSystem,
		Constraints: constraintsSystem,
		Snapshots:   snapshotsSystem,
		Packets:     packetsSystem,
		Build:       buildSystem,
		Bundle:      bundleSystem,
		Record:      recordSystem,
	}
}
