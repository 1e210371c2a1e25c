package api

import (
	"net/http"

	"github.com/tmoresby/veracity/internal/config"
	"github.com/tmoresby/veracity/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain, cfg *config.Config) {
	routes.Register(
		mux,
		corpusGroup(domain),
		domain.Sources.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
		domain.Ledger.Handler().Routes(),
		domain.Ledger.Handler().CorpusRoutes(),
		domain.Anchors.Handler().Routes(),
		domain.Constraints.Handler().Routes(),
		domain.Snapshots.Handler().Routes(),
		domain.Packets.Handler().Routes(),
		domain.Bundle.Handler().Routes(),
		domain.Bundle.Handler().ReviewRoutes(),
	)
}

// corpusGroup merges the corpus CRUD routes with every corpus-scoped
// sub-resource under a single /corpus prefix.
func corpusGroup(domain *Domain) routes.Group {
	group := domain.Corpora.Handler().Routes()

	group.Routes = append(group.Routes, domain.Claims.Handler().CorpusRoutes()...)
	group.Routes = append(group.Routes, domain.Constraints.Handler().CorpusRoutes()...)
	group.Routes = append(group.Routes, domain.Snapshots.Handler().CorpusRoutes()...)
	group.Routes = append(group.Routes, domain.Packets.Handler().CorpusRoutes()...)
	group.Routes = append(group.Routes, domain.Build.Handler().CorpusRoutes()...)
	group.Routes = append(group.Routes, domain.Bundle.Handler().CorpusRoutes()...)
	group.Routes = append(group.Routes, domain.Record.Handler().CorpusRoutes()...)

	return group
}
