// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/tmoresby/veracity/internal/config"
	"github.com/tmoresby/veracity/internal/extraction"
	"github.com/tmoresby/veracity/internal/infrastructure"
	"github.com/tmoresby/veracity/pkg/middleware"
	"github.com/tmoresby/veracity/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
func NewModule(
	cfg *config.Config,
	infra *infrastructure.Infrastructure,
	extractor extraction.Extractor,
	anchorer extraction.Anchorer,
) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime, extractor, anchorer)

	mux := http.NewServeMux()
	registerRoutes(mux, domain, cfg)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Infrastructure.Logger))

	return m, nil
}
