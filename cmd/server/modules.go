package main

import (
	"encoding/json"
	"net/http"

	"github.com/tmoresby/veracity/internal/api"
	"github.com/tmoresby/veracity/internal/config"
	"github.com/tmoresby/veracity/internal/extraction"
	"github.com/tmoresby/veracity/internal/infrastructure"
	"github.com/tmoresby/veracity/pkg/module"
)

type Modules struct {
	API *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	// The default collaborator carries no fixtures; deployments that run
	// extraction swap in a real extractor and anchor heuristic here.
	collaborator := extraction.NewStatic(nil, nil)

	apiModule, err := api.NewModule(cfg, infra, collaborator, collaborator)
	if err != nil {
		return nil, err
	}

	return &Modules{
		API: apiModule,
	}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !infra.Lifecycle.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "not ready"})
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	})

	return router
}
