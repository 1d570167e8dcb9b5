// Package module wires the content fetcher
package module

import (
	"mediarelay/internal/adapters/ingest/kemono"
	"mediarelay/internal/modkit"
	phttp "mediarelay/internal/platform/net/http"

	"mediarelay/internal/services/fetcher/domain"
	"mediarelay/internal/services/fetcher/service"
)

// Ports defines the fetcher ports
type Ports struct {
	Fetcher domain.FetcherPort
	API     domain.ContentAPI

	// Client is the same client behind API, for callers that also list posts
	Client *kemono.Client
}

// Module implements the fetcher module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the fetcher from RELAY_FETCH_* config.
// The content API client is shared through Ports so the harvester lists posts with the same client
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)
	api := opts.Client()
	svc := service.New(api, deps.Layout, service.Config{
		AllowedExt:   opts.AllowedExt,
		MaxFileSize:  opts.MaxFileSize,
		FetchProfile: opts.FetchProfile,
	})
	return &Module{deps: deps, ports: Ports{Fetcher: svc, API: api, Client: api}}
}

// Name returns the module name
func (m *Module) Name() string { return "fetcher" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// MountRoutes is a no-op as the fetcher has no routes
func (m *Module) MountRoutes(_ phttp.Router) {}
