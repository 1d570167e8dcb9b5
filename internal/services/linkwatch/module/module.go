// Package module wires the link watcher to the content fetcher
package module

import (
	"mediarelay/internal/modkit"
	phttp "mediarelay/internal/platform/net/http"

	"mediarelay/internal/services/linkwatch/domain"
	"mediarelay/internal/services/linkwatch/service"
)

// Ports defines the link watcher ports
type Ports struct {
	Watcher domain.WatcherPort
}

// Module implements the link watcher module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the watcher over deps.Layout.Links; fetch is the fetcher module's port
func New(deps modkit.Deps, fetch domain.Fetcher) *Module {
	opts := FromConfig(deps.Cfg)
	svc := service.New(fetch, service.Config{
		Dir:       deps.Layout.Links,
		ReadDelay: opts.ReadDelay,
		Rescan:    opts.Rescan,
		Workers:   opts.Workers,
	})
	return &Module{deps: deps, ports: Ports{Watcher: svc}}
}

// Name returns the module name
func (m *Module) Name() string { return "linkwatch" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// MountRoutes is a no-op as the watcher has no routes
func (m *Module) MountRoutes(_ phttp.Router) {}
