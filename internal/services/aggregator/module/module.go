// Package module wires the attachment aggregator to a chat downloader
package module

import (
	"mediarelay/internal/modkit"
	phttp "mediarelay/internal/platform/net/http"

	"mediarelay/internal/services/aggregator/domain"
	"mediarelay/internal/services/aggregator/service"
)

// Ports defines the aggregator ports
type Ports struct {
	Aggregator domain.AggregatorPort
}

// Module implements the aggregator module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the aggregator publishing into deps.Layout
func New(deps modkit.Deps, dl domain.Downloader) *Module {
	opts := FromConfig(deps.Cfg)
	svc := service.New(deps.Layout, dl, service.Config{
		Check: opts.Check,
		Idle:  opts.Idle,
		Drain: opts.Drain,
	})
	return &Module{deps: deps, ports: Ports{Aggregator: svc}}
}

// Name returns the module name
func (m *Module) Name() string { return "aggregator" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// MountRoutes is a no-op as the aggregator has no routes
func (m *Module) MountRoutes(_ phttp.Router) {}
