// Package module wires the link sink
package module

import (
	"mediarelay/internal/modkit"
	phttp "mediarelay/internal/platform/net/http"

	"mediarelay/internal/services/linksink/domain"
	"mediarelay/internal/services/linksink/service"
)

// Ports defines the link sink ports
type Ports struct {
	Submitter domain.SubmitterPort
}

// Module implements the link sink module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the link sink over deps.Layout.Links
func New(deps modkit.Deps) *Module {
	svc := service.New(deps.Layout.Links)
	return &Module{deps: deps, ports: Ports{Submitter: svc}}
}

// Name returns the module name
func (m *Module) Name() string { return "linksink" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// MountRoutes is a no-op; the ops API exposes submission
func (m *Module) MountRoutes(_ phttp.Router) {}
