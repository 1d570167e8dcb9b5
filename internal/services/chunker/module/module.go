// Package module wires the delivery chunker to a delivery collaborator
package module

import (
	"mediarelay/internal/modkit"
	phttp "mediarelay/internal/platform/net/http"

	"mediarelay/internal/services/chunker/domain"
	"mediarelay/internal/services/chunker/service"
)

// Ports defines the chunker ports
type Ports struct {
	Chunker domain.ChunkerPort
}

// Module implements the chunker module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the chunker draining deps.Layout.Outgoing into out
func New(deps modkit.Deps, out domain.Delivery) *Module {
	o := FromConfig(deps.Cfg)
	svc := service.New(deps.Layout, out, service.Config{
		Poll:       o.Poll,
		Grace:      o.Grace,
		MaxItems:   o.MaxItems,
		MaxBytes:   o.MaxBytes,
		MaxCaption: o.MaxCaption,
		MediaExt:   o.MediaExt,
	})
	return &Module{deps: deps, ports: Ports{Chunker: svc}}
}

// Name returns the module name
func (m *Module) Name() string { return "chunker" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// MountRoutes is a no-op as the chunker has no routes
func (m *Module) MountRoutes(_ phttp.Router) {}
