// Package module wires the ops endpoints over the ports of the pipeline modules in this process
package module

import (
	"net/http"
	"time"

	"mediarelay/internal/modkit"
	"mediarelay/internal/modkit/module"
	phttp "mediarelay/internal/platform/net/http"

	opshttp "mediarelay/internal/services/api/ops/http"
	harvestermod "mediarelay/internal/services/harvester/module"
	linksinkmod "mediarelay/internal/services/linksink/module"
	linkwatchmod "mediarelay/internal/services/linkwatch/module"
)

// Module implements modkit.Module for the ops endpoints
type Module struct {
	deps     modkit.Deps
	prefix   string
	mws      []func(http.Handler) http.Handler
	handlers opshttp.Deps
}

// Option tweaks the ops module
type Option func(*Module)

// WithPrefix moves the versioned routes off /v1
func WithPrefix(prefix string) Option { return func(m *Module) { m.prefix = prefix } }

// WithMiddleware adds middleware to the versioned routes only; /healthz stays bare
func WithMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(m *Module) { m.mws = append(m.mws, mw...) }
}

// New constructs the ops module. Ports of linksink, linkwatch and harvester are looked up
// in the module registry, so register those modules first; missing ones answer 503.
// The status payload lists every module registered at this point
func New(deps modkit.Deps, service string, opts ...Option) *Module {
	m := &Module{deps: deps, prefix: "/v1"}
	for _, o := range opts {
		o(m)
	}

	m.handlers = opshttp.Deps{ServiceName: service, StartedAt: time.Now(), Modules: module.Names()}
	if p, ok := module.PortsAs[linksinkmod.Ports]("linksink"); ok {
		m.handlers.Submitter = p.Submitter
	}
	if p, ok := module.PortsAs[linkwatchmod.Ports]("linkwatch"); ok {
		m.handlers.Watcher = p.Watcher
	}
	if p, ok := module.PortsAs[harvestermod.Ports]("harvester"); ok {
		m.handlers.Harvester = p.Harvester
	}
	return m
}

// MountRoutes mounts /healthz at the root and the versioned routes under the prefix
func (m *Module) MountRoutes(r phttp.Router) {
	opshttp.RegisterHealth(r, m.handlers)
	r.Route(m.prefix, func(rr phttp.Router) {
		rr.Use(m.mws...)
		opshttp.Register(rr, m.handlers)
	})
}

// Name implements modkit.Module
func (m *Module) Name() string { return "ops" }

// Ports implements modkit.Module
func (m *Module) Ports() any { return nil }
