// Package module wires the periodic harvester
package module

import (
	"mediarelay/internal/modkit"
	phttp "mediarelay/internal/platform/net/http"

	"mediarelay/internal/services/harvester/domain"
	"mediarelay/internal/services/harvester/repo"
	"mediarelay/internal/services/harvester/service"
)

// Ports defines the harvester ports
type Ports struct {
	Harvester domain.HarvesterPort
}

// Module implements the harvester module
type Module struct {
	deps  modkit.Deps
	opts  Options
	svc   *service.Service
	ports Ports
}

// New constructs the harvester over the cursor file named by RELAY_HARVEST_CURSORS.
// Load must succeed before the harvester is scheduled
func New(deps modkit.Deps, list domain.Lister, fetch domain.Fetcher) *Module {
	opts := FromConfig(deps.Cfg)
	svc := service.New(list, fetch, repo.NewFile(opts.CursorFile), service.Config{
		Interval:       opts.Interval,
		FirstRunWindow: opts.FirstRunWindow,
		FillNames:      opts.FillNames,
	})
	return &Module{deps: deps, opts: opts, svc: svc, ports: Ports{Harvester: svc}}
}

// Enabled reports whether RELAY_HARVEST_ENABLED allows scheduling
func (m *Module) Enabled() bool { return m.opts.Enabled }

// Load reads the cursor file
func (m *Module) Load() error { return m.svc.Load() }

// Name returns the module name
func (m *Module) Name() string { return "harvester" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// MountRoutes is a no-op; cursors are listed by the ops API
func (m *Module) MountRoutes(_ phttp.Router) {}
