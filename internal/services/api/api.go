// Package api provides the ops HTTP surface of a relay process
package api

import (
	"time"

	"mediarelay/internal/modkit"
	"mediarelay/internal/platform/metrics"
	phttp "mediarelay/internal/platform/net/http"
	"mediarelay/internal/platform/net/middleware"

	opsmod "mediarelay/internal/services/api/ops/module"
)

// Options are the API options
type Options struct {
	Deps           modkit.Deps
	Service        string
	Modules        []modkit.Module
	CORSOrigins    []string
	SlowRequest    time.Duration
	EnableProfiler bool
}

// FromConfig reads RELAY_API_ switches; Deps, Service and Modules are filled by the caller
func FromConfig(deps modkit.Deps) Options {
	c := deps.Cfg.Prefix("RELAY_API_")
	return Options{
		Deps:           deps,
		CORSOrigins:    c.MayCSV("CORS_ORIGINS", []string{"*"}),
		SlowRequest:    c.MayDuration("SLOW_REQUEST", time.Second),
		EnableProfiler: c.MayBool("PROFILER", false),
	}
}

// Mount installs the middleware stack, registers every pipeline module, then mounts the ops routes.
// Call it on a fresh router before anything else is mounted
func Mount(r phttp.Router, opt Options) {
	r.Use(middleware.Defaults()...)
	r.Use(
		middleware.AccessLog(opt.SlowRequest),
		middleware.CORS(middleware.CORSOptions{AllowedOrigins: opt.CORSOrigins, MaxAge: 300}),
	)

	// pipeline modules first so the ops module can resolve their ports
	modkit.Mount(r, opt.Modules...)
	modkit.Mount(r, opsmod.New(opt.Deps, opt.Service))

	r.Handle("/metrics", metrics.Handler())
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)
}
