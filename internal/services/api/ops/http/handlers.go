// Package http provides the ops endpoints
package http

import (
	stdhttp "net/http"
	"path/filepath"
	"time"

	"mediarelay/internal/core/version"
	perr "mediarelay/internal/platform/errors"
	phttp "mediarelay/internal/platform/net/http"

	"mediarelay/internal/services/api/ops/domain"
	harvester "mediarelay/internal/services/harvester/domain"
	linksink "mediarelay/internal/services/linksink/domain"
	linkwatch "mediarelay/internal/services/linkwatch/domain"
)

// Deps are the handler dependencies; any port may be nil when the stage is not run here
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	Modules     []string
	Submitter   linksink.SubmitterPort
	Watcher     linkwatch.WatcherPort
	Harvester   harvester.HarvesterPort
}

type handlers struct {
	deps Deps
	now  func() time.Time
}

// Register mounts the versioned ops routes
func Register(r phttp.Router, d Deps) {
	h := &handlers{deps: d, now: time.Now}
	phttp.GetJSON(r, "/status", h.status)
	phttp.PostAccepted(r, "/links", h.submit)
	phttp.GetJSON(r, "/cursors", h.cursors)
	phttp.PostJSON(r, "/cursors", h.addCursor)
}

// RegisterHealth mounts the liveness probe
func RegisterHealth(r phttp.Router, d Deps) {
	h := &handlers{deps: d, now: time.Now}
	phttp.GetJSON(r, "/healthz", h.health)
}

func (h *handlers) health(_ *stdhttp.Request) (any, error) {
	return domain.HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Version: version.Info(h.deps.ServiceName).Version,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Now:     h.now().UTC().Format(time.RFC3339),
	}, nil
}

func (h *handlers) status(_ *stdhttp.Request) (any, error) {
	out := domain.StatusResponse{
		Service: h.deps.ServiceName,
		Version: version.Info(h.deps.ServiceName).Version,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Uptime:  int64(h.now().Sub(h.deps.StartedAt) / time.Second),
		Modules: h.deps.Modules,
	}
	if h.deps.Watcher != nil {
		out.Watcher = h.deps.Watcher.State().String()
	}
	if h.deps.Harvester != nil {
		hs := &domain.HarvesterStatus{Sources: len(h.deps.Harvester.List())}
		if sw, ok := h.deps.Harvester.LastSweep(); ok {
			hs.LastSweep = &sw
		}
		out.Harvester = hs
	}
	return out, nil
}

func (h *handlers) submit(r *stdhttp.Request, in domain.LinkInput) (any, error) {
	if h.deps.Submitter == nil {
		return nil, perr.Unavailablef("link sink not available")
	}
	p, err := h.deps.Submitter.Submit(r.Context(), in.URL, in.Source)
	if err != nil {
		return nil, err
	}
	return domain.LinkAccepted{Sentinel: filepath.Base(p)}, nil
}

func (h *handlers) cursors(_ *stdhttp.Request) (any, error) {
	if h.deps.Harvester == nil {
		return nil, perr.Unavailablef("harvester not running")
	}
	return h.deps.Harvester.List(), nil
}

func (h *handlers) addCursor(_ *stdhttp.Request, in domain.CursorInput) (any, error) {
	if h.deps.Harvester == nil {
		return nil, perr.Unavailablef("harvester not running")
	}
	c := harvester.Cursor{
		AuthorName: in.AuthorName,
		Platform:   in.Platform,
		UserID:     in.UserID,
		Domain:     in.Domain,
	}
	if err := h.deps.Harvester.Add(c); err != nil {
		return nil, err
	}
	return c, nil
}
