package http

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Handler is a plain handler func
type Handler = func(stdhttp.ResponseWriter, *stdhttp.Request)

// Router is what modules see when they mount routes
type Router interface {
	Get(path string, h Handler)
	Post(path string, h Handler)
	Handle(path string, h stdhttp.Handler)
	Use(mw ...func(stdhttp.Handler) stdhttp.Handler)
	Route(prefix string, fn func(Router))
	Mux() stdhttp.Handler
}

type chiRouter struct{ r chi.Router }

// AdaptChi wraps m as a Router
func AdaptChi(m *chi.Mux) Router { return chiRouter{r: m} }

func (c chiRouter) Get(p string, h Handler)  { c.r.Get(p, h) }
func (c chiRouter) Post(p string, h Handler) { c.r.Post(p, h) }

func (c chiRouter) Handle(p string, h stdhttp.Handler) { c.r.Handle(p, h) }

func (c chiRouter) Use(mw ...func(stdhttp.Handler) stdhttp.Handler) { c.r.Use(mw...) }

func (c chiRouter) Route(prefix string, fn func(Router)) {
	c.r.Route(prefix, func(sub chi.Router) { fn(chiRouter{r: sub}) })
}

func (c chiRouter) Mux() stdhttp.Handler { return c.r }

// MountProfiler serves net/http/pprof under prefix when on
func MountProfiler(r Router, prefix string, on bool) {
	if on {
		r.Handle(prefix+"/*", stdhttp.StripPrefix(prefix, chimw.Profiler()))
	}
}
