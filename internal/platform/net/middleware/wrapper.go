// Package middleware is the ops API middleware: chi's stock handlers, go-chi/cors,
// request-scoped logging and a JSON panic guard
package middleware

import (
	"net/http"
	"time"

	pstrings "mediarelay/internal/platform/strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	chicors "github.com/go-chi/cors"
)

// RequestTimeout bounds every ops request; nothing the ops API does should take longer
const RequestTimeout = 30 * time.Second

// Defaults is mounted first on every ops router. Order matters: the request id must exist
// before ContextLogger copies it, and RecoverJSON needs both to write a useful envelope
func Defaults() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		chimw.RealIP,
		chimw.RequestID,
		ContextLogger,
		RecoverJSON,
		chimw.Timeout(RequestTimeout),
		chimw.NoCache,
	}
}

// CORSOptions picks what the ops API exposes cross-origin; empty lists get defaults
type CORSOptions struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int
}

// CORS builds go-chi/cors for the ops API
func CORS(o CORSOptions) func(http.Handler) http.Handler {
	return chicors.Handler(chicors.Options{
		AllowedOrigins: o.AllowedOrigins,
		AllowedMethods: pstrings.IfEmpty(o.AllowedMethods, []string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		AllowedHeaders: pstrings.IfEmpty(o.AllowedHeaders, []string{"Accept", "Content-Type", "X-Request-ID"}),
		MaxAge:         o.MaxAge,
	})
}
