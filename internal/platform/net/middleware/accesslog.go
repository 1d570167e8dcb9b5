package middleware

import (
	"net/http"
	"strconv"
	"time"

	"mediarelay/internal/platform/logger"
	"mediarelay/internal/platform/metrics"
	pnet "mediarelay/internal/platform/net"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// ContextLogger puts the chi request id where logger.C looks for it
func ContextLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(pnet.WithRequest(r.Context(), pnet.RequestID(r.Context()))))
	})
}

// AccessLog writes one line per request and observes relay_ops_request_seconds.
// 5xx log at error and requests slower than slow at warn; everything else is debug.
// slow <= 0 turns the warn tier off
func AccessLog(slow time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			took := time.Since(start)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := routePattern(r)
			metrics.OpsRequests.WithLabelValues(route, strconv.Itoa(status)).Observe(took.Seconds())

			log := logger.C(r.Context())
			ev := log.Debug()
			switch {
			case status >= 500:
				ev = log.Error()
			case slow > 0 && took >= slow:
				ev = log.Warn()
			}
			ev.Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("route", route).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("took", took).
				Msg("ops request")
		})
	}
}

// routePattern keeps metric cardinality bounded by the mounted routes
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
