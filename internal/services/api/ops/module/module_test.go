package module_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mediarelay/internal/modkit"
	"mediarelay/internal/modkit/module"
	"mediarelay/internal/platform/config"
	phttp "mediarelay/internal/platform/net/http"
	kit "mediarelay/internal/platform/testkit"

	opsmod "mediarelay/internal/services/api/ops/module"

	"github.com/go-chi/chi/v5"
)

func TestNew_PrefixAndMiddleware(t *testing.T) {
	module.Reset()
	t.Cleanup(module.Reset)

	tagged := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Ops", "1")
			next.ServeHTTP(w, r)
		})
	}
	m := opsmod.New(modkit.Deps{Cfg: config.New()}, "relay-test",
		opsmod.WithPrefix("/v2"), opsmod.WithMiddleware(tagged))

	r := phttp.AdaptChi(chi.NewRouter())
	modkit.Mount(r, m)
	h := r.Mux()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v2/status", nil))
	if rec.Code != http.StatusOK || rec.Header().Get("X-Ops") != "1" {
		t.Fatalf("status = %d header = %q", rec.Code, rec.Header().Get("X-Ops"))
	}
	kit.MustContain(t, rec.Body.String(), `"service":"relay-test"`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Header().Get("X-Ops") != "" {
		t.Fatalf("healthz = %d header = %q", rec.Code, rec.Header().Get("X-Ops"))
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/status", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("/v1/status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v2/links",
		strings.NewReader(`{"url":"https://kemono.cr/patreon/user/1/post/2","source":"api"}`)))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("links without sink = %d", rec.Code)
	}
}
