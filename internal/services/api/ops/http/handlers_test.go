package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	perr "mediarelay/internal/platform/errors"
	phttp "mediarelay/internal/platform/net/http"

	opshttp "mediarelay/internal/services/api/ops/http"
	harvester "mediarelay/internal/services/harvester/domain"
	linkwatch "mediarelay/internal/services/linkwatch/domain"

	"github.com/go-chi/chi/v5"
)

type fakeSink struct{ urls []string }

func (f *fakeSink) Submit(_ context.Context, url, source string) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", perr.InvalidArgf("empty url")
	}
	f.urls = append(f.urls, url)
	return "/x/kc-links/1_" + source + "_abc.txt", nil
}

func (f *fakeSink) SubmitText(context.Context, string, string) ([]string, error) { return nil, nil }

type fakeWatcher struct{}

func (fakeWatcher) State() linkwatch.State         { return linkwatch.StateWatching }
func (fakeWatcher) Run(ctx context.Context) error { <-ctx.Done(); return nil }

type fakeHarvester struct {
	cursors []harvester.Cursor
	last    *harvester.Sweep
}

func (f *fakeHarvester) RunOnce(context.Context) (harvester.Sweep, error) { return harvester.Sweep{}, nil }
func (f *fakeHarvester) Run(context.Context) error                       { return nil }
func (f *fakeHarvester) List() []harvester.Cursor                        { return f.cursors }
func (f *fakeHarvester) LastSweep() (harvester.Sweep, bool) {
	if f.last == nil {
		return harvester.Sweep{}, false
	}
	return *f.last, true
}
func (f *fakeHarvester) Add(c harvester.Cursor) error {
	for _, have := range f.cursors {
		if have.Key() == c.Key() {
			return perr.Conflictf("tracked")
		}
	}
	f.cursors = append(f.cursors, c)
	return nil
}

func router(d opshttp.Deps) http.Handler {
	r := phttp.AdaptChi(chi.NewRouter())
	opshttp.RegisterHealth(r, d)
	r.Route("/v1", func(v1 phttp.Router) { opshttp.Register(v1, d) })
	return r.Mux()
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, phttp.Envelope) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var env phttp.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	return rec, env
}

func TestHealth(t *testing.T) {
	h := router(opshttp.Deps{ServiceName: "relay-ingester", StartedAt: time.Now()})
	rec, env := do(t, h, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	data, _ := env.Data.(map[string]any)
	if data["ok"] != true || data["service"] != "relay-ingester" {
		t.Fatalf("data = %#v", env.Data)
	}
}

func TestStatus(t *testing.T) {
	sweep := harvester.Sweep{At: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Sources: 2, NewPosts: 3}
	h := router(opshttp.Deps{
		ServiceName: "relay-ingester",
		StartedAt:   time.Now().Add(-time.Minute),
		Watcher:     fakeWatcher{},
		Harvester:   &fakeHarvester{cursors: make([]harvester.Cursor, 2), last: &sweep},
	})
	rec, env := do(t, h, http.MethodGet, "/v1/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	data := env.Data.(map[string]any)
	if data["watcher"] != "watching" {
		t.Fatalf("watcher = %v", data["watcher"])
	}
	hs := data["harvester"].(map[string]any)
	if hs["sources"] != float64(2) {
		t.Fatalf("harvester = %#v", hs)
	}
	if ls := hs["last_sweep"].(map[string]any); ls["new_posts"] != float64(3) {
		t.Fatalf("last_sweep = %#v", ls)
	}
	if up, _ := data["uptime"].(float64); up < 59 {
		t.Fatalf("uptime = %v", data["uptime"])
	}
}

func TestSubmitLink(t *testing.T) {
	sink := &fakeSink{}
	h := router(opshttp.Deps{Submitter: sink})

	rec, env := do(t, h, http.MethodPost, "/v1/links", `{"url":"https://kemono.cr/patreon/user/1/post/2","source":"ops"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if data := env.Data.(map[string]any); data["sentinel"] != "1_ops_abc.txt" {
		t.Fatalf("data = %#v", env.Data)
	}
	if len(sink.urls) != 1 {
		t.Fatalf("urls = %v", sink.urls)
	}

	rec, _ = do(t, h, http.MethodPost, "/v1/links", `{"source":"ops"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing url status = %d", rec.Code)
	}
}

func TestMissingStagesAreUnavailable(t *testing.T) {
	h := router(opshttp.Deps{})
	for _, c := range []struct{ method, path, body string }{
		{http.MethodPost, "/v1/links", `{"url":"https://kemono.cr/x"}`},
		{http.MethodGet, "/v1/cursors", ""},
		{http.MethodPost, "/v1/cursors", `{"platform":"patreon","user_id":"1","domain":"kemono.cr"}`},
	} {
		rec, env := do(t, h, c.method, c.path, c.body)
		if rec.Code != http.StatusServiceUnavailable || env.Code != perr.ErrorCodeUnavailable {
			t.Fatalf("%s %s = %d %+v", c.method, c.path, rec.Code, env)
		}
	}
}

func TestCursors(t *testing.T) {
	hv := &fakeHarvester{}
	h := router(opshttp.Deps{Harvester: hv})

	body := `{"platform":"patreon","user_id":"42","domain":"kemono.cr","author_name":"Someone"}`
	rec, _ := do(t, h, http.MethodPost, "/v1/cursors", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("add status = %d body=%s", rec.Code, rec.Body.String())
	}
	rec, _ = do(t, h, http.MethodPost, "/v1/cursors", body)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate add status = %d", rec.Code)
	}

	rec, env := do(t, h, http.MethodGet, "/v1/cursors", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	list := env.Data.([]any)
	if len(list) != 1 || list[0].(map[string]any)["user_id"] != "42" {
		t.Fatalf("list = %#v", env.Data)
	}
}
