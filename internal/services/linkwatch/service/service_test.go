package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"mediarelay/internal/core/exchange"
	"mediarelay/internal/core/postref"
	kit "mediarelay/internal/platform/testkit"

	"mediarelay/internal/services/linkwatch/domain"
)

type fakeFetcher struct {
	mu    sync.Mutex
	refs  []postref.Ref
	err   error
	block chan struct{}
	calls atomic.Int32
}

func (f *fakeFetcher) Fetch(ctx context.Context, ref postref.Ref) (string, error) {
	f.calls.Add(1)
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	f.mu.Lock()
	f.refs = append(f.refs, ref)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return "/out/" + ref.Key(), nil
}

func (f *fakeFetcher) fetched() []postref.Ref {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]postref.Ref(nil), f.refs...)
}

func sentinel(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	kit.WriteFile(t, p, []byte(body))
	return p
}

func gone(path string) bool {
	_, err := os.Stat(path)
	return os.IsNotExist(err)
}

func TestProcess_SentinelAlwaysDeleted(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		fetchErr error
		want     domain.Outcome
		fetches  int32
	}{
		{"empty", "  \n", nil, domain.OutcomeEmpty, 0},
		{"foreign host", "https://example.com/patreon/user/1/post/2", nil, domain.OutcomeRejected, 0},
		{"malformed path", "https://kemono.cr/patreon/user/1", nil, domain.OutcomeMalformed, 0},
		{"fetched", "https://kemono.cr/patreon/user/1/post/2\n", nil, domain.OutcomeFetched, 1},
		{"fetch failed", "https://coomer.st/onlyfans/user/a/post/3", errors.New("boom"), domain.OutcomeFailed, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			dir := t.TempDir()
			f := &fakeFetcher{err: c.fetchErr}
			s := New(f, Config{Dir: dir})
			p := sentinel(t, dir, "1_test_x.txt", c.body)

			if got := s.Process(context.Background(), p); got != c.want {
				t.Fatalf("outcome = %s, want %s", got, c.want)
			}
			if !gone(p) {
				t.Fatalf("sentinel still present")
			}
			if f.calls.Load() != c.fetches {
				t.Fatalf("fetch calls = %d, want %d", f.calls.Load(), c.fetches)
			}
		})
	}
}

func TestProcess_ParsesRef(t *testing.T) {
	dir := t.TempDir()
	f := &fakeFetcher{}
	s := New(f, Config{Dir: dir})
	s.Process(context.Background(), sentinel(t, dir, "a.txt", "https://kemono.cr/fanbox/user/77/post/901/"))

	refs := f.fetched()
	want := postref.Ref{Domain: "kemono.cr", Service: "fanbox", UserID: "77", PostID: "901"}
	if len(refs) != 1 || refs[0] != want {
		t.Fatalf("refs = %+v", refs)
	}
}

func TestProcess_ShutdownKeepsSentinel(t *testing.T) {
	dir := t.TempDir()
	f := &fakeFetcher{block: make(chan struct{})}
	s := New(f, Config{Dir: dir})
	p := sentinel(t, dir, "a.txt", "https://kemono.cr/patreon/user/1/post/2")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for f.calls.Load() == 0 {
			time.Sleep(time.Millisecond)
		}
		cancel()
	}()
	if got := s.Process(ctx, p); got != domain.OutcomeDeferred {
		t.Fatalf("outcome = %s", got)
	}
	if gone(p) {
		t.Fatalf("interrupted sentinel should be kept for the next start")
	}
}

func TestProcess_MissingFileIsGone(t *testing.T) {
	s := New(&fakeFetcher{}, Config{Dir: t.TempDir()})
	if got := s.Process(context.Background(), filepath.Join(t.TempDir(), "nope.txt")); got != domain.OutcomeGone {
		t.Fatalf("outcome = %s", got)
	}
}

func TestDispatch_DeduplicatesInFlight(t *testing.T) {
	dir := t.TempDir()
	f := &fakeFetcher{block: make(chan struct{})}
	s := New(f, Config{Dir: dir, Workers: 4})
	p := sentinel(t, dir, "a.txt", "https://kemono.cr/patreon/user/1/post/2")

	ctx := context.Background()
	s.dispatch(ctx, p, 0)
	s.dispatch(ctx, p, 0)
	s.dispatch(ctx, p, 0)

	kit.Eventually(t, 2*time.Second, func() bool { return f.calls.Load() == 1 }, "first fetch should start")
	close(f.block)
	s.wg.Wait()

	if f.calls.Load() != 1 {
		t.Fatalf("fetch calls = %d, want 1", f.calls.Load())
	}
	if !gone(p) {
		t.Fatalf("sentinel still present")
	}
}

func TestDispatch_IgnoresPartialAndOtherFiles(t *testing.T) {
	dir := t.TempDir()
	f := &fakeFetcher{}
	s := New(f, Config{Dir: dir})
	s.dispatch(context.Background(), sentinel(t, dir, ".1_x.txt-123"+exchange.PartialSuffix, "https://kemono.cr/a/user/1/post/1"), 0)
	s.dispatch(context.Background(), sentinel(t, dir, "notes.md", "https://kemono.cr/a/user/1/post/1"), 0)
	s.wg.Wait()
	if f.calls.Load() != 0 {
		t.Fatalf("non-sentinels must be ignored")
	}
}

func TestRun_ScansThenWatches(t *testing.T) {
	dir := t.TempDir()
	f := &fakeFetcher{}
	s := New(f, Config{Dir: dir, ReadDelay: 10 * time.Millisecond, Rescan: 200 * time.Millisecond})

	existing := sentinel(t, dir, "1_boot_a.txt", "https://kemono.cr/patreon/user/1/post/1")
	if s.State() != domain.StateIdle {
		t.Fatalf("initial state = %s", s.State())
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	kit.Eventually(t, 3*time.Second, func() bool { return gone(existing) }, "startup scan should consume existing sentinel")
	kit.Eventually(t, 3*time.Second, func() bool { return s.State() == domain.StateWatching }, "watching state")

	added := filepath.Join(dir, "2_live_b.txt")
	if err := exchange.WriteFileAtomic(added, []byte("https://coomer.st/onlyfans/user/x/post/2")); err != nil {
		t.Fatalf("write: %v", err)
	}
	kit.Eventually(t, 3*time.Second, func() bool { return gone(added) }, "new sentinel should be consumed")

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if s.State() != domain.StateIdle {
		t.Fatalf("final state = %s", s.State())
	}
	if n := len(f.fetched()); n != 2 {
		t.Fatalf("fetched %d refs, want 2", n)
	}
}
