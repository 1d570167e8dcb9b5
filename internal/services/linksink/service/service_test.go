package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	perr "mediarelay/internal/platform/errors"
	kit "mediarelay/internal/platform/testkit"
)

func newSink(t *testing.T) *Service {
	t.Helper()
	s := New(filepath.Join(t.TempDir(), "kc-links"))
	s.now = func() time.Time { return time.Unix(1700000000, 0) }
	n := 0
	s.token = func() string {
		n++
		return "tok" + string(rune('0'+n))
	}
	return s
}

func TestSubmit_WritesSentinel(t *testing.T) {
	s := newSink(t)
	p, err := s.Submit(context.Background(), "  https://kemono.cr/patreon/user/1/post/2 \n", "Discord Bot")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if filepath.Base(p) != "1700000000_discord-bot_tok1.txt" {
		t.Fatalf("name = %s", filepath.Base(p))
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "https://kemono.cr/patreon/user/1/post/2" {
		t.Fatalf("content = %q", b)
	}
	if got := kit.Entries(t, s.Dir()); len(got) != 1 {
		t.Fatalf("leftover temp files: %v", got)
	}
}

func TestSubmit_EmptySourceAndURL(t *testing.T) {
	s := newSink(t)
	p, err := s.Submit(context.Background(), "https://coomer.st/a/user/b/post/3", "  ")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !strings.Contains(filepath.Base(p), "_unknown_") {
		t.Fatalf("source fallback missing: %s", p)
	}
	if _, err := s.Submit(context.Background(), " ", "x"); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("empty url code = %v", perr.CodeOf(err))
	}
}

func TestSubmit_FilesystemErrorIsIO(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "file")
	kit.WriteFile(t, blocker, []byte("x"))

	s := New(filepath.Join(blocker, "links"))
	_, err := s.Submit(context.Background(), "https://kemono.cr/a/user/1/post/1", "t")
	if !perr.IsCode(err, perr.ErrorCodeIO) {
		t.Fatalf("code = %v err=%v", perr.CodeOf(err), err)
	}
}

func TestSubmit_CancelledContext(t *testing.T) {
	s := newSink(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Submit(ctx, "https://kemono.cr/a/user/1/post/1", "t"); err == nil {
		t.Fatal("expected error on cancelled ctx")
	}
}

func TestSubmitText_ExtractsEveryLink(t *testing.T) {
	s := newSink(t)
	text := "look https://kemono.cr/patreon/user/1/post/2 and (https://coomer.st/onlyfans/user/x_y/post/9) twice https://kemono.cr/patreon/user/1/post/2"
	paths, err := s.SubmitText(context.Background(), text, "telegram")
	if err != nil {
		t.Fatalf("SubmitText: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("paths = %v", paths)
	}
	if len(kit.Entries(t, s.Dir())) != 2 {
		t.Fatalf("entries = %v", kit.Entries(t, s.Dir()))
	}

	none, err := s.SubmitText(context.Background(), "no links here", "telegram")
	if err != nil || none != nil {
		t.Fatalf("no-match = %v %v", none, err)
	}
}
