package testkit

import (
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestMustPanic(t *testing.T) {
	t.Parallel()
	MustPanic(t, func() { panic("boom") })
	MustNotPanic(t, func() {})
}

func TestMustContain(t *testing.T) {
	t.Parallel()
	MustContain(t, "alpha beta gamma", "beta")
}

func TestWriteFileAndEntries(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	WriteFile(t, filepath.Join(dir, "job", "002_b.png"), []byte("b"))
	WriteFile(t, filepath.Join(dir, "job", "001_a.png"), []byte("a"))

	got := Entries(t, filepath.Join(dir, "job"))
	if len(got) != 2 || got[0] != "001_a.png" || got[1] != "002_b.png" {
		t.Fatalf("Entries = %v", got)
	}
	if Entries(t, filepath.Join(dir, "missing")) != nil {
		t.Fatalf("missing dir should yield nil")
	}
}

func TestEventually(t *testing.T) {
	t.Parallel()
	var n atomic.Int32
	go func() {
		time.Sleep(30 * time.Millisecond)
		n.Store(1)
	}()
	Eventually(t, time.Second, func() bool { return n.Load() == 1 }, "flag set")
}

var grace = 15 * time.Second

func TestSwap_RestoredAfterSubtest(t *testing.T) {
	t.Run("swapped", func(t *testing.T) {
		Swap(t, &grace, time.Millisecond)
		if grace != time.Millisecond {
			t.Fatalf("grace = %v", grace)
		}
	})
	if grace != 15*time.Second {
		t.Fatalf("grace not restored: %v", grace)
	}
}
