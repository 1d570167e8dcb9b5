package modkit

import (
	"os"
	"path/filepath"
	"testing"

	"mediarelay/internal/core/exchange"
	"mediarelay/internal/platform/config"
)

func TestNewDeps_ResolvesLayout(t *testing.T) {
	root := t.TempDir()
	t.Setenv("RELAY_EXCHANGE_ROOT", root+"/")

	d := NewDeps(config.New())
	if d.Layout.Root != filepath.Clean(root) {
		t.Fatalf("root = %q", d.Layout.Root)
	}
	if d.Layout.Outgoing != filepath.Join(root, exchange.OutgoingDir) {
		t.Fatalf("outgoing = %q", d.Layout.Outgoing)
	}
	if err := d.Layout.Ensure(); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if fi, err := os.Stat(d.Layout.Links); err != nil || !fi.IsDir() {
		t.Fatalf("links dir missing: %v", err)
	}
}
