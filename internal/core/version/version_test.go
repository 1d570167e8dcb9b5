package version

import (
	"strings"
	"testing"

	kit "mediarelay/internal/platform/testkit"
)

func TestInfo(t *testing.T) {
	bi := Info("relayctl")
	if bi.Service != "relayctl" || bi.Version != "dev" {
		t.Fatalf("info = %+v", bi)
	}
	if bi.Commit == "" || bi.Date == "" {
		t.Fatalf("empty commit or date: %+v", bi)
	}
	kit.MustContain(t, bi.String(), "relayctl dev (")
	if !strings.HasSuffix(bi.String(), ")") {
		t.Fatalf("String = %q", bi.String())
	}
}

func TestInfo_LdflagsWin(t *testing.T) {
	kit.Swap(t, &commit, "abc123")
	kit.Swap(t, &date, "2026-01-02")
	bi := Info("relay-ingester")
	if bi.Commit != "abc123" || bi.Date != "2026-01-02" {
		t.Fatalf("info = %+v", bi)
	}
}
