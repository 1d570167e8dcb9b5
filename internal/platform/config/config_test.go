package config

import (
	"testing"
	"time"

	kit "mediarelay/internal/platform/testkit"
)

func TestPrefixAndKey(t *testing.T) {
	chunk := New().Prefix("RELAY_").Prefix("CHUNK_")
	if got := chunk.key("MAX_ITEMS"); got != "RELAY_CHUNK_MAX_ITEMS" {
		t.Fatalf("key() = %q", got)
	}
}

func TestMustString(t *testing.T) {
	c := New().Prefix("DISCORD_")
	t.Setenv("DISCORD_TOKEN", "  abc ")
	if got := c.MustString("TOKEN"); got != "abc" {
		t.Fatalf("MustString = %q, want abc", got)
	}
	kit.MustPanic(t, func() { _ = c.MustString("MISSING") })
}

func TestMayScalars(t *testing.T) {
	c := New().Prefix("M_")
	t.Setenv("M_INT", " 7 ")
	t.Setenv("M_INT_BAD", "x")
	t.Setenv("M_BOOL", "true")
	t.Setenv("M_DUR", "150ms")
	t.Setenv("M_DUR_NEG", "-1s")

	if got := c.MayString("MISSING", "def"); got != "def" {
		t.Fatalf("MayString default = %q", got)
	}
	if got := c.MayInt("INT", 0); got != 7 {
		t.Fatalf("MayInt = %d", got)
	}
	if got := c.MayInt("INT_BAD", 3); got != 3 {
		t.Fatalf("MayInt invalid = %d", got)
	}
	if !c.MayBool("BOOL", false) {
		t.Fatalf("MayBool want true")
	}
	if got := c.MayDuration("DUR", time.Second); got != 150*time.Millisecond {
		t.Fatalf("MayDuration = %v", got)
	}
	if got := c.MayDuration("DUR_NEG", time.Second); got != time.Second {
		t.Fatalf("negative duration should fall back, got %v", got)
	}
}

func TestMayBytes(t *testing.T) {
	c := New().Prefix("SZ_")
	cases := map[string]int64{
		"50MB":   50_000_000,
		"200MiB": 200 << 20,
		"1024":   1024,
	}
	for in, want := range cases {
		t.Setenv("SZ_V", in)
		if got := c.MayBytes("V", 1); got != want {
			t.Fatalf("MayBytes(%q) = %d, want %d", in, got, want)
		}
	}
	t.Setenv("SZ_V", "lots")
	if got := c.MayBytes("V", 9); got != 9 {
		t.Fatalf("MayBytes invalid = %d, want default", got)
	}
}

func TestMayPathAndAddr(t *testing.T) {
	c := New().Prefix("P_")
	t.Setenv("P_ROOT", "./exchange/")
	if got := c.MayPath("ROOT", "x"); got != "exchange" {
		t.Fatalf("MayPath = %q", got)
	}
	t.Setenv("P_PORT", "4000")
	if got := c.MayAddr("PORT", ""); got != ":4000" {
		t.Fatalf("MayAddr = %q", got)
	}
	t.Setenv("P_PORT", "127.0.0.1:0")
	if got := c.MayAddr("PORT", ""); got != "127.0.0.1:0" {
		t.Fatalf("MayAddr host:port = %q", got)
	}
}

func TestMayCSV(t *testing.T) {
	c := New().Prefix("CSV_")
	t.Setenv("CSV_VALS", " kemono.cr, ,coomer.st ,, ")
	got := c.MayCSV("VALS", nil)
	if len(got) != 2 || got[0] != "kemono.cr" || got[1] != "coomer.st" {
		t.Fatalf("MayCSV = %#v", got)
	}
	t.Setenv("CSV_EMPTY", " , ")
	if got := c.MayCSV("EMPTY", []string{"d"}); len(got) != 1 || got[0] != "d" {
		t.Fatalf("MayCSV all-empty = %#v", got)
	}
}
