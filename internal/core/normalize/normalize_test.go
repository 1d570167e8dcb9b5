package normalize

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		out  string
	}{
		{"plain", "photo.png", "photo.png"},
		{"path hostile", `a/b\c?d%e*f:g|h"i<j>k.jpg`, "a_b_c_d_e_f_g_h_i_j_k.jpg"},
		{"traversal", "../../etc/passwd", ".._.._etc_passwd"},
		{"controls dropped", "na\x00me\x1f.gif", "name.gif"},
		{"zero width dropped", "a\u200bb.png", "ab.png"},
		{"nfc composes", "cafe\u0301.jpg", "caf\u00e9.jpg"},
		{"invalid utf8", string([]byte{0xff, 'x', '.', 'p', 'n', 'g'}), "x.png"},
		{"empty", "   ", FallbackName},
		{"dotdot", "..", FallbackName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FileName(tt.in); got != tt.out {
				t.Fatalf("FileName(%q) = %q, want %q", tt.in, got, tt.out)
			}
		})
	}
}

func TestText(t *testing.T) {
	in := "title\x00 line\r\nnext\x7f\u0085\tend" + string([]byte{0xff})
	if got := Text(in); got != "title line\r\nnext\tend" {
		t.Fatalf("Text = %q", got)
	}
	if Text("clean") != "clean" {
		t.Fatalf("clean text changed")
	}
}

func TestHasText(t *testing.T) {
	if HasText(" \n\t ") {
		t.Fatalf("whitespace-only reported as text")
	}
	if !HasText("  x ") {
		t.Fatalf("text not detected")
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("héllo", 2); got != "hé" {
		t.Fatalf("Truncate = %q", got)
	}
	if got := Truncate("short", 10); got != "short" {
		t.Fatalf("Truncate no-op = %q", got)
	}
	long := strings.Repeat("ж", 2500)
	got := Truncate(long, 2000)
	if utf8.RuneCountInString(got) != 2000 || !utf8.ValidString(got) {
		t.Fatalf("Truncate long: %d runes", utf8.RuneCountInString(got))
	}
}
