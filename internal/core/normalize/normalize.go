// Package normalize cleans remote-supplied names and text before they touch disk or a chat message.
//
// File names: NFC, control characters dropped, path-hostile ASCII replaced with '_'.
// Text sidecars: invalid UTF-8 and control characters dropped, line breaks kept.
// Captions: truncated on rune boundaries.
package normalize

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// hostile characters are replaced rather than dropped so numbering stays stable
const hostile = `/\?%*:|"<>`

// FallbackName is used when nothing printable survives
const FallbackName = "file"

var namePool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFC,
			runes.Remove(runes.In(unicode.Cc)),
			runes.Remove(runes.In(unicode.Cf)),
		)
	},
}

// FileName returns a single path element safe to create inside a staging directory
func FileName(s string) string {
	s = strings.ToValidUTF8(s, "")

	tr := namePool.Get().(transform.Transformer)
	ns, _, _ := transform.String(tr, s)
	tr.Reset()
	namePool.Put(tr)

	ns = strings.Map(func(r rune) rune {
		if strings.ContainsRune(hostile, r) {
			return '_'
		}
		return r
	}, ns)

	ns = strings.TrimSpace(ns)
	if ns == "" || ns == "." || ns == ".." {
		return FallbackName
	}
	return ns
}

// Text drops invalid UTF-8, NUL, DEL, and C0/C1 controls except '\n', '\r' and '\t'
func Text(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == utf8.RuneError:
			return -1
		case r == '\n' || r == '\r' || r == '\t':
			return r
		case r < 0x20 || r == 0x7F || (r >= 0x80 && r <= 0x9F):
			return -1
		}
		return r
	}, s)
}

// HasText reports whether s contains any non-whitespace rune
func HasText(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return !unicode.IsSpace(r) }) >= 0
}

// Truncate returns at most max runes of s; max <= 0 leaves s unchanged
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}
