// Package strings provides small string and slice helpers
package strings

import std "strings"

// IfEmpty returns def if in is empty, otherwise returns in
func IfEmpty[T any](in []T, def []T) []T {
	if len(in) == 0 {
		return def
	}
	return in
}

// Blank reports whether s has no non-whitespace content
func Blank(s string) bool { return std.TrimSpace(s) == "" }

// FirstNonBlank returns the first argument with non-whitespace content
func FirstNonBlank(vals ...string) string {
	for _, v := range vals {
		if !Blank(v) {
			return v
		}
	}
	return ""
}

// Ptr returns a pointer to s, or nil if s is empty
func Ptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns "" if ps is nil, else *ps
func Deref(ps *string) string {
	if ps == nil {
		return ""
	}
	return *ps
}

// Slug lowercases s and keeps only [a-z0-9-]; other runs become a single '-'
func Slug(s string) string {
	var b std.Builder
	dash := false
	for _, r := range std.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return std.TrimRight(b.String(), "-")
}
