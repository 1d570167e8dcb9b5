package exchange

import (
	"path/filepath"
	"slices"
	"strings"
)

// Sidecar file names written next to media in a job
const (
	TitleFile      = "title.txt"
	BodyFile       = "post.txt"
	ArtistNameFile = "artist_name.txt"
	ArtistURLFile  = "artist_url.txt"
	PostURLFile    = "post_url.txt"

	// FallbackSuffix marks a UrlFallbackRecord standing in for an oversized file
	FallbackSuffix = ".url.json"
)

// MediaExtensions is the set the courier can deliver as attachments
var MediaExtensions = []string{"jpg", "jpeg", "png", "mp4", "mov", "gif", "webp"}

// HasExt reports whether name's extension, without dot and case-folded, is in exts
func HasExt(name string, exts []string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	return ext != "" && slices.Contains(exts, ext)
}

// FallbackRecord is written instead of downloading a file over the size ceiling
type FallbackRecord struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// IsFallback reports whether name is a fallback record
func IsFallback(name string) bool { return strings.HasSuffix(name, FallbackSuffix) }

// IsSidecar reports whether name is text metadata rather than media
func IsSidecar(name string) bool {
	return strings.HasSuffix(name, ".txt") || strings.HasSuffix(name, ".json")
}
