package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mediarelay/internal/core/exchange"
	"mediarelay/internal/core/normalize"
	perr "mediarelay/internal/platform/errors"

	"mediarelay/internal/services/chunker/domain"
)

// Classify splits a job directory into media, the title and body sidecars and fallback records.
// Entries are taken in name order; partial writes and subdirectories are ignored
func Classify(dir string, mediaExt []string) (domain.Folder, error) {
	f := domain.Folder{Name: filepath.Base(dir), Dir: dir}
	ents, err := os.ReadDir(dir)
	if err != nil {
		return f, perr.Wrapf(err, perr.ErrorCodeIO, "read job %s", f.Name)
	}
	for _, e := range ents {
		name := e.Name()
		if !e.Type().IsRegular() || exchange.IsPartial(name) {
			continue
		}
		p := filepath.Join(dir, name)
		switch {
		case exchange.HasExt(name, mediaExt):
			info, err := e.Info()
			if err != nil {
				return f, perr.Wrapf(err, perr.ErrorCodeIO, "stat %s", name)
			}
			f.Media = append(f.Media, domain.Media{Path: p, Size: info.Size()})
		case exchange.IsFallback(name):
			f.Fallbacks = append(f.Fallbacks, p)
		case strings.EqualFold(name, exchange.TitleFile):
			if f.Title, err = readText(p); err != nil {
				return f, err
			}
		case strings.EqualFold(name, exchange.BodyFile):
			if f.Body, err = readText(p); err != nil {
				return f, err
			}
		}
	}
	return f, nil
}

func readText(p string) (string, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeIO, "read %s", filepath.Base(p))
	}
	return strings.TrimSpace(string(b)), nil
}

// Caption renders the title followed by one numbered line per fallback link, cut to max runes
func Caption(title string, links []exchange.FallbackRecord, max int) string {
	var parts []string
	if normalize.HasText(title) {
		parts = append(parts, title)
	}
	for i, l := range links {
		if l.Name != "" {
			parts = append(parts, fmt.Sprintf("[%2d/%2d] [%s](%s)", i+1, len(links), l.Name, l.URL))
		} else {
			parts = append(parts, fmt.Sprintf("[%2d/%2d] %s", i+1, len(links), l.URL))
		}
	}
	return normalize.Truncate(strings.Join(parts, "\n"), max)
}

// Plan partitions media, in order, into chunks of at most maxItems files and maxBytes bytes.
// A new chunk starts when the running one is full or the next file would overflow it.
// A file larger than maxBytes on its own cannot be sent and is returned in skipped.
// The caption rides on the first chunk; with no sendable media a non-empty caption
// becomes a single text-only chunk
func Plan(media []domain.Media, caption string, maxItems int, maxBytes int64) (chunks []domain.Chunk, skipped []domain.Media) {
	var (
		cur   []string
		total int64
	)
	for _, m := range media {
		if m.Size > maxBytes {
			skipped = append(skipped, m)
			continue
		}
		if len(cur) > 0 && (len(cur) >= maxItems || total+m.Size > maxBytes) {
			chunks = append(chunks, domain.Chunk{Files: cur})
			cur, total = nil, 0
		}
		cur = append(cur, m.Path)
		total += m.Size
	}
	if len(cur) > 0 {
		chunks = append(chunks, domain.Chunk{Files: cur})
	}
	switch {
	case len(chunks) > 0:
		chunks[0].Caption = caption
	case caption != "":
		chunks = []domain.Chunk{{Caption: caption}}
	}
	return chunks, skipped
}
