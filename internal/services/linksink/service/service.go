// Package service writes link sentinels into the incoming links directory
package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"mediarelay/internal/core/exchange"
	"mediarelay/internal/core/postref"
	perr "mediarelay/internal/platform/errors"
	"mediarelay/internal/platform/logger"
	"mediarelay/internal/platform/metrics"
	pstrings "mediarelay/internal/platform/strings"

	"github.com/google/uuid"
)

// SentinelExt is the extension the link watcher consumes
const SentinelExt = ".txt"

// Service is the link sink
type Service struct {
	dir   string
	now   func() time.Time
	token func() string
}

// New returns a sink writing into dir
func New(dir string) *Service {
	return &Service{dir: dir, now: time.Now, token: uuid.NewString}
}

// Dir returns the links directory
func (s *Service) Dir() string { return s.dir }

// Submit writes {unix}_{source}_{uuid}.txt containing url.
// The file appears under its final name in one rename so the watcher never reads a partial URL
func (s *Service) Submit(ctx context.Context, url, source string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	url = strings.TrimSpace(url)
	if url == "" {
		return "", perr.WithField(perr.InvalidArgf("empty url"), "url")
	}
	src := pstrings.FirstNonBlank(pstrings.Slug(source), "unknown")
	name := fmt.Sprintf("%d_%s_%s%s", s.now().Unix(), src, s.token(), SentinelExt)
	path := filepath.Join(s.dir, name)

	if err := exchange.WriteFileAtomic(path, []byte(url)); err != nil {
		return "", err
	}
	metrics.SentinelsWritten.WithLabelValues(src).Inc()
	logger.C(ctx).Debug().Str("sentinel", name).Str("url", url).Msg("link submitted")
	return path, nil
}

// SubmitText extracts post URLs from text and submits each in order.
// Every match is attempted; failures are joined
func (s *Service) SubmitText(ctx context.Context, text, source string) ([]string, error) {
	urls := postref.Extract(text)
	if len(urls) == 0 {
		return nil, nil
	}
	var (
		paths []string
		errs  []error
	)
	for _, u := range urls {
		p, err := s.Submit(ctx, u, source)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		paths = append(paths, p)
	}
	return paths, errors.Join(errs...)
}
