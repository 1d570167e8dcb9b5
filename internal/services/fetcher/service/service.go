// Package service fetches a remote post into a staging job and publishes it
package service

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"mediarelay/internal/core/exchange"
	"mediarelay/internal/core/normalize"
	"mediarelay/internal/core/postref"
	perr "mediarelay/internal/platform/errors"
	"mediarelay/internal/platform/logger"
	"mediarelay/internal/platform/metrics"

	"mediarelay/internal/adapters/ingest/kemono"
	"mediarelay/internal/services/fetcher/domain"

	"github.com/dustin/go-humanize"
)

// DefaultAllowedExt is the media set the courier can deliver
var DefaultAllowedExt = exchange.MediaExtensions

// DefaultMaxFileSize is the download ceiling; larger files get a fallback record
const DefaultMaxFileSize int64 = 50_000_000

// Config holds fetcher tuning
type Config struct {
	AllowedExt   []string
	MaxFileSize  int64
	FetchProfile bool
}

// Service implements domain.FetcherPort
type Service struct {
	api     domain.ContentAPI
	layout  exchange.Layout
	cfg     Config
	allowed map[string]struct{}
	locks   keyLocks
}

// New constructs the fetcher
func New(api domain.ContentAPI, layout exchange.Layout, cfg Config) *Service {
	if len(cfg.AllowedExt) == 0 {
		cfg.AllowedExt = DefaultAllowedExt
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}
	allowed := make(map[string]struct{}, len(cfg.AllowedExt))
	for _, e := range cfg.AllowedExt {
		allowed[strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))] = struct{}{}
	}
	return &Service{api: api, layout: layout, cfg: cfg, allowed: allowed}
}

// FetchURL parses url and fetches the post
func (s *Service) FetchURL(ctx context.Context, url string) (string, error) {
	ref, err := postref.Parse(url)
	if err != nil {
		return "", err
	}
	return s.Fetch(ctx, ref)
}

// Fetch stages every listed file of the post, then publishes the job with one rename.
// Metadata failures abort before anything is staged. Per-file failures are logged and skipped.
// The staging name is ref.Key(), so an interrupted fetch of the same post resumes
func (s *Service) Fetch(ctx context.Context, ref postref.Ref) (string, error) {
	key := ref.Key()
	ctx = logger.WithJob(ctx, key)
	log := logger.C(ctx)

	unlock := s.locks.lock(key)
	defer unlock()

	post, err := s.api.Post(ctx, ref)
	if err != nil {
		return "", perr.WithOp(err, "fetch.post")
	}
	files := post.Files()
	if len(files) == 0 && !normalize.HasText(post.Title) && !normalize.HasText(post.Content) {
		return "", perr.NotFoundf("post %s has nothing to publish", ref)
	}

	job, err := s.layout.Stage(key)
	if err != nil {
		return "", err
	}
	s.writeSidecars(ctx, job, ref, post)

	for i, f := range files {
		if err := ctx.Err(); err != nil {
			log.Info().Int("done", i).Int("total", len(files)).Msg("fetch interrupted, staging kept for resume")
			return "", err
		}
		s.stageFile(ctx, job, ref, i+1, f)
	}

	out, err := job.Publish()
	if err != nil {
		log.Error().Err(err).Msg("publish failed")
		return "", err
	}
	metrics.Published.WithLabelValues("fetcher").Inc()
	log.Info().Str("path", out).Int("files", len(files)).Msg("post published")
	return out, nil
}

// writeSidecars stores whatever text metadata is available; none of it is required
func (s *Service) writeSidecars(ctx context.Context, job *exchange.Job, ref postref.Ref, post kemono.Post) {
	log := logger.C(ctx)
	texts := map[string]string{
		exchange.ArtistURLFile: ref.UserURL(),
		exchange.PostURLFile:   ref.PostURL(),
	}
	if t := normalize.Text(post.Title); normalize.HasText(t) {
		texts[exchange.TitleFile] = t
	}
	if c := normalize.Text(post.Content); normalize.HasText(c) {
		texts[exchange.BodyFile] = c
	}
	if s.cfg.FetchProfile && !job.Exists(exchange.ArtistNameFile) {
		prof, err := s.api.Profile(ctx, ref.Domain, ref.Service, ref.UserID)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("artist profile unavailable")
		case normalize.HasText(prof.Name):
			texts[exchange.ArtistNameFile] = normalize.Text(prof.Name)
		}
	}
	for name, text := range texts {
		if err := job.WriteText(name, text); err != nil {
			log.Error().Err(err).Str("file", name).Msg("sidecar write failed")
		}
	}
}

// stageFile downloads one listed file as NNN_<name>, or writes its fallback record
func (s *Service) stageFile(ctx context.Context, job *exchange.Job, ref postref.Ref, seq int, f kemono.FileEntry) {
	log := logger.C(ctx)

	orig := f.Name
	if strings.TrimSpace(orig) == "" {
		orig = path.Base(f.Path)
	}
	name := normalize.FileName(orig)
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if _, ok := s.allowed[ext]; !ok {
		log.Warn().Str("file", orig).Msg("unsupported file type, skipping")
		metrics.FetchFiles.WithLabelValues("skipped_ext").Inc()
		return
	}

	staged := fmt.Sprintf("%03d_%s", seq, name)
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	fallback := fmt.Sprintf("%03d_%s%s", seq, stem, exchange.FallbackSuffix)
	if job.Exists(staged) || job.Exists(fallback) {
		log.Debug().Str("file", staged).Msg("already staged, skipping")
		metrics.FetchFiles.WithLabelValues("resumed").Inc()
		return
	}

	url := s.api.FileURL(ref.Domain, f.Path)
	size, known, err := s.api.Probe(ctx, url)
	if err != nil {
		log.Warn().Err(err).Str("url", url).Msg("probe failed, skipping file")
		metrics.FetchFiles.WithLabelValues("failed").Inc()
		return
	}
	if known && size > s.cfg.MaxFileSize {
		log.Info().Str("file", staged).Str("size", humanize.Bytes(uint64(size))).Msg("file over ceiling, writing link record")
		if err := job.WriteJSON(fallback, exchange.FallbackRecord{URL: url, Name: stem}); err != nil {
			log.Error().Err(err).Str("file", fallback).Msg("fallback write failed")
			metrics.FetchFiles.WithLabelValues("failed").Inc()
			return
		}
		metrics.FetchFiles.WithLabelValues("fallback").Inc()
		return
	}

	body, err := s.api.Open(ctx, url)
	if err != nil {
		log.Warn().Err(err).Str("url", url).Msg("download failed, skipping file")
		metrics.FetchFiles.WithLabelValues("failed").Inc()
		return
	}
	defer func() { _ = body.Close() }()

	n, err := job.Stream(staged, body)
	if err != nil {
		log.Warn().Err(err).Str("url", url).Msg("download interrupted, skipping file")
		metrics.FetchFiles.WithLabelValues("failed").Inc()
		return
	}
	metrics.BytesDownloaded.WithLabelValues("fetcher").Add(float64(n))
	metrics.FetchFiles.WithLabelValues("downloaded").Inc()
	log.Info().Str("file", staged).Str("size", humanize.Bytes(uint64(n))).Msg("file downloaded")
}
