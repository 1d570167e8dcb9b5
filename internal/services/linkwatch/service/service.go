// Package service consumes link sentinels: validate, hand to the fetcher, delete.
// A sentinel is deleted whatever the fetch outcome; failed fetches are not retried here
package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"mediarelay/internal/adapters/fswatch"
	"mediarelay/internal/core/exchange"
	"mediarelay/internal/core/postref"
	perr "mediarelay/internal/platform/errors"
	"mediarelay/internal/platform/logger"
	"mediarelay/internal/platform/metrics"

	"mediarelay/internal/services/linkwatch/domain"
)

// SentinelExt is the only extension the watcher consumes
const SentinelExt = ".txt"

// Config holds watcher tuning
type Config struct {
	Dir       string
	ReadDelay time.Duration // wait before reading a file reported by an event
	Rescan    time.Duration // periodic reconciliation for missed events
	Workers   int           // concurrent sentinels
}

// Service implements domain.WatcherPort
type Service struct {
	cfg   Config
	fetch domain.Fetcher
	state atomic.Int32
	log   logger.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
	sem      chan struct{}
	wg       sync.WaitGroup
}

// New constructs the watcher
func New(fetch domain.Fetcher, cfg Config) *Service {
	if cfg.ReadDelay < 0 {
		cfg.ReadDelay = 0
	}
	if cfg.Rescan <= 0 {
		cfg.Rescan = 30 * time.Second
	}
	cfg.Workers = max(cfg.Workers, 1)
	return &Service{
		cfg:      cfg,
		fetch:    fetch,
		log:      *logger.Named("linkwatch"),
		inflight: map[string]struct{}{},
		sem:      make(chan struct{}, cfg.Workers),
	}
}

// State reports the lifecycle state
func (s *Service) State() domain.State { return domain.State(s.state.Load()) }

func (s *Service) setState(st domain.State) {
	s.state.Store(int32(st))
	s.log.Debug().Stringer("state", st).Msg("link watcher state")
}

// Run scans existing sentinels, then follows directory events until ctx is done.
// In-flight sentinels finish (or observe cancellation) before Run returns
func (s *Service) Run(ctx context.Context) error {
	w, err := fswatch.New(s.cfg.Dir, fswatch.WithSuffix(SentinelExt))
	if err != nil {
		return err
	}
	defer func() {
		_ = w.Close()
		s.wg.Wait()
		s.setState(domain.StateIdle)
	}()

	s.setState(domain.StateScanning)
	s.scan(ctx, 0)
	s.setState(domain.StateWatching)
	s.log.Info().Str("dir", s.cfg.Dir).Msg("watching for link sentinels")

	tick := time.NewTicker(s.cfg.Rescan)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events():
			if !ok {
				return perr.Unavailablef("watcher for %s closed", s.cfg.Dir)
			}
			s.dispatch(ctx, ev.Path, s.cfg.ReadDelay)
		case <-tick.C:
			s.scan(ctx, 0)
		}
	}
}

// scan dispatches every sentinel currently in the directory
func (s *Service) scan(ctx context.Context, delay time.Duration) {
	ents, err := os.ReadDir(s.cfg.Dir)
	if err != nil {
		s.log.Error().Err(err).Str("dir", s.cfg.Dir).Msg("scan failed")
		return
	}
	for _, e := range ents {
		if ctx.Err() != nil {
			return
		}
		if !e.Type().IsRegular() || !isSentinel(e.Name()) {
			continue
		}
		s.dispatch(ctx, filepath.Join(s.cfg.Dir, e.Name()), delay)
	}
}

func isSentinel(name string) bool {
	return strings.HasSuffix(name, SentinelExt) && !exchange.IsPartial(name)
}

// dispatch runs Process in a worker unless the same path is already in flight
func (s *Service) dispatch(ctx context.Context, path string, delay time.Duration) {
	if !isSentinel(filepath.Base(path)) {
		return
	}
	s.mu.Lock()
	if _, busy := s.inflight[path]; busy {
		s.mu.Unlock()
		return
	}
	s.inflight[path] = struct{}{}
	s.mu.Unlock()

	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		s.release(path)
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() { <-s.sem }()
		defer s.release(path)
		if delay > 0 && !sleepCtx(ctx, delay) {
			return
		}
		s.Process(ctx, path)
	}()
}

func (s *Service) release(path string) {
	s.mu.Lock()
	delete(s.inflight, path)
	s.mu.Unlock()
}

// Process handles one sentinel and reports what happened.
// Cancellation before the fetch starts or during it leaves the sentinel for the next start
func (s *Service) Process(ctx context.Context, path string) domain.Outcome {
	log := s.log.With().Str("sentinel", filepath.Base(path)).Logger()

	out := s.process(ctx, path, &log)
	if out != domain.OutcomeGone && out != domain.OutcomeDeferred {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Error().Err(err).Msg("sentinel delete failed")
		}
	}
	metrics.Sentinels.WithLabelValues(string(out)).Inc()
	return out
}

func (s *Service) process(ctx context.Context, path string, log *logger.Logger) domain.Outcome {
	if ctx.Err() != nil {
		return domain.OutcomeDeferred
	}
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return domain.OutcomeGone
	}
	if err != nil {
		log.Error().Err(err).Msg("sentinel unreadable")
		return domain.OutcomeFailed
	}

	url := strings.TrimSpace(string(b))
	if url == "" {
		log.Info().Msg("empty sentinel")
		return domain.OutcomeEmpty
	}
	if !postref.Allowed(url) {
		log.Warn().Str("url", url).Msg("url host not allowed")
		return domain.OutcomeRejected
	}
	ref, err := postref.Parse(url)
	if err != nil {
		log.Warn().Err(err).Str("url", url).Msg("malformed post url")
		return domain.OutcomeMalformed
	}

	published, err := s.fetch.Fetch(ctx, ref)
	switch {
	case err == nil:
		log.Info().Str("url", url).Str("path", published).Msg("link fetched")
		return domain.OutcomeFetched
	case ctx.Err() != nil:
		log.Info().Str("url", url).Msg("fetch interrupted by shutdown, keeping sentinel")
		return domain.OutcomeDeferred
	default:
		log.Error().Err(err).Str("url", url).Msg("fetch failed")
		return domain.OutcomeFailed
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
