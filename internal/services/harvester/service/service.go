// Package service polls tracked sources for new posts and feeds them to the fetcher
package service

import (
	"context"
	"slices"
	"sync"
	"time"

	"mediarelay/internal/core/postref"
	perr "mediarelay/internal/platform/errors"
	"mediarelay/internal/platform/logger"
	"mediarelay/internal/platform/metrics"

	"mediarelay/internal/services/harvester/domain"
	"mediarelay/internal/services/harvester/repo"
)

// Config holds harvester tuning
type Config struct {
	Interval time.Duration

	// FirstRunWindow bounds how many recent posts a source without a cursor ingests
	FirstRunWindow int

	// FillNames looks up author_name from the profile endpoint when it is empty
	FillNames bool
}

// Service implements domain.HarvesterPort
type Service struct {
	list  domain.Lister
	fetch domain.Fetcher
	store domain.CursorStore
	cfg   Config
	log   logger.Logger
	now   func() time.Time

	sweepMu sync.Mutex // one sweep at a time

	mu      sync.Mutex
	cursors []domain.Cursor
	loaded  bool
	last    domain.Sweep
	swept   bool
}

// New constructs the harvester; call Load before running it
func New(list domain.Lister, fetch domain.Fetcher, store domain.CursorStore, cfg Config) *Service {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.FirstRunWindow <= 0 {
		cfg.FirstRunWindow = 10
	}
	return &Service{
		list:  list,
		fetch: fetch,
		store: store,
		cfg:   cfg,
		log:   *logger.Named("harvester"),
		now:   time.Now,
	}
}

// Load reads the cursor file once. An error means the harvester must not run
func (s *Service) Load() error {
	cs, err := s.store.Load()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.cursors = cs
	s.loaded = true
	s.mu.Unlock()
	s.log.Info().Int("sources", len(cs)).Msg("cursors loaded")
	return nil
}

// List returns a copy of the tracked cursors
func (s *Service) List() []domain.Cursor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Cursor(nil), s.cursors...)
}

// LastSweep returns the most recent completed sweep
func (s *Service) LastSweep() (domain.Sweep, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.swept
}

// Add tracks a new source and persists the list; an already tracked source is a conflict
func (s *Service) Add(c domain.Cursor) error {
	if err := repo.Validate(c); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return perr.Unavailablef("cursors not loaded")
	}
	for _, have := range s.cursors {
		if have.Key() == c.Key() {
			return perr.Conflictf("source %s already tracked", c.Key())
		}
	}
	next := append(append([]domain.Cursor(nil), s.cursors...), c)
	if err := s.store.Save(next); err != nil {
		return err
	}
	s.cursors = next
	return nil
}

// Run sweeps immediately, then every Interval until ctx is done
func (s *Service) Run(ctx context.Context) error {
	s.log.Info().Dur("interval", s.cfg.Interval).Msg("harvester started")
	t := time.NewTimer(0)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("harvester stopped")
			return nil
		case <-t.C:
		}
		if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
			s.log.Error().Err(err).Msg("sweep failed")
		}
		t.Reset(s.cfg.Interval)
	}
}

// RunOnce sweeps every tracked source in order and rewrites the cursor file once.
// A cancelled sweep persists nothing
func (s *Service) RunOnce(ctx context.Context) (domain.Sweep, error) {
	s.sweepMu.Lock()
	defer s.sweepMu.Unlock()

	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return domain.Sweep{}, perr.Unavailablef("cursors not loaded")
	}
	cursors := append([]domain.Cursor(nil), s.cursors...)
	s.mu.Unlock()

	sweep := domain.Sweep{Sources: len(cursors)}
	s.log.Info().Int("sources", len(cursors)).Msg("sweep started")
	for i := range cursors {
		if err := ctx.Err(); err != nil {
			return sweep, err
		}
		n, err := s.harvest(ctx, &cursors[i])
		sweep.NewPosts += n
		if err != nil {
			if ctx.Err() != nil {
				return sweep, ctx.Err()
			}
			sweep.Failed++
			ev := s.log.Error()
			if perr.Retryable(err) {
				ev = s.log.Warn()
			}
			ev.Err(err).Str("source", cursors[i].Key()).Msg("source harvest failed")
		}
	}

	if err := s.store.Save(s.merge(cursors)); err != nil {
		return sweep, err
	}
	sweep.At = s.now().UTC()
	s.mu.Lock()
	s.last, s.swept = sweep, true
	s.mu.Unlock()
	metrics.HarvestSweeps.Inc()
	s.log.Info().Int("new_posts", sweep.NewPosts).Int("failed", sweep.Failed).Msg("sweep complete")
	return sweep, nil
}

// merge applies swept cursor progress onto the live list, keeping sources added mid-sweep
func (s *Service) merge(swept []domain.Cursor) []domain.Cursor {
	byKey := make(map[string]domain.Cursor, len(swept))
	for _, c := range swept {
		byKey[c.Key()] = c
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.cursors {
		if u, ok := byKey[c.Key()]; ok {
			s.cursors[i] = u
		}
	}
	return append([]domain.Cursor(nil), s.cursors...)
}

// harvest ingests the new posts of one source oldest first and advances c
func (s *Service) harvest(ctx context.Context, c *domain.Cursor) (int, error) {
	log := s.log.With().Str("source", c.Key()).Logger()

	if s.cfg.FillNames && c.AuthorName == "" {
		if prof, err := s.list.Profile(ctx, c.Domain, c.Platform, c.UserID); err != nil {
			log.Warn().Err(err).Msg("author name lookup failed")
		} else {
			c.AuthorName = prof.Name
		}
	}

	posts, err := s.list.Recent(ctx, c.Domain, c.Platform, c.UserID)
	if err != nil {
		return 0, err
	}
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	fresh := NewPosts(ids, c.LastIngested, s.cfg.FirstRunWindow)
	log.Debug().Int("listed", len(ids)).Int("new", len(fresh)).Msg("source listed")
	if len(fresh) == 0 && c.LastIngested != "" && len(ids) > 0 && !slices.Contains(ids, c.LastIngested) {
		log.Warn().Str("last_ingested", c.LastIngested).Msg("cursor no longer in listing, nothing ingested")
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	for i := len(fresh) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return len(fresh) - 1 - i, err
		}
		ref := postref.Ref{Domain: c.Domain, Service: c.Platform, UserID: c.UserID, PostID: fresh[i]}
		if _, err := s.fetch.Fetch(ctx, ref); err != nil {
			log.Warn().Err(err).Str("post", ref.PostID).Msg("post fetch failed")
		}
		metrics.HarvestPosts.Inc()
	}
	c.LastIngested = fresh[0]
	return len(fresh), nil
}

// NewPosts returns the newest-first prefix of ids that precedes last.
// Without a cursor only the first window ids are taken. When last has scrolled out of
// the listing nothing is returned and the cursor stays where it is
func NewPosts(ids []string, last string, window int) []string {
	if last == "" {
		return ids[:min(window, len(ids))]
	}
	for i, id := range ids {
		if id == last {
			return ids[:i]
		}
	}
	return nil
}
