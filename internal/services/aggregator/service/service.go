// Package service debounces consecutive chat attachments into one outgoing job
package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"mediarelay/internal/core/exchange"
	"mediarelay/internal/core/normalize"
	perr "mediarelay/internal/platform/errors"
	"mediarelay/internal/platform/logger"
	"mediarelay/internal/platform/metrics"
	pstrings "mediarelay/internal/platform/strings"
	ptime "mediarelay/internal/platform/time"

	"mediarelay/internal/services/aggregator/domain"

	"github.com/google/uuid"
)

// Config holds aggregator timings
type Config struct {
	// Check is how often the cleanup task looks at the active batch
	Check time.Duration
	// Idle is how long a batch must see no new attachment before it is flushed
	Idle time.Duration
	// Drain bounds the final flush on shutdown
	Drain time.Duration
}

type batch struct {
	owner string
	items []domain.FileRef
	last  time.Time
}

// Service implements domain.AggregatorPort.
// State is Empty (active == nil) or Active{owner,batch}; a batch displaced by another
// user moves to pending in the same critical section and is flushed on the next tick
type Service struct {
	layout exchange.Layout
	dl     domain.Downloader
	cfg    Config
	log    logger.Logger
	now    func() time.Time

	mu      sync.Mutex
	active  *batch
	pending []*batch
}

// New constructs the aggregator
func New(layout exchange.Layout, dl domain.Downloader, cfg Config) *Service {
	if cfg.Check <= 0 {
		cfg.Check = time.Second
	}
	if cfg.Idle <= 0 {
		cfg.Idle = 3 * time.Second
	}
	if cfg.Drain <= 0 {
		cfg.Drain = 10 * time.Second
	}
	return &Service{
		layout: layout,
		dl:     dl,
		cfg:    cfg,
		log:    *logger.Named("aggregator"),
		now:    time.Now,
	}
}

// OnAttachment appends ref to user's active batch, or starts a new batch for user
func (s *Service) OnAttachment(user string, ref domain.FileRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if s.active != nil && s.active.owner == user {
		s.active.items = append(s.active.items, ref)
		s.active.last = now
		return
	}
	if s.active != nil {
		s.log.Debug().Str("owner", s.active.owner).Int("items", len(s.active.items)).Msg("batch superseded")
		s.pending = append(s.pending, s.active)
	}
	s.active = &batch{owner: user, items: []domain.FileRef{ref}, last: now}
}

// Pending returns the number of buffered attachments not yet flushed
func (s *Service) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.pending {
		n += len(b.items)
	}
	if s.active != nil {
		n += len(s.active.items)
	}
	return n
}

// Run flushes idle batches every Check until ctx is done, then drains whatever is buffered
func (s *Service) Run(ctx context.Context) error {
	s.log.Info().Dur("idle", s.cfg.Idle).Msg("aggregator started")
	t := time.NewTicker(s.cfg.Check)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			s.drain(ctx)
			s.log.Info().Msg("aggregator stopped")
			return nil
		case <-t.C:
			for _, b := range s.due(s.now()) {
				s.flush(ctx, b)
			}
		}
	}
}

// due takes every displaced batch plus the active one when it has been idle long enough
func (s *Service) due(now time.Time) []*batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.pending
	s.pending = nil
	if s.active != nil && now.Sub(s.active.last) >= s.cfg.Idle {
		out = append(out, s.active)
		s.active = nil
	}
	return out
}

func (s *Service) takeAll() []*batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.pending
	if s.active != nil {
		out = append(out, s.active)
	}
	s.pending, s.active = nil, nil
	return out
}

// requeue puts an interrupted remainder at the head of pending for the drain
func (s *Service) requeue(b *batch) {
	s.mu.Lock()
	s.pending = append([]*batch{b}, s.pending...)
	s.mu.Unlock()
}

func (s *Service) drain(parent context.Context) {
	all := s.takeAll()
	if len(all) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), s.cfg.Drain)
	defer cancel()
	s.log.Info().Int("batches", len(all)).Msg("draining buffered batches")
	for _, b := range all {
		if ctx.Err() != nil {
			s.log.Warn().Str("owner", b.owner).Int("items", len(b.items)).Msg("drain timed out, batch dropped")
			continue
		}
		s.flush(ctx, b)
	}
	if n := s.Pending(); n > 0 {
		s.log.Warn().Int("items", n).Msg("drain timed out, attachments dropped")
	}
}

// flush downloads b's items in arrival order into a fresh staging job and publishes it
func (s *Service) flush(ctx context.Context, b *batch) {
	name := JobName(b.owner, s.now())
	ctx = logger.WithJob(ctx, name)
	log := logger.C(ctx)

	job, err := s.layout.Stage(name)
	if err != nil {
		log.Error().Err(err).Msg("create staging dir")
		return
	}
	ok := 0
	for i, ref := range b.items {
		if ctx.Err() != nil {
			log.Warn().Int("remaining", len(b.items)-i).Msg("flush interrupted, requeued")
			s.requeue(&batch{owner: b.owner, items: b.items[i:], last: b.last})
			break
		}
		if err := s.save(ctx, job, i+1, ref); err != nil {
			if ctx.Err() != nil {
				log.Warn().Err(err).Int("remaining", len(b.items)-i).Msg("flush interrupted mid-download, requeued")
				s.requeue(&batch{owner: b.owner, items: b.items[i:], last: b.last})
				break
			}
			log.Warn().Err(err).Str("file_id", ref.ID).Msg("attachment download failed, skipping")
			continue
		}
		ok++
	}
	if ok == 0 {
		log.Warn().Int("items", len(b.items)).Msg("no attachment downloaded, nothing published")
		if err := job.Discard(); err != nil {
			log.Error().Err(err).Msg("discard staging dir")
		}
		return
	}
	out, err := job.Publish()
	if err != nil {
		log.Error().Err(err).Msg("publish batch")
		return
	}
	metrics.Published.WithLabelValues("aggregator").Inc()
	metrics.BatchItems.Observe(float64(ok))
	log.Info().Str("owner", b.owner).Int("items", ok).Str("path", out).Msg("batch published")
}

// save downloads ref and renames it to its arrival-ordered name
func (s *Service) save(ctx context.Context, job *exchange.Job, seq int, ref domain.FileRef) error {
	p, err := s.dl.Download(ctx, ref, job.Dir)
	if err != nil {
		return err
	}
	final := job.Path(fmt.Sprintf("%03d_%s", seq, normalize.FileName(filepath.Base(p))))
	if err := os.Rename(p, final); err != nil {
		_ = os.Remove(p)
		return perr.Wrapf(err, perr.ErrorCodeIO, "rename %s", filepath.Base(p))
	}
	return nil
}

// JobName returns tg_<owner>_<UTC stamp>_<short id>
func JobName(owner string, at time.Time) string {
	return fmt.Sprintf("tg_%s_%s_%s",
		pstrings.FirstNonBlank(pstrings.Slug(owner), "anon"),
		ptime.Stamp(at),
		uuid.NewString()[:8],
	)
}
