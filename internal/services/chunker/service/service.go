// Package service delivers published jobs to the chat collaborator in size-bounded chunks
package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"mediarelay/internal/adapters/fswatch"
	"mediarelay/internal/core/exchange"
	perr "mediarelay/internal/platform/errors"
	"mediarelay/internal/platform/logger"
	"mediarelay/internal/platform/metrics"
	pstrings "mediarelay/internal/platform/strings"

	"mediarelay/internal/services/chunker/domain"

	"github.com/dustin/go-humanize"
)

// Config holds chunker limits and timings
type Config struct {
	Poll  time.Duration
	Grace time.Duration

	MaxItems   int
	MaxBytes   int64
	MaxCaption int
	MediaExt   []string
}

// Defaults match the delivery collaborator's attachment limits
const (
	DefaultMaxItems         = 10
	DefaultMaxBytes   int64 = 200 << 20
	DefaultMaxCaption       = 2000
)

// Service implements domain.ChunkerPort
type Service struct {
	layout exchange.Layout
	out    domain.Delivery
	cfg    Config
	log    logger.Logger
	now    func() time.Time

	mu   sync.Mutex
	seen map[string]time.Time
	sent map[string]bool // delivered but could not be moved out of the outgoing root
}

// New constructs the chunker over layout.Outgoing
func New(layout exchange.Layout, out domain.Delivery, cfg Config) *Service {
	if cfg.Poll <= 0 {
		cfg.Poll = 5 * time.Second
	}
	if cfg.Grace < 0 {
		cfg.Grace = 0
	}
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = DefaultMaxItems
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if cfg.MaxCaption <= 0 {
		cfg.MaxCaption = DefaultMaxCaption
	}
	if len(cfg.MediaExt) == 0 {
		cfg.MediaExt = exchange.MediaExtensions
	}
	return &Service{
		layout: layout,
		out:    out,
		cfg:    cfg,
		log:    *logger.Named("chunker"),
		now:    time.Now,
		seen:   map[string]time.Time{},
		sent:   map[string]bool{},
	}
}

// Run sweeps the outgoing root every Poll and whenever it changes, until ctx is done
func (s *Service) Run(ctx context.Context) error {
	var changed <-chan struct{}
	w, err := fswatch.New(s.layout.Outgoing)
	if err != nil {
		s.log.Warn().Err(err).Msg("outgoing watch unavailable, polling only")
	} else {
		defer w.Close()
		changed = w.Changed()
	}

	s.log.Info().Str("dir", s.layout.Outgoing).Dur("poll", s.cfg.Poll).Msg("chunker started")
	t := time.NewTicker(s.cfg.Poll)
	defer t.Stop()
	for {
		s.Sweep(ctx)
		select {
		case <-ctx.Done():
			s.log.Info().Msg("chunker stopped")
			return nil
		case <-t.C:
		case _, ok := <-changed:
			if !ok {
				changed = nil
			}
		}
	}
}

// Sweep delivers every job folder that has been visible for at least Grace, in name order.
// It returns how many folders were completed
func (s *Service) Sweep(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	ents, err := os.ReadDir(s.layout.Outgoing)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Error().Err(err).Msg("read outgoing root")
		}
		return 0
	}
	now := s.now()
	present := make(map[string]bool, len(ents))
	done := 0
	for _, e := range ents {
		if !e.IsDir() {
			continue
		}
		name := e.Name()
		present[name] = true
		if s.sent[name] {
			continue
		}
		first, ok := s.seen[name]
		if !ok {
			s.seen[name] = now
			first = now
		}
		if now.Sub(first) < s.cfg.Grace {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		if err := s.Deliver(ctx, name); err != nil {
			if ctx.Err() == nil {
				s.log.Error().Err(err).Str("job", name).Msg("delivery failed, folder kept for retry")
			}
			continue
		}
		delete(s.seen, name)
		done++
	}
	for name := range s.seen {
		if !present[name] {
			delete(s.seen, name)
		}
	}
	for name := range s.sent {
		if !present[name] {
			delete(s.sent, name)
		}
	}
	return done
}

// Deliver sends one outgoing job and retires its folder.
// A failed send leaves the folder untouched so the next sweep sends it again
func (s *Service) Deliver(ctx context.Context, name string) error {
	dir := filepath.Join(s.layout.Outgoing, name)
	ctx = logger.WithJob(ctx, name)
	log := logger.C(ctx)

	f, err := Classify(dir, s.cfg.MediaExt)
	if err != nil {
		return err
	}
	// a body-only post still has something to say
	caption := Caption(pstrings.FirstNonBlank(f.Title, f.Body), s.fallbacks(log, f.Fallbacks), s.cfg.MaxCaption)
	chunks, skipped := Plan(f.Media, caption, s.cfg.MaxItems, s.cfg.MaxBytes)
	for _, m := range skipped {
		log.Error().
			Str("file", filepath.Base(m.Path)).
			Str("size", humanize.IBytes(uint64(m.Size))).
			Str("cap", humanize.IBytes(uint64(s.cfg.MaxBytes))).
			Msg("file larger than a whole chunk, not sent")
	}

	for i, c := range chunks {
		kind := "files"
		if len(c.Files) == 0 {
			kind = "text"
			err = s.out.SendText(ctx, c.Caption)
		} else {
			err = s.out.SendFiles(ctx, c.Files, c.Caption)
		}
		if err != nil {
			metrics.Deliveries.WithLabelValues("failed").Inc()
			return perr.WithOp(err, "chunker.send")
		}
		metrics.ChunksSent.WithLabelValues(kind).Inc()
		log.Debug().Int("chunk", i+1).Int("of", len(chunks)).Int("files", len(c.Files)).Msg("chunk sent")
	}

	if len(chunks) == 0 {
		metrics.Deliveries.WithLabelValues("skipped").Inc()
		log.Warn().Msg("job has nothing to deliver")
	} else {
		metrics.Deliveries.WithLabelValues("sent").Inc()
		log.Info().Int("chunks", len(chunks)).Int("media", len(f.Media)-len(skipped)).Msg("job delivered")
	}
	s.retire(log, name, dir)
	return nil
}

// retire moves a sent folder into the delivered root and removes it.
// The move is the completion mark; a folder that cannot be moved or removed is
// remembered so it is not sent twice by this process
func (s *Service) retire(log *logger.Logger, name, dir string) {
	target := filepath.Join(s.layout.Delivered, name)
	if err := os.MkdirAll(s.layout.Delivered, 0o755); err == nil {
		if _, err := os.Lstat(target); err == nil {
			target = filepath.Join(s.layout.Delivered, exchange.NewName(name))
		}
	}
	if err := os.Rename(dir, target); err != nil {
		log.Warn().Err(err).Msg("move to delivered failed, removing in place")
		target = dir
	}
	if err := os.RemoveAll(target); err != nil {
		log.Error().Err(err).Str("path", target).Msg("remove delivered folder failed, left for inspection")
		if target == dir {
			s.sent[name] = true
		}
	}
}

// fallbacks reads fallback records, skipping unreadable ones
func (s *Service) fallbacks(log *logger.Logger, paths []string) []exchange.FallbackRecord {
	out := make([]exchange.FallbackRecord, 0, len(paths))
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			log.Warn().Err(err).Str("file", filepath.Base(p)).Msg("unreadable fallback record")
			continue
		}
		var rec exchange.FallbackRecord
		if err := json.Unmarshal(b, &rec); err != nil || rec.URL == "" {
			log.Warn().Str("file", filepath.Base(p)).Msg("invalid fallback record")
			continue
		}
		out = append(out, rec)
	}
	return out
}
