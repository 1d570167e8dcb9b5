// Package shutdown runs a binary's long-lived loops and bounds how long they may take to stop
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	perr "mediarelay/internal/platform/errors"
	"mediarelay/internal/platform/logger"

	"golang.org/x/sync/errgroup"
)

// DefaultGrace bounds the drain after a stop signal
const DefaultGrace = 15 * time.Second

// ErrGraceExceeded is returned when tasks are still running after the grace period
var ErrGraceExceeded = perr.New(perr.ErrorCodeUnavailable, "shutdown grace period exceeded")

// Task is one named loop; Run must return once ctx is done
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Options configures Run
type Options struct {
	Grace time.Duration
}

// notifyContext is a seam for tests
var notifyContext = signal.NotifyContext

// Run starts every task and blocks until all return.
// SIGINT, SIGTERM, parent cancellation or the first failing task cancel the shared context.
// Once cancelled, tasks get opt.Grace to finish before ErrGraceExceeded is returned
func Run(parent context.Context, opt Options, tasks ...Task) error {
	if opt.Grace <= 0 {
		opt.Grace = DefaultGrace
	}
	log := logger.Named("shutdown")

	sigCtx, stop := notifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(sigCtx)
	for _, t := range tasks {
		g.Go(func() error {
			log.Debug().Str("task", t.Name).Msg("task started")
			err := t.Run(gctx)
			if err != nil && !perr.Is(err, context.Canceled) {
				log.Error().Err(err).Str("task", t.Name).Msg("task failed")
				return perr.WithOp(err, t.Name)
			}
			log.Debug().Str("task", t.Name).Msg("task stopped")
			return nil
		})
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case err := <-done:
		return err
	case <-gctx.Done():
	}

	log.Info().Dur("grace", opt.Grace).Msg("shutdown requested, draining")
	timer := time.NewTimer(opt.Grace)
	defer timer.Stop()
	select {
	case err := <-done:
		log.Info().Msg("shutdown complete")
		return err
	case <-timer.C:
		log.Error().Dur("grace", opt.Grace).Msg("tasks still running after grace period")
		return ErrGraceExceeded
	}
}

// ExitCode maps Run's result to a process exit status
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
