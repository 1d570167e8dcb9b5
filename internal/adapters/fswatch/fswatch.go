// Package fswatch wraps fsnotify for a single directory.
// It publishes both per-path events and a coalesced "something changed" signal.
// Delivery is best effort: consumers must reconcile with a periodic rescan
package fswatch

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	perr "mediarelay/internal/platform/errors"
	"mediarelay/internal/platform/logger"

	"github.com/fsnotify/fsnotify"
)

// Event is a create or write observed in the watched directory
type Event struct {
	Path  string
	Write bool
}

// Option configures a Watcher
type Option func(*Watcher)

// WithSuffix restricts per-path events to names ending in suffix
func WithSuffix(suffix string) Option {
	return func(w *Watcher) { w.suffix = suffix }
}

// WithBuffer sets the per-path event buffer; overflow is dropped
func WithBuffer(n int) Option {
	return func(w *Watcher) { w.buf = n }
}

// Watcher observes one directory
type Watcher struct {
	dir     string
	suffix  string
	buf     int
	fw      *fsnotify.Watcher
	events  chan Event
	changed chan struct{}
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
	log     logger.Logger
}

// New starts watching dir, creating it if needed
func New(dir string, opts ...Option) (*Watcher, error) {
	w := &Watcher{dir: dir, buf: 64, log: *logger.Named("fswatch")}
	for _, o := range opts {
		o(w)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeIO, "prepare watch dir %s", dir)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeIO, "create watcher")
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, perr.Wrapf(err, perr.ErrorCodeIO, "watch dir %s", dir)
	}
	w.fw = fw
	w.events = make(chan Event, w.buf)
	w.changed = make(chan struct{}, 1)
	w.stop = make(chan struct{})
	w.done = make(chan struct{})
	go w.run()
	return w, nil
}

// Events yields create/write events for matching names; closed after Close
func (w *Watcher) Events() <-chan Event { return w.events }

// Changed yields at most one pending signal per burst of activity; closed after Close
func (w *Watcher) Changed() <-chan struct{} { return w.changed }

// Close stops the watcher and waits for the event loop to exit
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.stop)
		err = w.fw.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	defer close(w.changed)
	defer close(w.events)
	for {
		select {
		case <-w.stop:
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			// an overflow means we lost events; the signal prompts a rescan
			w.log.Warn().Err(err).Str("dir", w.dir).Msg("watch error")
			w.signal()
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	w.signal()
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return
	}
	if w.suffix != "" && !strings.HasSuffix(ev.Name, w.suffix) {
		return
	}
	select {
	case w.events <- Event{Path: filepath.Clean(ev.Name), Write: ev.Has(fsnotify.Write)}:
	default:
		w.log.Debug().Str("path", ev.Name).Msg("event buffer full, dropping")
	}
}

func (w *Watcher) signal() {
	select {
	case w.changed <- struct{}{}:
	default:
	}
}
