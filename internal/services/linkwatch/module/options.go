package module

import (
	"time"

	"mediarelay/internal/platform/config"
)

// Options holds configuration for the link watcher
type Options struct {
	ReadDelay time.Duration
	Rescan    time.Duration
	Workers   int
}

// FromConfig reads the watcher options with the RELAY_WATCH_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("RELAY_WATCH_")
	return Options{
		ReadDelay: c.MayDuration("READ_DELAY", 100*time.Millisecond),
		Rescan:    c.MayDuration("RESCAN", 30*time.Second),
		Workers:   c.MayInt("WORKERS", 2),
	}
}
