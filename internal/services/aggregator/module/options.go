package module

import (
	"time"

	"mediarelay/internal/platform/config"
)

// Options holds configuration for the attachment aggregator
type Options struct {
	Check time.Duration
	Idle  time.Duration
	Drain time.Duration
}

// FromConfig reads the aggregator options with the RELAY_AGG_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("RELAY_AGG_")
	return Options{
		Check: c.MayDuration("CHECK", time.Second),
		Idle:  c.MayDuration("IDLE", 3*time.Second),
		Drain: c.MayDuration("DRAIN", 10*time.Second),
	}
}
