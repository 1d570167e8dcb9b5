package module

import (
	"time"

	"mediarelay/internal/platform/config"
)

// Options holds configuration for the periodic harvester
type Options struct {
	Enabled        bool
	CursorFile     string
	Interval       time.Duration
	FirstRunWindow int
	FillNames      bool
}

// FromConfig reads the harvester options with the RELAY_HARVEST_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("RELAY_HARVEST_")
	return Options{
		Enabled:        c.MayBool("ENABLED", true),
		CursorFile:     c.MayPath("CURSORS", "kc/kc-artists.json"),
		Interval:       c.MayDuration("INTERVAL", time.Hour),
		FirstRunWindow: c.MayInt("FIRST_RUN_WINDOW", 10),
		FillNames:      c.MayBool("FILL_NAMES", true),
	}
}
