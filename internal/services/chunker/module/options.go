package module

import (
	"time"

	"mediarelay/internal/core/exchange"
	"mediarelay/internal/platform/config"

	"mediarelay/internal/services/chunker/service"
)

// Options holds configuration for the delivery chunker
type Options struct {
	Poll       time.Duration
	Grace      time.Duration
	MaxItems   int
	MaxBytes   int64
	MaxCaption int
	MediaExt   []string
}

// FromConfig reads the chunker options with the RELAY_CHUNK_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("RELAY_CHUNK_")
	return Options{
		Poll:       c.MayDuration("POLL", 5*time.Second),
		Grace:      c.MayDuration("GRACE", 5*time.Second),
		MaxItems:   c.MayInt("MAX_ITEMS", service.DefaultMaxItems),
		MaxBytes:   c.MayBytes("MAX_BYTES", service.DefaultMaxBytes),
		MaxCaption: c.MayInt("MAX_CAPTION", service.DefaultMaxCaption),
		MediaExt:   c.MayCSV("MEDIA_EXT", exchange.MediaExtensions),
	}
}
