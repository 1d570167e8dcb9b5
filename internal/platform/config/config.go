// Package config reads service settings from environment variables.
//
// Binaries load an optional .env first (godotenv), then hand each component a prefixed
// view such as RELAY_CHUNK_. May* getters fall back to their default and log a warning when
// a value is set but unparsable; Must* getters panic, since a missing token or channel is a
// deployment error and the process cannot do anything useful without it.
package config

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"mediarelay/internal/platform/config/raw"
	"mediarelay/internal/platform/logger"

	"github.com/dustin/go-humanize"
)

// Conf is a prefixed view over the environment
type Conf struct{ env raw.Conf }

// New returns the unprefixed view
func New() Conf { return Conf{env: raw.New()} }

// Prefix returns a view whose keys are prefixed with p as well
func (c Conf) Prefix(p string) Conf { return Conf{env: c.env.Prefix(p)} }

func (c Conf) key(k string) string { return c.env.Key(k) }

// MustString returns the value of key or panics when it is unset or blank
func (c Conf) MustString(key string) string {
	v := c.env.Get(key, "")
	if v == "" {
		logger.Get().Panic().Str("key", c.key(key)).Msg("missing required env")
	}
	return v
}

// MayString returns the value of key, or def when unset or blank
func (c Conf) MayString(key, def string) string { return c.env.Get(key, def) }

// may parses key with parse and keeps def when the value is missing or rejected
func may[T any](c Conf, key string, def T, parse func(string) (T, bool)) T {
	s := c.env.Get(key, "")
	if s == "" {
		return def
	}
	if v, ok := parse(s); ok {
		return v
	}
	logger.Get().Warn().
		Str("key", c.key(key)).
		Str("value", s).
		Interface("default", def).
		Msg("unparsable env value, using default")
	return def
}

func (c Conf) MayInt(key string, def int) int {
	return may(c, key, def, func(s string) (int, bool) {
		v, err := strconv.Atoi(s)
		return v, err == nil
	})
}

func (c Conf) MayBool(key string, def bool) bool {
	return may(c, key, def, func(s string) (bool, bool) {
		v, err := strconv.ParseBool(s)
		return v, err == nil
	})
}

// MayDuration accepts time.ParseDuration syntax; zero and negative durations are rejected
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	return may(c, key, def, func(s string) (time.Duration, bool) {
		d, err := time.ParseDuration(s)
		return d, err == nil && d > 0
	})
}

// MayBytes accepts humanized sizes ("50MB", "200MiB") or a bare byte count
func (c Conf) MayBytes(key string, def int64) int64 {
	return may(c, key, def, func(s string) (int64, bool) {
		n, err := humanize.ParseBytes(s)
		return int64(n), err == nil && n > 0
	})
}

// MayPath returns a cleaned path
func (c Conf) MayPath(key, def string) string { return filepath.Clean(c.MayString(key, def)) }

// MayAddr returns a listen address; a bare port such as "4000" becomes ":4000"
func (c Conf) MayAddr(key, def string) string {
	v := c.MayString(key, def)
	if _, err := strconv.Atoi(v); err == nil {
		return ":" + v
	}
	return v
}

// MayCSV splits a comma-separated list, dropping blank entries
func (c Conf) MayCSV(key string, def []string) []string {
	return may(c, key, def, func(s string) ([]string, bool) {
		var out []string
		for part := range strings.SplitSeq(s, ",") {
			if v := strings.TrimSpace(part); v != "" {
				out = append(out, v)
			}
		}
		return out, len(out) > 0
	})
}
