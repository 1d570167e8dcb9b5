package module

import (
	"time"

	"mediarelay/internal/adapters/ingest/kemono"
	"mediarelay/internal/platform/config"

	"mediarelay/internal/services/fetcher/service"
)

// Options holds configuration for the content fetcher
type Options struct {
	APIBaseURL   string
	UserAgent    string
	Timeout      time.Duration
	MaxFileSize  int64
	AllowedExt   []string
	FetchProfile bool
}

// FromConfig reads the fetcher options with the RELAY_FETCH_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("RELAY_FETCH_")
	return Options{
		APIBaseURL:   c.MayString("API_BASE_URL", ""),
		UserAgent:    c.MayString("USER_AGENT", "mediarelay"),
		Timeout:      c.MayDuration("TIMEOUT", 30*time.Second),
		MaxFileSize:  c.MayBytes("MAX_FILE_SIZE", service.DefaultMaxFileSize),
		AllowedExt:   c.MayCSV("ALLOWED_EXT", service.DefaultAllowedExt),
		FetchProfile: c.MayBool("PROFILE", true),
	}
}

// Client builds the content API client these options describe
func (o Options) Client() *kemono.Client {
	return kemono.NewClient(kemono.Options{
		BaseURL:   o.APIBaseURL,
		UserAgent: o.UserAgent,
		Timeout:   o.Timeout,
	})
}
