package domain

import (
	"context"

	"mediarelay/internal/adapters/ingest/kemono"
	"mediarelay/internal/core/postref"
)

// HarvesterPort is exposed to the ops API and relayctl
type HarvesterPort interface {
	RunOnce(ctx context.Context) (Sweep, error)
	Run(ctx context.Context) error
	List() []Cursor
	Add(c Cursor) error
	LastSweep() (Sweep, bool)
}

// Lister is the remote listing API
type Lister interface {
	Recent(ctx context.Context, domain, service, user string) ([]kemono.PostSummary, error)
	Profile(ctx context.Context, domain, service, user string) (kemono.Profile, error)
}

// Fetcher is the content fetcher
type Fetcher interface {
	Fetch(ctx context.Context, ref postref.Ref) (string, error)
}

// CursorStore persists the cursor list
type CursorStore interface {
	Load() ([]Cursor, error)
	Save(cs []Cursor) error
}
