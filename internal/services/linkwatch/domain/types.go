// Package domain holds the link watcher states, outcomes and ports
package domain

import (
	"context"

	"mediarelay/internal/core/postref"
)

// State is the watcher lifecycle
type State int32

// Watcher states
const (
	StateIdle State = iota
	StateScanning
	StateWatching
)

func (s State) String() string {
	switch s {
	case StateScanning:
		return "scanning"
	case StateWatching:
		return "watching"
	default:
		return "idle"
	}
}

// Outcome is what happened to one sentinel
type Outcome string

// Sentinel outcomes, also used as metric labels
const (
	OutcomeFetched   Outcome = "fetched"
	OutcomeFailed    Outcome = "failed"
	OutcomeEmpty     Outcome = "empty"
	OutcomeRejected  Outcome = "rejected"
	OutcomeMalformed Outcome = "malformed"
	OutcomeGone      Outcome = "gone"
	OutcomeDeferred  Outcome = "deferred"
)

// Fetcher is the content fetcher as seen by the watcher
type Fetcher interface {
	Fetch(ctx context.Context, ref postref.Ref) (string, error)
}

// WatcherPort exposes the watcher to the ops API
type WatcherPort interface {
	State() State
	Run(ctx context.Context) error
}
