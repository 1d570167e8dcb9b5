// Package domain declares the content fetcher ports
package domain

import (
	"context"
	"io"

	"mediarelay/internal/adapters/ingest/kemono"
	"mediarelay/internal/core/postref"
)

// FetcherPort is called by the link watcher and the harvester
type FetcherPort interface {
	// Fetch stages and publishes one post, returning the published job path
	Fetch(ctx context.Context, ref postref.Ref) (string, error)

	// FetchURL parses url and fetches it
	FetchURL(ctx context.Context, url string) (string, error)
}

// ContentAPI is the remote content API the fetcher needs
type ContentAPI interface {
	Post(ctx context.Context, ref postref.Ref) (kemono.Post, error)
	Profile(ctx context.Context, domain, service, user string) (kemono.Profile, error)
	FileURL(domain, path string) string
	Probe(ctx context.Context, url string) (size int64, known bool, err error)
	Open(ctx context.Context, url string) (io.ReadCloser, error)
}
