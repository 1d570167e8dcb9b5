// Package domain defines the attachment aggregator contracts
package domain

import "context"

// FileRef identifies one chat attachment on the chat platform
type FileRef struct {
	// ID is the platform's stable file identifier
	ID string
	// Name is an optional original file name hint
	Name string
}

// Downloader saves one attachment into dir and returns the written path
type Downloader interface {
	Download(ctx context.Context, ref FileRef, dir string) (string, error)
}

// AggregatorPort buffers attachments per user and flushes idle batches
type AggregatorPort interface {
	OnAttachment(user string, ref FileRef)
	Run(ctx context.Context) error
	Pending() int
}
