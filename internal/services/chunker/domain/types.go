// Package domain defines the delivery chunker contracts
package domain

import "context"

// Delivery is the chat collaborator that finally receives a job
type Delivery interface {
	// SendFiles posts files as one message; caption may be empty
	SendFiles(ctx context.Context, files []string, caption string) error
	// SendText posts a text-only message
	SendText(ctx context.Context, text string) error
}

// Chunk is one outgoing message: ordered media paths plus an optional caption
type Chunk struct {
	Files   []string
	Caption string
}

// Folder is a classified outgoing job
type Folder struct {
	Name      string
	Dir       string
	Media     []Media
	Title     string
	// Body is the post text; it stands in for the title when a job has none
	Body      string
	Fallbacks []string
}

// Media is a deliverable file with its size on disk
type Media struct {
	Path string
	Size int64
}

// ChunkerPort drains the outgoing root into the delivery collaborator
type ChunkerPort interface {
	Run(ctx context.Context) error
	Sweep(ctx context.Context) int
}
