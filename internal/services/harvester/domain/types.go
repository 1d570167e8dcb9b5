// Package domain holds harvester cursors and ports
package domain

import "time"

// Cursor tracks one remote source and the newest post already ingested from it
type Cursor struct {
	AuthorName   string `json:"author_name,omitempty"`
	Platform     string `json:"platform"                validate:"required"`
	UserID       string `json:"user_id"                 validate:"required"`
	Domain       string `json:"domain"                  validate:"required,posthost"`
	LastIngested string `json:"last_ingested,omitempty"`
}

// Key identifies the source a cursor tracks
func (c Cursor) Key() string { return c.Domain + "/" + c.Platform + "/" + c.UserID }

// Sweep summarizes one pass over every tracked source
type Sweep struct {
	At       time.Time `json:"at"`
	Sources  int       `json:"sources"`
	NewPosts int       `json:"new_posts"`
	Failed   int       `json:"failed"`
}
