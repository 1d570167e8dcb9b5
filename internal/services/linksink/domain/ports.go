// Package domain declares the link sink ports
package domain

import "context"

// SubmitterPort is what producers (chat handlers, ops API, relayctl) call
type SubmitterPort interface {
	// Submit writes one sentinel carrying url and returns its path
	Submit(ctx context.Context, url, source string) (string, error)

	// SubmitText submits every post URL found in free text; no match is a no-op
	SubmitText(ctx context.Context, text, source string) ([]string, error)
}
