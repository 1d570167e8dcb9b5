package errors

import (
	"context"
	stderrs "errors"
	"net"
	"net/http"
)

// Retryable reports whether a later attempt could succeed.
// Nothing in the pipeline retries inline; the harvester uses this to decide
// whether a failed source is worth a warning or an error
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if stderrs.Is(err, context.Canceled) {
		return false
	}
	if stderrs.Is(err, context.DeadlineExceeded) {
		return true
	}
	switch CodeOf(err) {
	case ErrorCodeUnavailable, ErrorCodeTooManyRequests:
		return true
	}
	var ne net.Error
	return stderrs.As(err, &ne) && ne.Timeout()
}

// FromStatus maps a remote HTTP status to a coded error; 2xx gives nil
func FromStatus(status int, what string) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound:
		return Newf(ErrorCodeNotFound, "%s: remote returned %d", what, status)
	case status == http.StatusTooManyRequests:
		return Newf(ErrorCodeTooManyRequests, "%s: remote returned %d", what, status)
	case status >= 500:
		return Newf(ErrorCodeUnavailable, "%s: remote returned %d", what, status)
	default:
		return Newf(ErrorCodeRemote, "%s: remote returned %d", what, status)
	}
}
