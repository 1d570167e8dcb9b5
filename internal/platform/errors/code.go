package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode classifies a failure. The numeric value travels in ops API payloads,
// so append new codes at the end
type ErrorCode uint16

const (
	ErrorCodeUnknown ErrorCode = iota
	ErrorCodePanic
	// ErrorCodeUnavailable covers network failures and remote 5xx
	ErrorCodeUnavailable
	ErrorCodeTooManyRequests
	// ErrorCodeConflict is a publish collision in an outgoing directory
	ErrorCodeConflict
	// ErrorCodeInvalidArgument is malformed caller input, such as a URL that is not a post
	ErrorCodeInvalidArgument
	ErrorCodeValidation
	ErrorCodeJSON
	// ErrorCodeNotFound also covers a post with nothing to download
	ErrorCodeNotFound
	// ErrorCodeIO is a local filesystem failure
	ErrorCodeIO
	// ErrorCodeRemote is a remote refusal that will not change on retry (4xx)
	ErrorCodeRemote
)

type codeInfo struct {
	label  string
	status int
}

var codes = [...]codeInfo{
	ErrorCodeUnknown:         {"unknown", http.StatusInternalServerError},
	ErrorCodePanic:           {"panic", http.StatusInternalServerError},
	ErrorCodeUnavailable:     {"unavailable", http.StatusServiceUnavailable},
	ErrorCodeTooManyRequests: {"too_many_requests", http.StatusTooManyRequests},
	ErrorCodeConflict:        {"conflict", http.StatusConflict},
	ErrorCodeInvalidArgument: {"invalid_argument", http.StatusUnprocessableEntity},
	ErrorCodeValidation:      {"validation", http.StatusBadRequest},
	ErrorCodeJSON:            {"json", http.StatusBadRequest},
	ErrorCodeNotFound:        {"not_found", http.StatusNotFound},
	ErrorCodeIO:              {"io", http.StatusInternalServerError},
	ErrorCodeRemote:          {"remote", http.StatusBadGateway},
}

// String is the short label used in logs and as a metrics label value
func (c ErrorCode) String() string {
	if int(c) < len(codes) {
		return codes[c].label
	}
	return fmt.Sprintf("code_%d", uint16(c))
}

// HTTPStatus is the status the ops API answers with; unknown codes give 500
func (c ErrorCode) HTTPStatus() int {
	if int(c) < len(codes) {
		return codes[c].status
	}
	return http.StatusInternalServerError
}
