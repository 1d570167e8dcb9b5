// Package http holds the ops server, the chi-backed router seam and the JSON envelope
// every ops endpoint answers with
package http

import (
	"encoding/json"
	stdhttp "net/http"

	perr "mediarelay/internal/platform/errors"
	pnet "mediarelay/internal/platform/net"
	"mediarelay/internal/platform/net/http/bind"
)

// Envelope wraps every ops response body
type Envelope struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code,omitempty"`
	Error      string         `json:"error,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Data       any            `json:"data,omitempty"`
}

func newEnvelope(r *stdhttp.Request, status int) Envelope {
	return Envelope{
		StatusCode: status,
		Status:     stdhttp.StatusText(status),
		RequestID:  pnet.RequestID(r.Context()),
	}
}

func writeEnvelope(w stdhttp.ResponseWriter, env Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(env.StatusCode)
	_ = json.NewEncoder(w).Encode(env)
}

// RespondError maps err through perr.HTTP and writes the envelope
func RespondError(w stdhttp.ResponseWriter, r *stdhttp.Request, err error) {
	status, wr := perr.HTTP(err)
	env := newEnvelope(r, status)
	env.Code, env.Error = wr.Code, wr.Message
	writeEnvelope(w, env)
}

func reply(w stdhttp.ResponseWriter, r *stdhttp.Request, status int, data any, err error) {
	if err != nil {
		RespondError(w, r, err)
		return
	}
	env := newEnvelope(r, status)
	env.Data = data
	writeEnvelope(w, env)
}

// GetJSON answers GET path with h's result in a 200 envelope
func GetJSON(r Router, path string, h func(*stdhttp.Request) (any, error)) {
	r.Get(path, func(w stdhttp.ResponseWriter, req *stdhttp.Request) {
		out, err := h(req)
		reply(w, req, stdhttp.StatusOK, out, err)
	})
}

// PostJSON binds and validates a T body, then answers 200
func PostJSON[T any](r Router, path string, h func(*stdhttp.Request, T) (any, error)) {
	r.Post(path, bound(stdhttp.StatusOK, h))
}

// PostAccepted is PostJSON for work handed off asynchronously; it answers 202
func PostAccepted[T any](r Router, path string, h func(*stdhttp.Request, T) (any, error)) {
	r.Post(path, bound(stdhttp.StatusAccepted, h))
}

func bound[T any](status int, h func(*stdhttp.Request, T) (any, error)) Handler {
	return func(w stdhttp.ResponseWriter, req *stdhttp.Request) {
		in, err := bind.ParseJSON[T](req)
		if err != nil {
			RespondError(w, req, err)
			return
		}
		out, err := h(req, in)
		reply(w, req, status, out, err)
	}
}
