package logger

import "context"

type ctxKey uint8

const (
	requestIDKey ctxKey = iota
	jobKey
)

// WithRequest tags ctx with an HTTP request id; empty ids leave ctx alone
func WithRequest(ctx context.Context, reqID string) context.Context {
	if reqID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, reqID)
}

// WithJob tags ctx with the staging job a unit of work belongs to; empty names leave ctx alone
func WithJob(ctx context.Context, job string) context.Context {
	if job == "" {
		return ctx
	}
	return context.WithValue(ctx, jobKey, job)
}

// C returns a child of the root logger carrying request_id and job from ctx
func C(ctx context.Context) *Logger {
	c := Get().With()
	if v, _ := ctx.Value(requestIDKey).(string); v != "" {
		c = c.Str("request_id", v)
	}
	if v, _ := ctx.Value(jobKey).(string); v != "" {
		c = c.Str("job", v)
	}
	l := c.Logger()
	return &l
}
