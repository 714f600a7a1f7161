// Package obsctx carries an event's trace/span/request/service identifiers
// through a request's context.Context, so handler code several calls deep
// can attach them to a log line without re-threading four extra
// parameters everywhere.
package obsctx

import "context"

type ctxKey struct{}

// Fields are the per-request identifiers threaded through handler and
// log-emission code paths.
type Fields struct {
	TraceID   string
	SpanID    string
	RequestID string
	Service   string
}

// With attaches f to ctx, returning a new context.
func With(ctx context.Context, f Fields) context.Context {
	return context.WithValue(ctx, ctxKey{}, f)
}

// From extracts Fields from ctx. The zero value is returned if none was
// attached.
func From(ctx context.Context) Fields {
	f, _ := ctx.Value(ctxKey{}).(Fields)
	return f
}
