package collector

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Kind discriminates the event envelope's variant.
type Kind string

const (
	KindReqStart Kind = "req_start"
	KindReqEnd   Kind = "req_end"
	KindReq      Kind = "req"
	KindLog      Kind = "log"
	KindSpan     Kind = "span"
	KindGauge    Kind = "gauge"
)

func (k Kind) known() bool {
	switch k {
	case KindReqStart, KindReqEnd, KindReq, KindLog, KindSpan, KindGauge:
		return true
	}
	return false
}

// hasRequestContext reports whether events of this kind are eligible to
// create or update a trace bundle, per the trace-bundle store's lazy
// creation rule.
func (k Kind) hasRequestContext() bool {
	switch k {
	case KindReqStart, KindReqEnd, KindReq, KindLog, KindSpan:
		return true
	}
	return false
}

// ErrUnknownKind is returned when an event's kind discriminator is not one
// of the known variants.
var ErrUnknownKind = errors.New("obsd: unknown event kind")

// Event is the tagged envelope common to all event variants. The "meta"
// object travels opaquely and is never interpreted structurally. Other
// top-level fields that are not part of this struct are dropped on
// decode; they are not copied into Meta.
type Event struct {
	Ts        float64 `json:"ts,omitempty"`
	Service   string  `json:"service,omitempty"`
	TraceID   string  `json:"trace_id,omitempty"`
	SpanID    string  `json:"span_id,omitempty"`
	RequestID string  `json:"request_id,omitempty"`
	Kind      Kind    `json:"kind"`

	// req_start / req_end / req
	Method     string   `json:"method,omitempty"`
	Path       string   `json:"path,omitempty"`
	Route      string   `json:"route,omitempty"`
	Status     *int     `json:"status,omitempty"`
	DurationMs *float64 `json:"duration_ms,omitempty"`

	// log
	Level   string `json:"level,omitempty"`
	Logger  string `json:"logger,omitempty"`
	Message string `json:"message,omitempty"`
	Trace   string `json:"trace,omitempty"`

	// span / gauge
	Name  string   `json:"name,omitempty"`
	Value *float64 `json:"value,omitempty"`

	Meta map[string]any `json:"meta,omitempty"`
}

// DecodeEvent parses a single event body, filling in envelope defaults
// (ts defaults to now; service defaults to "unknown") and rejecting
// unknown kinds. No state is mutated on a decode failure.
func DecodeEvent(data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, fmt.Errorf("obsd: decode event: %w", err)
	}
	if !ev.Kind.known() {
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownKind, ev.Kind)
	}
	if ev.Ts == 0 {
		ev.Ts = nowSeconds()
	}
	if ev.Service == "" {
		ev.Service = "unknown"
	}
	return ev, nil
}

func nowSeconds() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}

// endpointKey returns the grouping key for per-endpoint metrics: route is
// preferred, falling back to path, falling back to the literal "unknown".
// Method defaults to GET when absent.
func endpointKey(method, path, route string) string {
	if method == "" {
		method = "GET"
	}
	key := route
	if key == "" {
		key = path
	}
	if key == "" {
		key = "unknown"
	}
	return method + " " + key
}
