package collector

import (
	"container/list"
	"sync"
)

// LogSummary is a condensed log entry appended to a trace bundle.
type LogSummary struct {
	Ts      float64        `json:"ts"`
	Level   string         `json:"level,omitempty"`
	Logger  string         `json:"logger,omitempty"`
	Message string         `json:"message,omitempty"`
	Trace   string         `json:"trace,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// SpanSummary is a condensed span entry appended to a trace bundle.
type SpanSummary struct {
	Ts         float64        `json:"ts"`
	Name       string         `json:"name,omitempty"`
	DurationMs *float64       `json:"duration_ms,omitempty"`
	Meta       map[string]any `json:"meta,omitempty"`
}

// Bundle stitches every event seen for a single request_id.
type Bundle struct {
	RequestID string
	ReqStart  *Event
	ReqEnd    *Event
	Headers   map[string]any
	Logs      []LogSummary
	Spans     []SpanSummary
}

// TraceStore is an LRU of per-request_id Bundles, capped at max entries.
// It is a hash map plus an intrusive recency list: the list front is most
// recently touched, the back is the next eviction candidate.
type TraceStore struct {
	mu       sync.Mutex
	max      int
	logsMax  int
	spansMax int
	items    map[string]*list.Element // value: *bundleEntry
	order    *list.List
}

type bundleEntry struct {
	key    string
	bundle *Bundle
}

// NewTraceStore creates an empty TraceStore capped at max bundles, with
// max logs and max spans retained per bundle (oldest dropped on overflow).
func NewTraceStore(max, logsMax, spansMax int) *TraceStore {
	return &TraceStore{
		max:      max,
		logsMax:  logsMax,
		spansMax: spansMax,
		items:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

// GetOrCreate returns the bundle for requestID, touching its LRU recency.
// If none exists and create is false, it returns (nil, false). If none
// exists and create is true, a new bundle is created, touched, and the
// store is trimmed to max by evicting the least-recently-touched entries.
func (s *TraceStore) GetOrCreate(requestID string, create bool) (*Bundle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.items[requestID]; ok {
		s.order.MoveToFront(elem)
		return elem.Value.(*bundleEntry).bundle, true
	}
	if !create {
		return nil, false
	}

	b := &Bundle{RequestID: requestID}
	elem := s.order.PushFront(&bundleEntry{key: requestID, bundle: b})
	s.items[requestID] = elem
	s.evictLocked()
	return b, true
}

// Get is a read-only lookup that still promotes recency.
func (s *TraceStore) Get(requestID string) (*Bundle, bool) {
	return s.GetOrCreate(requestID, false)
}

func (s *TraceStore) evictLocked() {
	for len(s.items) > s.max {
		back := s.order.Back()
		if back == nil {
			return
		}
		entry := back.Value.(*bundleEntry)
		delete(s.items, entry.key)
		s.order.Remove(back)
	}
}

// Len reports the current number of bundles held.
func (s *TraceStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// ApplyReqStart stores ev as the bundle's req_start, replacing Headers if
// ev.Meta carries a "headers" entry.
func (s *TraceStore) ApplyReqStart(b *Bundle, ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ReqStart = &ev
	if h, ok := ev.Meta["headers"]; ok {
		if hm, ok := h.(map[string]any); ok {
			b.Headers = hm
		}
	}
}

// ApplyReqEnd is symmetric with ApplyReqStart for req_end.
func (s *TraceStore) ApplyReqEnd(b *Bundle, ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ReqEnd = &ev
	if h, ok := ev.Meta["headers"]; ok {
		if hm, ok := h.(map[string]any); ok {
			b.Headers = hm
		}
	}
}

// AppendLog pushes a log summary onto the bundle's capped log sequence,
// dropping the oldest entry on overflow.
func (s *TraceStore) AppendLog(b *Bundle, l LogSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.Logs = append(b.Logs, l)
	if over := len(b.Logs) - s.logsMax; over > 0 {
		b.Logs = b.Logs[over:]
	}
}

// AppendSpan pushes a span summary onto the bundle's capped span sequence,
// dropping the oldest entry on overflow.
func (s *TraceStore) AppendSpan(b *Bundle, sp SpanSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.Spans = append(b.Spans, sp)
	if over := len(b.Spans) - s.spansMax; over > 0 {
		b.Spans = b.Spans[over:]
	}
}
