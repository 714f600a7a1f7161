package collector

import (
	"sort"
	"strings"
)

const sparkRamp = "▁▂▃▄▅▆▇█"

// Sparkline renders values over the 8-glyph block ramp. A flat series
// (max-min < 1e-9) renders as the lowest glyph repeated.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	var b strings.Builder
	glyphs := []rune(sparkRamp)
	if max-min < 1e-9 {
		for range values {
			b.WriteRune(glyphs[0])
		}
		return b.String()
	}
	for _, v := range values {
		idx := int((v - min) / (max - min) * 7)
		if idx < 0 {
			idx = 0
		}
		if idx > 7 {
			idx = 7
		}
		b.WriteRune(glyphs[idx])
	}
	return b.String()
}

// Trends is the sparkline-rendered trend view over the last trendMax
// samples.
type Trends struct {
	RPS    string `json:"rps"`
	Err5xx string `json:"err5xx"`
	P95    string `json:"p95"`
}

// GlobalSnapshot is the payload for GET /metrics.
type GlobalSnapshot struct {
	WindowS           float64        `json:"window_s"`
	Metrics           Metrics        `json:"metrics"`
	InFlightGlobal    int            `json:"inflight_global"`
	InFlightByService map[string]int `json:"inflight_by_service"`
	Trends            Trends         `json:"trends"`
}

// GlobalSnapshot computes the global metrics snapshot with trend
// sparklines, as of now.
func (c *Collector) GlobalSnapshot(now float64) GlobalSnapshot {
	m := c.Stats.GlobalMetrics(now)
	global, byService := c.InFlight.Snapshot()
	rps, err5xx, p95 := c.Trend.Snapshot()

	return GlobalSnapshot{
		WindowS:           c.cfg.WindowS,
		Metrics:           m,
		InFlightGlobal:    global,
		InFlightByService: byService,
		Trends: Trends{
			RPS:    Sparkline(rps),
			Err5xx: Sparkline(err5xx),
			P95:    Sparkline(p95),
		},
	}
}

// EndpointTable returns the endpoint metrics table (see Stats.EndpointTable).
func (c *Collector) EndpointTable(now float64, limit int, sortBy string) []EndpointMetrics {
	return c.Stats.EndpointTable(now, limit, sortBy)
}

// TopErrorSignatures returns the most frequent error signatures.
func (c *Collector) TopErrorSignatures(limit int) []SigCount {
	return c.ErrorSigs.TopSignatures(limit)
}

// RecentRequests returns up to limit recent request summaries.
func (c *Collector) RecentRequests(now float64, limit int) []RecentRequest {
	return c.Recent.Snapshot(now, limit)
}

// TopSlow returns up to limit recent requests with the highest latency.
func (c *Collector) TopSlow(now float64, limit int) []RecentRequest {
	return c.Recent.TopSlow(now, limit)
}

// TraceView is the merged, read-only view of a trace bundle returned by
// GET /trace/{request_id}.
type TraceView struct {
	RequestID string         `json:"request_id"`
	ReqStart  *Event         `json:"req_start,omitempty"`
	ReqEnd    *Event         `json:"req_end,omitempty"`
	Headers   map[string]any `json:"headers"`
	Meta      map[string]any `json:"meta,omitempty"`
	Logs      []LogSummary   `json:"logs"`
	Spans     []SpanSummary  `json:"spans"`
}

// TraceBundle returns the merged view for requestID, or false if no bundle
// exists. req_end's meta overrides req_start's on key collision; logs and
// spans are sorted by ts ascending.
func (c *Collector) TraceBundle(requestID string) (TraceView, bool) {
	b, ok := c.Traces.Get(requestID)
	if !ok {
		return TraceView{}, false
	}

	meta := make(map[string]any)
	if b.ReqStart != nil {
		for k, v := range b.ReqStart.Meta {
			meta[k] = v
		}
	}
	if b.ReqEnd != nil {
		for k, v := range b.ReqEnd.Meta {
			meta[k] = v
		}
	}

	logs := make([]LogSummary, len(b.Logs))
	copy(logs, b.Logs)
	sort.SliceStable(logs, func(i, j int) bool { return logs[i].Ts < logs[j].Ts })

	spans := make([]SpanSummary, len(b.Spans))
	copy(spans, b.Spans)
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].Ts < spans[j].Ts })

	return TraceView{
		RequestID: b.RequestID,
		ReqStart:  b.ReqStart,
		ReqEnd:    b.ReqEnd,
		Headers:   b.Headers,
		Meta:      meta,
		Logs:      logs,
		Spans:     spans,
	}, true
}
