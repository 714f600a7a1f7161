// Package collector implements obsd's ingest-and-aggregation engine: event
// dispatch, rolling-window statistics, trace bundles, the in-flight
// tracker, error-signature aggregation, the trend sampler, subscriber
// fan-out, and the read-only query surface consumed by the dashboard.
package collector

import (
	"math/rand"
	"sync"
	"time"

	"github.com/obsd/obsd/internal/config"
)

func randSeed() int64 { return time.Now().UnixNano() }

// Collector wires together every aggregate (A–F) behind the single
// Ingest entry point (G), plus the subscriber fan-out (H) and sampled
// event ring it publishes to.
type Collector struct {
	cfg *config.Config

	Stats     *Stats
	Traces    *TraceStore
	InFlight  *InFlight
	ErrorSigs *ErrorSigAggregator
	Recent    *RecentRing
	Trend     *TrendSampler
	Hub       *Hub
	EventRing *EventRing

	randMu sync.Mutex
	rand   *rand.Rand
}

// New builds a Collector from cfg. Trend must be started separately via
// TrendSampler.Run, since its 1Hz cadence is a process-lifetime concern
// owned by the caller (see cmd/obsd).
func New(cfg *config.Config) *Collector {
	stats := NewStats(cfg.WindowS)
	c := &Collector{
		cfg:       cfg,
		Stats:     stats,
		Traces:    NewTraceStore(cfg.TraceStoreMax, cfg.TraceLogsMax, cfg.TraceSpansMax),
		InFlight:  NewInFlight(),
		ErrorSigs: NewErrorSigAggregator(cfg.WindowS),
		Recent:    NewRecentRing(cfg.WindowS, cfg.RecentReqsMax),
		Trend:     NewTrendSampler(stats),
		Hub:       NewHub(0),
		EventRing: NewEventRing(cfg.MaxEvents),
		rand:      rand.New(rand.NewSource(randSeed())),
	}
	return c
}

// Ingest is the single entry point for every event, whether it arrived
// over the wire or was produced by the access-log tailer. It mutates the
// appropriate aggregates and decides whether to publish. It applies no
// envelope defaults itself: ts and service are filled in beforehand by
// DecodeEvent (wire ingest) or by the tailer's line parser.
func (c *Collector) Ingest(ev Event) {
	var bundle *Bundle
	if ev.Kind.hasRequestContext() && ev.RequestID != "" {
		bundle, _ = c.Traces.GetOrCreate(ev.RequestID, true)
	}

	switch ev.Kind {
	case KindReqStart:
		c.InFlight.Start(ev.Service, ev.RequestID, ev.Ts)
		if bundle != nil {
			c.Traces.ApplyReqStart(bundle, ev)
		}
		// req_start is never published.
		return

	case KindReq, KindReqEnd:
		status := 0
		if ev.Status != nil {
			status = *ev.Status
		}
		endpoint := endpointKey(ev.Method, ev.Path, ev.Route)
		c.Stats.Record(endpoint, ev.Ts, ev.DurationMs, status)
		if bundle != nil {
			c.Traces.ApplyReqEnd(bundle, ev)
		}
		c.Recent.Append(RecentRequest{
			Ts:         ev.Ts,
			RequestID:  ev.RequestID,
			TraceID:    ev.TraceID,
			Service:    ev.Service,
			Endpoint:   endpoint,
			Status:     status,
			DurationMs: ev.DurationMs,
		})
		if ev.Kind == KindReqEnd {
			c.InFlight.End(ev.RequestID)
		}
		if c.shouldPublish(status, ev.DurationMs) {
			c.publish(ev)
		}
		return

	case KindLog:
		if ev.Trace != "" {
			c.ErrorSigs.Record(ev.Ts, ev.Trace)
		}
		if bundle != nil {
			c.Traces.AppendLog(bundle, LogSummary{
				Ts:      ev.Ts,
				Level:   ev.Level,
				Logger:  ev.Logger,
				Message: ev.Message,
				Trace:   ev.Trace,
				Meta:    ev.Meta,
			})
		}
		// log is never published.
		return

	case KindGauge:
		if ev.Name == "inflight_delta" && ev.Value != nil {
			c.InFlight.GaugeDelta(ev.Service, int(*ev.Value))
		}
		// gauge is never published.
		return

	case KindSpan:
		if bundle != nil {
			c.Traces.AppendSpan(bundle, SpanSummary{
				Ts:         ev.Ts,
				Name:       ev.Name,
				DurationMs: ev.DurationMs,
				Meta:       ev.Meta,
			})
		}
		// span follows the default-publish path.
		c.publish(ev)
		return
	}
}

// shouldPublish is the sampling gate for req/req_end: publish on any
// server error, any slow request, or — when sampling is enabled — a
// uniform draw.
func (c *Collector) shouldPublish(status int, durationMs *float64) bool {
	if status >= 500 {
		return true
	}
	if durationMs != nil && *durationMs >= c.cfg.SlowMs {
		return true
	}
	if c.cfg.SampleRate > 0 && c.uniform() < c.cfg.SampleRate {
		return true
	}
	return false
}

func (c *Collector) uniform() float64 {
	c.randMu.Lock()
	defer c.randMu.Unlock()
	return c.rand.Float64()
}

// publish appends ev to the sampled event ring and fans it out to
// subscribers.
func (c *Collector) publish(ev Event) {
	c.EventRing.Append(ev)
	c.Hub.Publish(ev)
}
