package collector

import (
	"sort"
	"sync"
)

// sample is a single request observation held by a rolling window.
type sample struct {
	ts         float64
	durationMs *float64
	status     int
}

var tailThresholdsMs = []float64{250, 500, 1000, 2000}

// window is a time-bounded deque of samples, pruned from the head so that
// after any mutation that observes now, head.ts is within
// [now-windowS, now].
type window struct {
	mu      sync.Mutex
	windowS float64
	samples []sample
}

func newWindow(windowS float64) *window {
	return &window{windowS: windowS}
}

// append adds a sample and prunes the head.
func (w *window) append(s sample, now float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.samples = append(w.samples, s)
	w.pruneLocked(now)
}

// prune removes head elements older than the window without appending.
func (w *window) prune(now float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pruneLocked(now)
}

func (w *window) pruneLocked(now float64) {
	i := 0
	for i < len(w.samples) && now-w.samples[i].ts > w.windowS {
		i++
	}
	if i > 0 {
		w.samples = append(w.samples[:0], w.samples[i:]...)
	}
}

// snapshot returns a pruned copy of the samples for metric computation.
func (w *window) snapshot(now float64) []sample {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pruneLocked(now)
	out := make([]sample, len(w.samples))
	copy(out, w.samples)
	return out
}

// StatusHistogram counts samples per status class.
type StatusHistogram struct {
	Class2xx int `json:"2xx"`
	Class3xx int `json:"3xx"`
	Class4xx int `json:"4xx"`
	Class5xx int `json:"5xx"`
}

// Metrics is the computed view over a window snapshot.
type Metrics struct {
	Count        int             `json:"count"`
	RPS          float64         `json:"rps"`
	Status       StatusHistogram `json:"status"`
	ErrorRate5xx float64         `json:"error_rate_5xx"`
	P50          *float64        `json:"p50"`
	P95          *float64        `json:"p95"`
	P99          *float64        `json:"p99"`
}

// TailRates maps a millisecond threshold to the fraction of durations
// strictly exceeding it.
type TailRates map[string]float64

func computeMetrics(samples []sample, windowS float64) Metrics {
	m := Metrics{Count: len(samples)}
	if windowS > 0 {
		m.RPS = float64(len(samples)) / windowS
	}

	durations := make([]float64, 0, len(samples))
	for _, s := range samples {
		switch {
		case s.status >= 500:
			m.Status.Class5xx++
		case s.status >= 400:
			m.Status.Class4xx++
		case s.status >= 300:
			m.Status.Class3xx++
		case s.status >= 200:
			m.Status.Class2xx++
		}
		if s.durationMs != nil {
			durations = append(durations, *s.durationMs)
		}
	}
	if len(samples) > 0 {
		m.ErrorRate5xx = float64(m.Status.Class5xx) / float64(len(samples))
	}

	sort.Float64s(durations)
	m.P50 = percentile(durations, 50)
	m.P95 = percentile(durations, 95)
	m.P99 = percentile(durations, 99)
	return m
}

// percentile returns the p-th percentile of a sorted ascending slice using
// linear interpolation between ranks. Returns nil for an empty slice.
func percentile(sorted []float64, p float64) *float64 {
	n := len(sorted)
	if n == 0 {
		return nil
	}
	if p <= 0 {
		v := sorted[0]
		return &v
	}
	if p >= 100 {
		v := sorted[n-1]
		return &v
	}
	k := float64(n-1) * p / 100
	f := int(k)
	c := f + 1
	if c > n-1 {
		c = n - 1
	}
	v := sorted[f] + (sorted[c]-sorted[f])*(k-float64(f))
	return &v
}

func tailRates(durationsSorted []float64) TailRates {
	rates := make(TailRates, len(tailThresholdsMs))
	n := len(durationsSorted)
	for _, t := range tailThresholdsMs {
		if n == 0 {
			rates[thresholdKey(t)] = 0
			continue
		}
		// durationsSorted is ascending; count strictly greater than t via
		// the first index where value > t.
		idx := sort.Search(n, func(i int) bool { return durationsSorted[i] > t })
		rates[thresholdKey(t)] = float64(n-idx) / float64(n)
	}
	return rates
}

func thresholdKey(t float64) string {
	switch t {
	case 250:
		return "250ms"
	case 500:
		return "500ms"
	case 1000:
		return "1000ms"
	case 2000:
		return "2000ms"
	default:
		return "?"
	}
}

// EndpointMetrics is the per-endpoint row in the endpoint table.
type EndpointMetrics struct {
	Endpoint string    `json:"endpoint"`
	Metrics  Metrics   `json:"metrics"`
	Tail     TailRates `json:"tail_rates"`
}

// Stats holds the global window and one window per endpoint key.
type Stats struct {
	windowS float64

	global *window

	mu        sync.Mutex
	endpoints map[string]*window
}

// NewStats creates a Stats aggregator with the given rolling window size
// in seconds.
func NewStats(windowS float64) *Stats {
	return &Stats{
		windowS:   windowS,
		global:    newWindow(windowS),
		endpoints: make(map[string]*window),
	}
}

// Record appends a request sample to the global window and the window for
// the given endpoint key.
func (s *Stats) Record(endpoint string, ts float64, durationMs *float64, status int) {
	smp := sample{ts: ts, durationMs: durationMs, status: status}
	s.global.append(smp, ts)

	s.mu.Lock()
	w, ok := s.endpoints[endpoint]
	if !ok {
		w = newWindow(s.windowS)
		s.endpoints[endpoint] = w
	}
	s.mu.Unlock()
	w.append(smp, ts)
}

// GlobalMetrics returns the computed metrics over the global window as of
// now.
func (s *Stats) GlobalMetrics(now float64) Metrics {
	return computeMetrics(s.global.snapshot(now), s.windowS)
}

// EndpointTable returns up to limit endpoint rows sorted descending by
// sortBy ("p95", "error", "rps", or "count"; unrecognized values fall back
// to "p95"). Ties keep natural map iteration order. A missing p95 sorts
// as 0.
func (s *Stats) EndpointTable(now float64, limit int, sortBy string) []EndpointMetrics {
	s.mu.Lock()
	keys := make([]string, 0, len(s.endpoints))
	windows := make(map[string]*window, len(s.endpoints))
	for k, w := range s.endpoints {
		keys = append(keys, k)
		windows[k] = w
	}
	s.mu.Unlock()

	rows := make([]EndpointMetrics, 0, len(keys))
	for _, k := range keys {
		samples := windows[k].snapshot(now)
		m := computeMetrics(samples, s.windowS)
		durations := make([]float64, 0, len(samples))
		for _, smp := range samples {
			if smp.durationMs != nil {
				durations = append(durations, *smp.durationMs)
			}
		}
		sort.Float64s(durations)
		rows = append(rows, EndpointMetrics{
			Endpoint: k,
			Metrics:  m,
			Tail:     tailRates(durations),
		})
	}

	sortKey := func(r EndpointMetrics) float64 {
		switch sortBy {
		case "error":
			return r.Metrics.ErrorRate5xx
		case "rps":
			return r.Metrics.RPS
		case "count":
			return float64(r.Metrics.Count)
		default:
			if r.Metrics.P95 == nil {
				return 0
			}
			return *r.Metrics.P95
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return sortKey(rows[i]) > sortKey(rows[j])
	})

	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

// PruneAll prunes the global and every endpoint window as of now, without
// appending. Used by callers that want an idle window to reach empty
// without waiting for the next Record.
func (s *Stats) PruneAll(now float64) {
	s.global.prune(now)
	s.mu.Lock()
	windows := make([]*window, 0, len(s.endpoints))
	for _, w := range s.endpoints {
		windows = append(windows, w)
	}
	s.mu.Unlock()
	for _, w := range windows {
		w.prune(now)
	}
}
