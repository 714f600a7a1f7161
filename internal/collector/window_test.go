package collector

import (
	"testing"
)

func ptr(f float64) *float64 { return &f }

func TestPercentile_ExactValues(t *testing.T) {
	sorted := []float64{10, 20, 30, 40, 50}

	p50 := percentile(sorted, 50)
	if p50 == nil || *p50 != 30 {
		t.Fatalf("p50: got %v, want 30", p50)
	}
	p95 := percentile(sorted, 95)
	if p95 == nil || *p95 != 48 {
		t.Fatalf("p95: got %v, want 48", p95)
	}
	p99 := percentile(sorted, 99)
	if p99 == nil || *p99 != 49.6 {
		t.Fatalf("p99: got %v, want 49.6", p99)
	}
}

func TestPercentile_Empty(t *testing.T) {
	if p := percentile(nil, 50); p != nil {
		t.Fatalf("expected nil percentile for empty input, got %v", *p)
	}
}

func TestPercentile_Monotonic(t *testing.T) {
	sorted := []float64{5, 12, 19, 33, 40, 41, 80, 120}
	p50 := percentile(sorted, 50)
	p95 := percentile(sorted, 95)
	p99 := percentile(sorted, 99)
	if !(*p50 <= *p95 && *p95 <= *p99) {
		t.Fatalf("percentiles not monotonic: p50=%v p95=%v p99=%v", *p50, *p95, *p99)
	}
}

func TestWindow_PrunesOldSamples(t *testing.T) {
	w := newWindow(10)
	w.append(sample{ts: 0, status: 200}, 0)
	w.append(sample{ts: 5, status: 200}, 5)

	// Advance well past the window; both samples should be pruned away.
	got := w.snapshot(100)
	if len(got) != 0 {
		t.Fatalf("expected window to be empty after idling past windowS, got %d samples", len(got))
	}
}

func TestWindow_KeepsRecentSamples(t *testing.T) {
	w := newWindow(10)
	w.append(sample{ts: 0, status: 200}, 0)
	w.append(sample{ts: 4, status: 200}, 4)
	w.append(sample{ts: 9, status: 200}, 9)

	got := w.snapshot(9)
	if len(got) != 3 {
		t.Fatalf("expected 3 samples still in window, got %d", len(got))
	}
}

func TestComputeMetrics_StatusHistogramAndErrorRate(t *testing.T) {
	samples := []sample{
		{ts: 0, status: 200, durationMs: ptr(10)},
		{ts: 0, status: 201, durationMs: ptr(20)},
		{ts: 0, status: 404, durationMs: ptr(30)},
		{ts: 0, status: 500, durationMs: ptr(40)},
	}
	m := computeMetrics(samples, 10)

	if m.Count != 4 {
		t.Errorf("count: got %d, want 4", m.Count)
	}
	if m.Status.Class2xx != 2 {
		t.Errorf("2xx: got %d, want 2", m.Status.Class2xx)
	}
	if m.Status.Class4xx != 1 {
		t.Errorf("4xx: got %d, want 1", m.Status.Class4xx)
	}
	if m.Status.Class5xx != 1 {
		t.Errorf("5xx: got %d, want 1", m.Status.Class5xx)
	}
	if m.ErrorRate5xx != 0.25 {
		t.Errorf("error_rate_5xx: got %v, want 0.25", m.ErrorRate5xx)
	}
}

func TestStats_EndpointTable_SortsDescendingAndLimits(t *testing.T) {
	s := NewStats(60)
	s.Record("GET /slow", 0, ptr(900), 200)
	s.Record("GET /fast", 0, ptr(10), 200)
	s.Record("GET /mid", 0, ptr(400), 200)

	rows := s.EndpointTable(0, 2, "p95")
	if len(rows) != 2 {
		t.Fatalf("expected limit=2 rows, got %d", len(rows))
	}
	if rows[0].Endpoint != "GET /slow" {
		t.Errorf("expected GET /slow first by p95, got %q", rows[0].Endpoint)
	}
}

func TestStats_PruneAll_EmptiesIdleWindows(t *testing.T) {
	s := NewStats(5)
	s.Record("GET /x", 0, ptr(10), 200)

	s.PruneAll(100)
	m := s.GlobalMetrics(100)
	if m.Count != 0 {
		t.Fatalf("expected idle global window to be empty, got count=%d", m.Count)
	}
}

func TestTailRates_CountsStrictlyAboveThreshold(t *testing.T) {
	durations := []float64{100, 300, 600, 1500, 3000}
	rates := tailRates(durations)

	if rates["250ms"] != 4.0/5.0 {
		t.Errorf("250ms tail rate: got %v, want 0.8", rates["250ms"])
	}
	if rates["2000ms"] != 1.0/5.0 {
		t.Errorf("2000ms tail rate: got %v, want 0.2", rates["2000ms"])
	}
}
