package collector

import "testing"

func TestRecentRing_SnapshotNewestFirst(t *testing.T) {
	r := NewRecentRing(60, 10)
	r.Append(RecentRequest{Ts: 0, Endpoint: "GET /a"})
	r.Append(RecentRequest{Ts: 1, Endpoint: "GET /b"})

	got := r.Snapshot(1, 10)
	if len(got) != 2 || got[0].Endpoint != "GET /b" {
		t.Fatalf("expected newest entry first, got %+v", got)
	}
}

func TestRecentRing_PrunesByCount(t *testing.T) {
	r := NewRecentRing(60, 2)
	r.Append(RecentRequest{Ts: 0, Endpoint: "GET /a"})
	r.Append(RecentRequest{Ts: 1, Endpoint: "GET /b"})
	r.Append(RecentRequest{Ts: 2, Endpoint: "GET /c"})

	got := r.Snapshot(2, 10)
	if len(got) != 2 {
		t.Fatalf("expected ring capped at 2 entries, got %d", len(got))
	}
	if got[0].Endpoint != "GET /c" {
		t.Errorf("expected newest entry first, got %q first", got[0].Endpoint)
	}
	if got[1].Endpoint != "GET /b" {
		t.Errorf("expected oldest entry evicted, got %q last", got[1].Endpoint)
	}
}

func TestRecentRing_TopSlowExcludesNilDurations(t *testing.T) {
	r := NewRecentRing(60, 10)
	r.Append(RecentRequest{Ts: 0, Endpoint: "GET /a", DurationMs: ptr(500)})
	r.Append(RecentRequest{Ts: 1, Endpoint: "GET /b", DurationMs: nil})
	r.Append(RecentRequest{Ts: 2, Endpoint: "GET /c", DurationMs: ptr(900)})

	got := r.TopSlow(2, 10)
	if len(got) != 2 {
		t.Fatalf("expected nil-duration entry excluded, got %d entries", len(got))
	}
	if got[0].Endpoint != "GET /c" {
		t.Errorf("expected slowest entry first, got %q", got[0].Endpoint)
	}
}
