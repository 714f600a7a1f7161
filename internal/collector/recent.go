package collector

import (
	"sort"
	"sync"
)

// RecentRequest is a summary entry in the recent-requests ring.
type RecentRequest struct {
	Ts         float64  `json:"ts"`
	RequestID  string   `json:"request_id,omitempty"`
	TraceID    string   `json:"trace_id,omitempty"`
	Service    string   `json:"service"`
	Endpoint   string   `json:"endpoint"`
	Status     int      `json:"status"`
	DurationMs *float64 `json:"duration_ms"`
}

// RecentRing holds up to max recent requests, pruned by both age
// (windowS) and count.
type RecentRing struct {
	mu      sync.Mutex
	windowS float64
	max     int
	items   []RecentRequest
}

// NewRecentRing creates a ring capped at max entries within windowS
// seconds.
func NewRecentRing(windowS float64, max int) *RecentRing {
	return &RecentRing{windowS: windowS, max: max}
}

// Append adds r and prunes the ring.
func (r *RecentRing) Append(req RecentRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, req)
	r.pruneLocked(req.Ts)
}

func (r *RecentRing) pruneLocked(now float64) {
	i := 0
	for i < len(r.items) && now-r.items[i].Ts > r.windowS {
		i++
	}
	if i > 0 {
		r.items = append(r.items[:0], r.items[i:]...)
	}
	if over := len(r.items) - r.max; over > 0 {
		r.items = append(r.items[:0], r.items[over:]...)
	}
}

// Snapshot returns up to limit most-recent entries, newest first, pruned
// as of now.
func (r *RecentRing) Snapshot(now float64, limit int) []RecentRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked(now)
	items := r.items
	if limit > 0 && limit < len(items) {
		items = items[len(items)-limit:]
	}
	out := make([]RecentRequest, len(items))
	for i, it := range items {
		out[len(items)-1-i] = it
	}
	return out
}

// TopSlow returns up to limit entries with the highest duration_ms,
// descending, excluding entries with a null duration.
func (r *RecentRing) TopSlow(now float64, limit int) []RecentRequest {
	r.mu.Lock()
	r.pruneLocked(now)
	items := make([]RecentRequest, len(r.items))
	copy(items, r.items)
	r.mu.Unlock()

	filtered := items[:0]
	for _, it := range items {
		if it.DurationMs != nil {
			filtered = append(filtered, it)
		}
	}
	sort.Slice(filtered, func(i, j int) bool {
		return *filtered[i].DurationMs > *filtered[j].DurationMs
	})
	if limit > 0 && limit < len(filtered) {
		filtered = filtered[:limit]
	}
	out := make([]RecentRequest, len(filtered))
	copy(out, filtered)
	return out
}
