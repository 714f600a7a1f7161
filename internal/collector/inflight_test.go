package collector

import "testing"

func TestInFlight_StartEndPairing(t *testing.T) {
	f := NewInFlight()
	f.Start("checkout", "r1", 0)
	f.Start("checkout", "r2", 1)

	global, byService := f.Snapshot()
	if global != 2 || byService["checkout"] != 2 {
		t.Fatalf("expected 2 in flight, got global=%d byService=%v", global, byService)
	}

	f.End("r1")
	global, byService = f.Snapshot()
	if global != 1 || byService["checkout"] != 1 {
		t.Fatalf("expected 1 in flight after one end, got global=%d byService=%v", global, byService)
	}
}

func TestInFlight_UnmatchedEndIsNoop(t *testing.T) {
	f := NewInFlight()
	f.Start("checkout", "r1", 0)
	f.End("r-does-not-exist")

	global, _ := f.Snapshot()
	if global != 1 {
		t.Fatalf("expected unmatched End to leave counter unchanged, got %d", global)
	}
}

func TestInFlight_NeverGoesNegative(t *testing.T) {
	f := NewInFlight()
	f.GaugeDelta("svc", -5)

	global, byService := f.Snapshot()
	if global != 0 || byService["svc"] != 0 {
		t.Fatalf("expected floor at zero, got global=%d byService=%v", global, byService)
	}
}

func TestInFlight_GaugeDeltaAppliesBothCounters(t *testing.T) {
	f := NewInFlight()
	f.GaugeDelta("svc", 3)
	f.GaugeDelta("svc", -1)

	global, byService := f.Snapshot()
	if global != 2 || byService["svc"] != 2 {
		t.Fatalf("expected global=2 byService[svc]=2, got global=%d byService=%v", global, byService)
	}
}
