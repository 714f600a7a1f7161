package collector

import "testing"

func TestComputeSignature_DeterministicForIdenticalTraces(t *testing.T) {
	trace := "Traceback (most recent call last):\n  File \"app.py\", line 10\n  File \"db.py\", line 44\nKeyError: 'user_id'"

	a := ComputeSignature(trace)
	b := ComputeSignature(trace)
	if a != b {
		t.Fatalf("expected identical traces to produce the same signature, got %q and %q", a, b)
	}
	if len(a) != 10 {
		t.Fatalf("expected a 10-hex-char signature, got %q (len %d)", a, len(a))
	}
}

func TestComputeSignature_DiffersForDifferentExceptions(t *testing.T) {
	a := ComputeSignature("File \"app.py\", line 10\nKeyError: 'user_id'")
	b := ComputeSignature("File \"app.py\", line 10\nValueError: bad input")
	if a == b {
		t.Error("expected distinct exception messages to produce distinct signatures")
	}
}

func TestErrorSigAggregator_RecordAndCount(t *testing.T) {
	agg := NewErrorSigAggregator(60)
	trace := "File \"app.py\", line 1\nKeyError: 'x'"

	sig1 := agg.Record(0, trace)
	sig2 := agg.Record(1, trace)
	if sig1 != sig2 {
		t.Fatalf("expected repeated identical trace to produce the same signature")
	}

	top := agg.TopSignatures(10)
	if len(top) != 1 || top[0].Count != 2 {
		t.Fatalf("expected one signature with count 2, got %+v", top)
	}
}

func TestErrorSigAggregator_PrunesOldSignatures(t *testing.T) {
	agg := NewErrorSigAggregator(10)
	agg.Record(0, "File \"a.py\", line 1\nKeyError: 'x'")

	// Advance well past the window.
	agg.Record(100, "File \"b.py\", line 1\nValueError: y")

	top := agg.TopSignatures(10)
	if len(top) != 1 {
		t.Fatalf("expected pruned window to drop the old signature, got %d entries", len(top))
	}
}

func TestErrorSigAggregator_TopSignaturesSortedDescending(t *testing.T) {
	agg := NewErrorSigAggregator(60)
	traceA := "File \"a.py\", line 1\nKeyError: 'x'"
	traceB := "File \"b.py\", line 1\nValueError: y"

	agg.Record(0, traceA)
	agg.Record(0, traceA)
	agg.Record(0, traceB)

	top := agg.TopSignatures(10)
	if len(top) != 2 {
		t.Fatalf("expected 2 distinct signatures, got %d", len(top))
	}
	if top[0].Count < top[1].Count {
		t.Error("expected signatures sorted descending by count")
	}
}
