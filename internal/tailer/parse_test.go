package tailer

import (
	"testing"

	"github.com/obsd/obsd/internal/collector"
)

func TestParseLine_JSONOverridesService(t *testing.T) {
	line := `{"kind":"req","service":"embedded","method":"GET","path":"/x","status":200,"duration_ms":12}`
	ev, ok := parseLine("configured-service", line)
	if !ok {
		t.Fatal("expected JSON line to parse")
	}
	if ev.Service != "configured-service" {
		t.Errorf("expected configured service to override embedded, got %q", ev.Service)
	}
	if ev.Method != "GET" || ev.Path != "/x" {
		t.Errorf("unexpected method/path: %+v", ev)
	}
}

func TestParseLine_JSONRejectsNonRequestKind(t *testing.T) {
	line := `{"kind":"gauge","name":"inflight_delta","value":1}`
	if _, ok := parseLine("svc", line); ok {
		t.Error("expected tailer to reject non-request event kinds")
	}
}

func TestParseLine_LegacyExtractsMethodPathStatus(t *testing.T) {
	line := `127.0.0.1 - "GET /orders/42 HTTP/1.1" 200`
	ev, ok := parseLine("accesslog", line)
	if !ok {
		t.Fatal("expected legacy line to parse")
	}
	if ev.Kind != collector.KindReq {
		t.Errorf("expected KindReq, got %q", ev.Kind)
	}
	if ev.Method != "GET" || ev.Path != "/orders/42" {
		t.Errorf("method/path: got %q %q", ev.Method, ev.Path)
	}
	if ev.Status == nil || *ev.Status != 200 {
		t.Errorf("status: got %v, want 200", ev.Status)
	}
	if ev.Service != "accesslog" {
		t.Errorf("service: got %q", ev.Service)
	}
}

func TestParseLine_LegacyNonMatchingLineIsRejected(t *testing.T) {
	if _, ok := parseLine("svc", "not an access log line at all"); ok {
		t.Error("expected unmatched legacy line to be rejected")
	}
}
