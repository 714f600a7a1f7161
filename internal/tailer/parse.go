package tailer

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/obsd/obsd/internal/collector"
)

// legacyPattern matches the plain-text access-log line shape described in
// the wire format: `<ip>[:port] - "<METHOD> <PATH> HTTP/...>" <STATUS>`.
var legacyPattern = regexp.MustCompile(
	`(?:\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})(?::\d+)?\s-\s"(GET|POST|PUT|PATCH|DELETE|HEAD|OPTIONS)\s(\S+)\sHTTP/[^"]+"\s(\d{3})`)

func nowSeconds() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}

// parseLine parses a single non-empty access-log line into an event, using
// the configured service name rather than anything embedded in the line.
// Returns false if the line matches neither the JSON nor legacy shape.
func parseLine(configuredService, line string) (collector.Event, bool) {
	if strings.HasPrefix(line, "{") && strings.HasSuffix(line, "}") {
		return parseJSONLine(configuredService, line)
	}
	return parseLegacyLine(configuredService, line)
}

func parseJSONLine(configuredService, line string) (collector.Event, bool) {
	var ev collector.Event
	if err := json.Unmarshal([]byte(line), &ev); err != nil {
		return collector.Event{}, false
	}
	switch ev.Kind {
	case collector.KindReq, collector.KindReqStart, collector.KindReqEnd:
	default:
		return collector.Event{}, false
	}
	ev.Service = configuredService
	if ev.Ts == 0 {
		ev.Ts = nowSeconds()
	}
	return ev, true
}

func parseLegacyLine(configuredService, line string) (collector.Event, bool) {
	m := legacyPattern.FindStringSubmatch(line)
	if m == nil {
		return collector.Event{}, false
	}
	status, err := strconv.Atoi(m[3])
	if err != nil {
		return collector.Event{}, false
	}
	return collector.Event{
		Ts:      nowSeconds(),
		Service: configuredService,
		Kind:    collector.KindReq,
		Method:  m[1],
		Path:    m[2],
		Status:  &status,
		Meta:    map[string]any{"source": "access_log"},
	}, true
}
