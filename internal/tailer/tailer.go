// Package tailer follows access-log files and feeds parsed lines into the
// collector exactly as if they had arrived over the wire. Tailer goroutines
// never mutate collector aggregates directly — each parsed line goes
// through the same Ingest entry point the HTTP handler uses.
package tailer

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/obsd/obsd/internal/collector"
)

// FileSpec is one entry in an OBS_LOG_FILES configuration: a service name
// and the file path to follow.
type FileSpec struct {
	Service string
	Path    string
}

// ParseFileSpecs parses a comma-separated OBS_LOG_FILES value. Each entry
// is either "service=path" or a bare path, in which case the service
// defaults to "accesslog".
func ParseFileSpecs(raw string) []FileSpec {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var specs []FileSpec
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if idx := strings.IndexByte(part, '='); idx >= 0 {
			specs = append(specs, FileSpec{Service: part[:idx], Path: part[idx+1:]})
		} else {
			specs = append(specs, FileSpec{Service: "accesslog", Path: part})
		}
	}
	return specs
}

// Tailer runs one follower goroutine per configured file.
type Tailer struct {
	c   *collector.Collector
	log *slog.Logger
}

// New creates a Tailer that injects parsed events into c.
func New(c *collector.Collector, log *slog.Logger) *Tailer {
	return &Tailer{c: c, log: log}
}

// Start launches one follower goroutine per entry in specs. Every
// goroutine exits when ctx is cancelled.
func (t *Tailer) Start(ctx context.Context, specs []FileSpec, fromStart bool) {
	for _, spec := range specs {
		go t.follow(ctx, spec, fromStart)
	}
}

func (t *Tailer) follow(ctx context.Context, spec FileSpec, fromStart bool) {
	for {
		if ctx.Err() != nil {
			return
		}
		f, err := os.Open(spec.Path)
		if err != nil {
			t.log.Warn("tailer: open failed, retrying", "path", spec.Path, "err", err)
			if !sleepOrDone(ctx, time.Second) {
				return
			}
			continue
		}

		if !fromStart {
			f.Seek(0, io.SeekEnd)
		}
		t.readLines(ctx, f, spec)
		f.Close()

		if ctx.Err() != nil {
			return
		}
	}
}

// readLines reads lines from f until ctx is cancelled or a read error
// other than EOF occurs (e.g. the file was removed), in which case the
// caller reopens it. A trailing partial line at EOF is held in pending
// across retries rather than discarded, so a line split across two writes
// is still parsed whole once the rest arrives.
func (t *Tailer) readLines(ctx context.Context, f *os.File, spec FileSpec) {
	buf := make([]byte, 64*1024)
	var pending []byte

	for {
		if ctx.Err() != nil {
			return
		}
		n, err := f.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
			for {
				idx := bytes.IndexByte(pending, '\n')
				if idx < 0 {
					break
				}
				line := strings.TrimRight(string(pending[:idx]), "\r")
				pending = pending[idx+1:]
				if line == "" {
					continue
				}
				if ev, ok := parseLine(spec.Service, line); ok {
					t.c.Ingest(ev)
				}
			}
		}
		if err != nil {
			if err != io.EOF {
				return
			}
			if !sleepOrDone(ctx, 200*time.Millisecond) {
				return
			}
		}
	}
}

func sleepOrDone(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
