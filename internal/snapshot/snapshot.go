// Package snapshot periodically writes the global metrics snapshot to disk
// so an operator without a dashboard can read the last written state. The
// file is only written, never read back: a restarted process starts from
// empty aggregates. It is not a durability guarantee either: whatever
// changed since the last tick is lost on crash.
package snapshot

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/obsd/obsd/internal/collector"
)

// Writer periodically marshals the collector's global snapshot to Path.
type Writer struct {
	c        *collector.Collector
	path     string
	interval time.Duration
	log      *slog.Logger
	now      func() float64
}

// New builds a Writer. If path is empty, Run is a no-op.
func New(c *collector.Collector, path string, interval time.Duration, log *slog.Logger, now func() float64) *Writer {
	return &Writer{c: c, path: path, interval: interval, log: log, now: now}
}

// Run writes a snapshot every interval until ctx is cancelled. Each write
// goes to a temp file in the same directory and is renamed into place, so
// a reader never observes a partially written snapshot.
func (w *Writer) Run(ctx context.Context) {
	if w.path == "" {
		return
	}
	if w.interval <= 0 {
		w.interval = 30 * time.Second
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.write()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.write()
		}
	}
}

func (w *Writer) write() {
	snap := w.c.GlobalSnapshot(w.now())
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		w.log.Warn("snapshot: marshal failed", "err", err)
		return
	}

	dir := filepath.Dir(w.path)
	tmp, err := os.CreateTemp(dir, ".snapshot-*.tmp")
	if err != nil {
		w.log.Warn("snapshot: create temp failed", "err", err)
		return
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		w.log.Warn("snapshot: write failed", "err", err)
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		w.log.Warn("snapshot: close temp failed", "err", err)
		return
	}
	if err := os.Rename(tmpName, w.path); err != nil {
		os.Remove(tmpName)
		w.log.Warn("snapshot: rename failed", "err", err)
	}
}
