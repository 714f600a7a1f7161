package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/obsd/obsd/internal/collector"
	"github.com/obsd/obsd/internal/obsctx"
)

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}

	ev, err := collector.DecodeEvent(body)
	if err != nil {
		if errors.Is(err, collector.ErrUnknownKind) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "decode: "+err.Error())
		return
	}

	ctx := obsctx.With(r.Context(), obsctx.Fields{
		TraceID:   ev.TraceID,
		SpanID:    ev.SpanID,
		RequestID: ev.RequestID,
		Service:   ev.Service,
	})
	s.logIngest(ctx, ev)

	s.c.Ingest(ev)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// logIngest emits a debug-level line per ingested event carrying whatever
// trace/request identifiers it has. Kept at debug since wire ingest runs
// at request volume, not operator-visible volume.
func (s *Server) logIngest(ctx context.Context, ev collector.Event) {
	f := obsctx.From(ctx)
	s.log.DebugContext(ctx, "ingest",
		"kind", ev.Kind,
		"service", f.Service,
		"trace_id", f.TraceID,
		"request_id", f.RequestID,
	)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.c.GlobalSnapshot(nowSeconds()))
}

func (s *Server) handleEndpoints(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 0)
	sortBy := r.URL.Query().Get("sort_by")
	if sortBy == "" {
		sortBy = "p95"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"window_s":  s.cfg.WindowS,
		"endpoints": s.c.EndpointTable(nowSeconds(), limit, sortBy),
	})
}

func (s *Server) handleErrorSigs(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)
	writeJSON(w, http.StatusOK, map[string]any{
		"window_s":   s.cfg.WindowS,
		"signatures": s.c.TopErrorSignatures(limit),
	})
}

func (s *Server) handleTraces(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	slowLimit := queryInt(r, "slow_limit", 20)
	now := nowSeconds()
	writeJSON(w, http.StatusOK, map[string]any{
		"window_s": s.cfg.WindowS,
		"recent":   s.c.RecentRequests(now, limit),
		"top_slow": s.c.TopSlow(now, slowLimit),
	})
}

func (s *Server) handleTrace(w http.ResponseWriter, r *http.Request) {
	requestID := r.PathValue("request_id")
	bundle, ok := s.c.TraceBundle(requestID)
	if !ok {
		writeError(w, http.StatusNotFound, "no trace bundle for request_id "+requestID)
		return
	}
	writeJSON(w, http.StatusOK, bundle)
}
