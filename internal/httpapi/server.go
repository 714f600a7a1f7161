// Package httpapi is the thin HTTP skin over the collector core: request
// routing, bearer auth, and JSON/SSE framing. None of the aggregation
// logic lives here — it only translates wire requests into collector
// calls and collector state into wire responses.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/obsd/obsd/internal/collector"
	"github.com/obsd/obsd/internal/config"
)

// Server is obsd's HTTP API. It implements http.Handler.
type Server struct {
	mux *http.ServeMux
	c   *collector.Collector
	cfg *config.Config
	log *slog.Logger
}

// New builds a Server and registers all routes.
func New(c *collector.Collector, cfg *config.Config, log *slog.Logger) *Server {
	s := &Server{
		mux: http.NewServeMux(),
		c:   c,
		cfg: cfg,
		log: log,
	}

	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.HandleFunc("POST /ingest", s.requireAuth(s.handleIngest))
	s.mux.HandleFunc("GET /stream", s.handleStream)
	s.mux.HandleFunc("GET /metrics", s.handleMetrics)
	s.mux.HandleFunc("GET /metrics/endpoints", s.handleEndpoints)
	s.mux.HandleFunc("GET /metrics/errorsigs", s.handleErrorSigs)
	s.mux.HandleFunc("GET /metrics/traces", s.handleTraces)
	s.mux.HandleFunc("GET /trace/{request_id}", s.handleTrace)

	return s
}

// ServeHTTP satisfies http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(auth, prefix) || auth[len(prefix):] != s.cfg.Token {
			writeError(w, http.StatusUnauthorized, "bad or missing bearer token")
			return
		}
		next(w, r)
	}
}

func nowSeconds() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
