package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/obsd/obsd/internal/collector"
	"github.com/obsd/obsd/internal/config"
	"github.com/obsd/obsd/internal/httpapi"
	"github.com/obsd/obsd/internal/snapshot"
	"github.com/obsd/obsd/internal/tailer"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:8090", "listen address")
	flag.Parse()

	cfg := config.FromEnv()
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	c := collector.New(cfg)
	srv := httpapi.New(c, cfg, log)

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "obsd: listen: %v\n", err)
		os.Exit(1)
	}
	log.Info("obsd listening", "addr", ln.Addr())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go c.Trend.Run(ctx, nowSeconds)

	t := tailer.New(c, log)
	t.Start(ctx, tailer.ParseFileSpecs(cfg.LogFiles), cfg.TailFromStart)

	snap := snapshot.New(c, cfg.SnapshotFile, time.Duration(cfg.SnapshotIntervalS)*time.Second, log, nowSeconds)
	go snap.Run(ctx)

	httpSrv := &http.Server{Handler: srv}

	serveErr := make(chan error, 1)
	go func() { serveErr <- httpSrv.Serve(ln) }()

	select {
	case <-ctx.Done():
		log.Info("obsd: signal received, shutting down")
	case err := <-serveErr:
		if err != nil && err != http.ErrServerClosed {
			log.Error("obsd: serve error", "err", err)
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	httpSrv.Shutdown(shutdownCtx)
}

func nowSeconds() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}
