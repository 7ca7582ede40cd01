package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"vaxledger/internal/app"
	"vaxledger/internal/platform/config"
	"vaxledger/internal/platform/logger"
)

// main loads config, builds the application and serves until SIGINT or
// SIGTERM. Business logic lives in the internal service packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	log.Info("initializing vaxledger",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"ledger_store", cfg.Ledger.Store,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	application, err := app.New(ctx, cfg, log, reg)
	if err != nil {
		log.Error("failed to build application", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		log.Error("failed to listen", "addr", cfg.Addr, "error", err)
		application.Close()
		os.Exit(1)
	}

	if err := application.Run(ctx, ln); err != nil {
		log.Error("server error", "error", err)
		application.Close()
		os.Exit(1)
	}
	log.Info("server stopped")
}
