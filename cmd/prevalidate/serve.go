package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/prevalidate/internal/core"
	"github.com/JonMunkholm/prevalidate/internal/logging"
	"github.com/JonMunkholm/prevalidate/internal/metrics"
	"github.com/JonMunkholm/prevalidate/internal/storage"
	"github.com/JonMunkholm/prevalidate/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP validation service",
	Long: `Run the HTTP validation service.

Routes:
  POST /api/validate   JSON request in, JSON report out
  GET  /api/status     validation slot occupancy
  GET  /               validation form
  POST /validate       form submission, HTML report
  GET  /healthz        liveness, 503 while draining
  GET  /metrics        prometheus metrics

On SIGINT or SIGTERM the server stops accepting validations and waits up to
SERVER_SHUTDOWN_TIMEOUT for running ones to finish.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	store, err := openStore(cmd.Context(), cfg.Storage)
	if err != nil {
		return err
	}
	defer storage.Close(store)

	limiter := core.NewValidationLimiter(cfg.Validation.MaxConcurrent, cfg.Validation.MaxWaitTime)
	opts := []core.ServiceOption{core.WithLimiter(limiter)}

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector(cfg.Metrics, prometheus.NewRegistry())
		collector.TrackLimiter(limiter)
		opts = append(opts, core.WithObserver(collector.RecordValidation))
	}

	svc := core.NewService(store, limitsFrom(cfg.Validation), opts...)
	server := web.NewServer(svc, collector, cfg.Server, cfg.Security)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go core.StartTempSweeper(sweepCtx, core.SweepConfig{
		Dir:           cfg.Validation.TempDir,
		MaxAge:        cfg.Validation.TempMaxAge,
		CheckInterval: cfg.Validation.TempSweepInterval,
	})

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()

		slog.Info("shutting down...", "active_validations", limiter.ActiveCount())
		stopSweep()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil {
		return err
	}
	<-done
	slog.Info("server stopped")
	return nil
}
