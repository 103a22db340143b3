package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dwsmith1983/feedwatch/internal/alert"
	"github.com/dwsmith1983/feedwatch/internal/calendar"
	"github.com/dwsmith1983/feedwatch/internal/config"
	"github.com/dwsmith1983/feedwatch/internal/server"
	"github.com/dwsmith1983/feedwatch/internal/telemetry"
	"github.com/dwsmith1983/feedwatch/internal/watcher"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the feedwatch HTTP API and status watcher",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(dir)
		},
	}
	cmd.Flags().StringVar(&dir, "config", ".", "directory holding "+config.FileName)
	return cmd
}

func runServe(dir string) error {
	cfg, err := config.Load(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Logger
	logger, err := newLogger(cfg.Logging, os.Stderr)
	if err != nil {
		return err
	}
	ctx := context.Background()

	// Telemetry
	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("setting up telemetry: %w", err)
	}

	// Provider
	src, err := openSources(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("opening provider: %w", err)
	}
	defer src.close()

	svc, cleanup, err := newService(cfg, src, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	// Alerts
	dispatcher, err := alert.NewDispatcher(cfg.Alerts, logger)
	if err != nil {
		return fmt.Errorf("creating alert dispatcher: %w", err)
	}

	// Watcher
	var w *watcher.Watcher
	if cfg.Watcher.Enabled {
		w, err = watcher.New(svc, calendar.New(src.days), dispatcher.Dispatch, logger, *cfg.Watcher)
		if err != nil {
			return fmt.Errorf("creating watcher: %w", err)
		}
	}

	// Server
	srv := server.New(cfg.Server.Addr, svc, cfg.Server.APIKey,
		server.WithPinger(src.pinger),
		server.WithLogger(logger),
	)

	if w != nil {
		w.Start(ctx)
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		if w != nil {
			w.Stop(ctx)
		}
		_ = shutdownTelemetry(ctx)
		return err
	case sig := <-sigCh:
		color.Yellow("\nReceived %s, shutting down...", sig)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if w != nil {
			w.Stop(shutdownCtx)
		}
		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
		color.Green("Server stopped gracefully")
		return nil
	}
}
