// Package main implements the label print server: it accepts batch label
// requests over HTTP, renders them to PDF with glabels-3-batch through a
// bounded worker pool, and serves the results until retention reclaims them.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labelpress/labelpress/internal/config"
	"github.com/labelpress/labelpress/internal/platform/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.Setup(cfg.Server.LogLevel)
	slog.Info("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("templates_dir", cfg.Paths.TemplatesDir),
		slog.String("output_dir", cfg.Paths.OutputDir))

	for _, dir := range []string{cfg.Paths.OutputDir, cfg.Paths.TempDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	app := newApplication(cfg, appLogger)
	app.manager.Start()

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           app.setupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("server listening", slog.String("addr", server.Addr))
		serverErr <- server.ListenAndServe()
	}()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.manager.Stop()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdownCh:
		appLogger.Info("shutdown signal received", slog.String("signal", sig.String()))
	}

	// Stop accepting requests first, then drain the job queue. The extra
	// margin covers open SSE streams that close on their next tick.
	shutdownCtx, cancel := context.WithTimeout(
		context.Background(), cfg.Server.ShutdownTimeout+5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server shutdown failed", slog.Any("error", err))
	}
	app.manager.Stop()

	appLogger.Info("server shutdown completed")
	return nil
}
