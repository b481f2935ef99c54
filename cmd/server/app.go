package main

import (
	"log/slog"

	"github.com/labelpress/labelpress/internal/config"
	"github.com/labelpress/labelpress/internal/glabels"
	"github.com/labelpress/labelpress/internal/job"
	"github.com/labelpress/labelpress/internal/platform/cpuinfo"
	"github.com/labelpress/labelpress/internal/render"
	"github.com/labelpress/labelpress/internal/template"
)

// application holds the wired service dependencies.
type application struct {
	cfg       *config.Config
	logger    *slog.Logger
	templates *template.Service
	manager   *job.Manager
}

// newApplication wires configuration into the service graph: template
// resolution, the glabels engine, the render service, and the job manager.
func newApplication(cfg *config.Config, logger *slog.Logger) *application {
	workers := cfg.Jobs.MaxParallel
	if workers == 0 {
		// Auto: leave one CPU for the HTTP server and merge work.
		workers = cpuinfo.AvailableCPUs() - 1
		if workers < 1 {
			workers = 1
		}
	}
	logger.Info("worker pool sized",
		slog.Int("workers", workers),
		slog.Int("available_cpus", cpuinfo.AvailableCPUs()))

	templates := template.NewService(cfg.Paths.TemplatesDir, logger)

	engine := glabels.NewEngine(glabels.Config{
		Binary:             cfg.Glabels.Binary,
		MaxParallel:        workers,
		DefaultTimeout:     cfg.Glabels.Timeout,
		OutputPollAttempts: cfg.Glabels.OutputPollAttempts,
		OutputPollInterval: cfg.Glabels.OutputPollInterval,
	}, logger)

	renderer := render.NewService(engine, templates, render.Config{
		OutputDir:         cfg.Paths.OutputDir,
		TempDir:           cfg.Paths.TempDir,
		MaxLabelsPerBatch: cfg.Glabels.MaxLabelsPerBatch,
		KeepCSV:           cfg.Glabels.KeepCSV,
	}, logger)

	registry := job.NewRegistry(logger)
	reclaimer := job.NewReclaimer(registry, cfg.Paths.OutputDir, cfg.Jobs.Retention(), logger)
	manager := job.NewManager(registry, renderer, reclaimer, job.ManagerConfig{
		Workers:         workers,
		QueueSize:       cfg.Jobs.QueueSize,
		ShutdownGrace:   cfg.Server.ShutdownTimeout,
		CleanupInterval: cfg.Jobs.CleanupInterval,
	}, logger)

	return &application{
		cfg:       cfg,
		logger:    logger,
		templates: templates,
		manager:   manager,
	}
}
