package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/labelpress/labelpress/internal/api"
	apiMiddleware "github.com/labelpress/labelpress/internal/api/middleware"
	"github.com/labelpress/labelpress/internal/domain"
)

// setupRouter configures the application router with all routes and
// middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.Trace)

	jobsHandler := api.NewJobsHandler(
		app.manager,
		app.templates,
		app.cfg.Paths.OutputDir,
		domain.RequestLimits{
			MaxRowsPerJob:   app.cfg.Limits.MaxLabelsPerJob,
			MaxFieldsPerRow: app.cfg.Limits.MaxFieldsPerLabel,
			MaxFieldLength:  app.cfg.Limits.MaxFieldLength,
		},
		app.cfg.Limits.MaxRequestBytes,
	)
	templatesHandler := api.NewTemplatesHandler(app.templates)
	healthHandler := api.NewHealthHandler(app.manager)

	r.Route("/labels", func(r chi.Router) {
		r.Post("/print", jobsHandler.SubmitJob)
		r.Get("/jobs", jobsHandler.ListJobs)
		r.Get("/jobs/{jobID}", jobsHandler.GetJob)
		r.Get("/jobs/{jobID}/stream", jobsHandler.StreamJob)
		r.Get("/jobs/{jobID}/download", jobsHandler.DownloadJob)
		r.Get("/templates", templatesHandler.ListTemplates)
		r.Get("/templates/{templateName}", templatesHandler.GetTemplate)
	})

	r.Get("/healthz", healthHandler.Health)

	return r
}
