package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/labelpress/labelpress/internal/api/shared"
	"github.com/labelpress/labelpress/internal/domain"
)

// defaultListLimit caps job listings when no limit parameter is given.
const defaultListLimit = 10

// JobService is the slice of the job manager the handlers need.
type JobService interface {
	Submit(req domain.PrintRequest) (domain.Job, error)
	Job(id uuid.UUID) (domain.Job, bool)
	List(limit int) []domain.Job
	TotalSubmitted() int64
}

// TemplateDirectory answers whether a template can be printed from.
type TemplateDirectory interface {
	Exists(name string) bool
}

// JobsHandler handles job-related HTTP requests: submission, status,
// streaming, download, and listing.
type JobsHandler struct {
	jobs      JobService
	templates TemplateDirectory
	outputDir string
	limits    domain.RequestLimits
	maxBody   int64

	// streamInterval is how often the SSE stream re-reads job status.
	streamInterval time.Duration
}

// NewJobsHandler creates a JobsHandler.
func NewJobsHandler(
	jobs JobService,
	templates TemplateDirectory,
	outputDir string,
	limits domain.RequestLimits,
	maxBody int64,
) *JobsHandler {
	return &JobsHandler{
		jobs:           jobs,
		templates:      templates,
		outputDir:      outputDir,
		limits:         limits,
		maxBody:        maxBody,
		streamInterval: time.Second,
	}
}

// SubmitJob handles POST /labels/print requests. Accepted jobs return 202
// with the job ID; processing happens asynchronously.
func (h *JobsHandler) SubmitJob(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)

	var req domain.PrintRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			shared.RespondWithError(w, r, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	// Omitted copies means one copy per label.
	if req.Copies == 0 {
		req.Copies = 1
	}

	if err := req.Validate(h.limits); err != nil {
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
		return
	}

	// Reject unknown templates at submission instead of letting the job
	// fail minutes later in the queue.
	if !h.templates.Exists(req.TemplateName) {
		shared.RespondWithError(w, r, http.StatusNotFound,
			"Template not found: "+req.TemplateName)
		return
	}

	j, err := h.jobs.Submit(req)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, SubmitResponse{
		JobID:   j.ID,
		Message: "Job submitted successfully",
	})
}

// GetJob handles GET /labels/jobs/{jobID} requests.
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	j, ok := h.lookupJob(w, r)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, j)
}

// ListJobs handles GET /labels/jobs requests, newest first.
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		limit = parsed
	}
	shared.RespondWithJSON(w, r, http.StatusOK, h.jobs.List(limit))
}

// StreamJob handles GET /labels/jobs/{jobID}/stream requests. It emits a
// Server-Sent Events stream: a status event on every status change, closing
// when the job reaches a terminal state or the client disconnects.
func (h *JobsHandler) StreamJob(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.lookupJob(w, r); !ok {
		return
	}
	id, _ := jobIDParam(r)

	flusher, ok := w.(http.Flusher)
	if !ok {
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	// Disable nginx buffering.
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	ticker := time.NewTicker(h.streamInterval)
	defer ticker.Stop()

	var last domain.JobStatus
	for {
		j, found := h.jobs.Job(id)
		if !found {
			// Reclaimed mid-stream.
			fmt.Fprint(w, "event: error\ndata: Job not found or expired\n\n")
			flusher.Flush()
			return
		}

		if j.Status != last {
			payload, err := json.Marshal(j)
			if err != nil {
				return
			}
			fmt.Fprintf(w, "event: status\ndata: %s\n\n", payload)
			flusher.Flush()
			last = j.Status
		}

		if j.Status.Terminal() {
			return
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

// DownloadJob handles GET /labels/jobs/{jobID}/download requests. The PDF is
// only served once the job is done; a missing file means the retention sweep
// already reclaimed it.
func (h *JobsHandler) DownloadJob(w http.ResponseWriter, r *http.Request) {
	j, ok := h.lookupJob(w, r)
	if !ok {
		return
	}

	if j.Status != domain.JobStatusDone {
		shared.RespondWithError(w, r, http.StatusConflict, "Job not finished or file unavailable")
		return
	}

	path := filepath.Join(h.outputDir, j.OutputName)
	if _, err := os.Stat(path); err != nil {
		shared.RespondWithError(w, r, http.StatusGone, "File has been deleted")
		return
	}

	disposition := "attachment"
	if r.URL.Query().Get("preview") == "true" {
		disposition = "inline"
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, j.OutputName))
	http.ServeFile(w, r, path)
}

// lookupJob resolves the jobID path parameter to a job snapshot, writing a
// 404 response when the ID is malformed or unknown. Job IDs are opaque to
// clients, so a malformed ID is indistinguishable from a missing job.
func (h *JobsHandler) lookupJob(w http.ResponseWriter, r *http.Request) (domain.Job, bool) {
	id, ok := jobIDParam(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusNotFound, "Job not found")
		return domain.Job{}, false
	}
	j, found := h.jobs.Job(id)
	if !found {
		shared.RespondWithError(w, r, http.StatusNotFound, "Job not found")
		return domain.Job{}, false
	}
	return j, true
}

func jobIDParam(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "jobID"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
