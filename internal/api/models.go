package api

import (
	"github.com/google/uuid"
)

// Common request/response structures. Job status responses serialize
// domain.Job directly; its JSON shape is the wire contract.

// SubmitResponse defines the successful response for job submission.
type SubmitResponse struct {
	JobID   uuid.UUID `json:"job_id"`
	Message string    `json:"message"`
}

// HealthResponse defines the health endpoint payload.
type HealthResponse struct {
	Status string `json:"status"`

	// JobsTotal is the lifetime count of submitted jobs, a cheap liveness
	// signal for dashboards.
	JobsTotal int64 `json:"jobs_total"`
}
