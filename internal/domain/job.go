package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the current state of a print job.
type JobStatus string

// Possible job status values. A job starts pending, is moved to running by
// exactly one worker, and ends in exactly one of done or failed.
const (
	JobStatusPending JobStatus = "pending"
	JobStatusRunning JobStatus = "running"
	JobStatusDone    JobStatus = "done"
	JobStatusFailed  JobStatus = "failed"
)

// Terminal reports whether the status is final. No transition leaves a
// terminal status.
func (s JobStatus) Terminal() bool {
	return s == JobStatusDone || s == JobStatusFailed
}

// Job is the unit tracked by the scheduler. The job registry exclusively owns
// Job records; everything handed out across the registry boundary is a copy.
type Job struct {
	ID         uuid.UUID  `json:"job_id"`
	Status     JobStatus  `json:"status"`
	Template   string     `json:"template"`
	OutputName string     `json:"filename"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`

	// Request is the originating print request, retained for diagnostics.
	Request PrintRequest `json:"-"`
}
