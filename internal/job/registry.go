package job

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/labelpress/labelpress/internal/domain"
)

// Registry errors.
var (
	// ErrNotFound is returned when no job with the given ID exists.
	ErrNotFound = errors.New("job not found")

	// ErrInvalidTransition is returned when a status change would leave a
	// terminal state or skip the running state.
	ErrInvalidTransition = errors.New("invalid job status transition")
)

// maxErrorLen bounds the failure message stored on a job record.
const maxErrorLen = 2048

// Registry is the in-memory store of job records. It exclusively owns the
// records: every Job handed out is a copy, and all mutation goes through the
// Set* methods under one lock.
type Registry struct {
	mu             sync.Mutex
	jobs           map[uuid.UUID]*domain.Job
	totalSubmitted int64
	logger         *slog.Logger
	now            func() time.Time
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		jobs:   make(map[uuid.UUID]*domain.Job),
		logger: logger.With(slog.String("component", "job_registry")),
		now:    time.Now,
	}
}

// Create inserts a new pending job for the given request and returns a copy
// of the record. IDs are generated here and never reused.
func (r *Registry) Create(req domain.PrintRequest, outputName string) domain.Job {
	r.mu.Lock()
	defer r.mu.Unlock()

	j := &domain.Job{
		ID:         uuid.New(),
		Status:     domain.JobStatusPending,
		Template:   req.TemplateName,
		OutputName: outputName,
		CreatedAt:  r.now().UTC(),
		Request:    req,
	}
	r.jobs[j.ID] = j
	r.totalSubmitted++

	return snapshot(j)
}

// Get returns a copy of the job with the given ID.
func (r *Registry) Get(id uuid.UUID) (domain.Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[id]
	if !ok {
		return domain.Job{}, false
	}
	return snapshot(j), true
}

// List returns up to limit jobs ordered by creation time, most recent first.
func (r *Registry) List(limit int) []domain.Job {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := make([]domain.Job, 0, len(r.jobs))
	for _, j := range r.jobs {
		all = append(all, snapshot(j))
	}
	sort.Slice(all, func(i, k int) bool {
		return all[i].CreatedAt.After(all[k].CreatedAt)
	})

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all
}

// SetRunning transitions a pending job to running and stamps StartedAt.
// Exactly one worker performs this per job.
func (r *Registry) SetRunning(id uuid.UUID) error {
	return r.transition(id, domain.JobStatusPending, func(j *domain.Job) {
		j.Status = domain.JobStatusRunning
		t := r.now().UTC()
		j.StartedAt = &t
	})
}

// SetDone transitions a running job to done and stamps FinishedAt.
func (r *Registry) SetDone(id uuid.UUID) error {
	return r.transition(id, domain.JobStatusRunning, func(j *domain.Job) {
		j.Status = domain.JobStatusDone
		t := r.now().UTC()
		j.FinishedAt = &t
	})
}

// SetFailed transitions a running job to failed, stamps FinishedAt, and
// stores a bounded-length failure message.
func (r *Registry) SetFailed(id uuid.UUID, message string) error {
	if len(message) > maxErrorLen {
		message = message[:maxErrorLen] + "..."
	}
	return r.transition(id, domain.JobStatusRunning, func(j *domain.Job) {
		j.Status = domain.JobStatusFailed
		j.Error = message
		t := r.now().UTC()
		j.FinishedAt = &t
	})
}

// transition applies mutate under the lock iff the job exists and currently
// holds the expected status. This is what prevents resurrecting terminal jobs.
func (r *Registry) transition(id uuid.UUID, expect domain.JobStatus, mutate func(*domain.Job)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if j.Status != expect {
		return fmt.Errorf("%w: job %s is %s, expected %s", ErrInvalidTransition, id, j.Status, expect)
	}
	mutate(j)
	return nil
}

// Delete removes a job record regardless of state. Used to roll back a
// record whose enqueue failed.
func (r *Registry) Delete(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, id)
}

// EvictOlderThan removes every finished job whose FinishedAt is before
// cutoff and returns the number removed. Pending and running jobs are never
// evicted regardless of age.
func (r *Registry) EvictOlderThan(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, j := range r.jobs {
		if j.FinishedAt != nil && j.FinishedAt.Before(cutoff) {
			delete(r.jobs, id)
			evicted++
			r.logger.Debug("evicted expired job", slog.String("job_id", id.String()))
		}
	}
	return evicted
}

// Len returns the number of tracked job records.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}

// TotalSubmitted returns the lifetime count of submitted jobs. Resets on
// process restart, like everything else here.
func (r *Registry) TotalSubmitted() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.totalSubmitted
}

// snapshot copies a record, detaching the timestamp pointers so callers
// cannot reach back into registry-owned memory.
func snapshot(j *domain.Job) domain.Job {
	out := *j
	if j.StartedAt != nil {
		t := *j.StartedAt
		out.StartedAt = &t
	}
	if j.FinishedAt != nil {
		t := *j.FinishedAt
		out.FinishedAt = &t
	}
	return out
}
