package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/labelpress/labelpress/internal/domain"
	"github.com/labelpress/labelpress/internal/render"
)

// Generator abstracts the render service for the manager (and its tests).
type Generator interface {
	Generate(ctx context.Context, jobID string, req domain.PrintRequest, filename string) error
}

// ManagerConfig holds scheduler settings. Workers must already be resolved
// to a positive count; auto-detection happens at wiring time.
type ManagerConfig struct {
	// Workers is the worker pool size, fixed for the manager's lifetime.
	Workers int

	// QueueSize is the submission queue capacity.
	QueueSize int

	// ShutdownGrace bounds how long Stop waits for the queue to drain
	// before forcing workers down.
	ShutdownGrace time.Duration

	// CleanupInterval is how often the periodic reclaim sweep runs.
	CleanupInterval time.Duration
}

// Manager owns the job lifecycle end to end: submission, scheduling onto the
// worker pool, status bookkeeping, and reclamation.
type Manager struct {
	registry  *Registry
	queue     *Queue
	generator Generator
	reclaimer *Reclaimer
	cfg       ManagerConfig
	logger    *slog.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	inflight atomic.Int64
	stopOnce sync.Once
	now      func() time.Time
}

// NewManager creates a Manager. Call Start to launch the workers.
func NewManager(
	registry *Registry,
	generator Generator,
	reclaimer *Reclaimer,
	cfg ManagerConfig,
	logger *slog.Logger,
) *Manager {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		registry:  registry,
		queue:     NewQueue(cfg.QueueSize, logger),
		generator: generator,
		reclaimer: reclaimer,
		cfg:       cfg,
		logger:    logger.With(slog.String("component", "job_manager")),
		ctx:       ctx,
		cancel:    cancel,
		now:       time.Now,
	}
}

// Start runs a catch-up reclaim sweep, then launches the worker pool and the
// periodic reclaim loop.
func (m *Manager) Start() {
	m.reclaimer.Sweep()

	for i := 0; i < m.cfg.Workers; i++ {
		m.wg.Add(1)
		go m.worker(i)
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.reclaimer.Run(m.ctx, m.cfg.CleanupInterval)
	}()

	m.logger.Info("job manager started", slog.Int("workers", m.cfg.Workers))
}

// Stop shuts the manager down: it lets the queue drain for the configured
// grace period, then cancels the workers (killing any in-flight subprocess)
// and waits for them to exit. Idempotent.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		deadline := time.Now().Add(m.cfg.ShutdownGrace)
		drained := false
		for time.Now().Before(deadline) {
			if m.queue.Len() == 0 && m.inflight.Load() == 0 {
				drained = true
				break
			}
			time.Sleep(50 * time.Millisecond)
		}
		if drained {
			m.logger.Info("queue drained before shutdown")
		} else {
			m.logger.Warn("shutdown grace period reached, forcing workers down",
				slog.Int("queued", m.queue.Len()),
				slog.Int64("inflight", m.inflight.Load()))
		}

		m.cancel()
		m.wg.Wait()
		m.queue.Close()
		m.logger.Info("job manager stopped")
	})
}

// Submit creates a pending job for the request and enqueues it. The returned
// job is immediately visible via Job and List. Fails only when the queue is
// at capacity or closed; the record is rolled back in that case.
func (m *Manager) Submit(req domain.PrintRequest) (domain.Job, error) {
	outputName := render.OutputFilename(req.TemplateName, m.now())
	j := m.registry.Create(req, outputName)

	item := queueItem{jobID: j.ID, request: req, outputName: outputName}
	if err := m.queue.Enqueue(item); err != nil {
		m.registry.Delete(j.ID)
		return domain.Job{}, fmt.Errorf("failed to enqueue job: %w", err)
	}

	m.logger.Info("job submitted",
		slog.String("job_id", j.ID.String()),
		slog.String("template", req.TemplateName),
		slog.Int("labels", len(req.Data)))
	return j, nil
}

// Job returns a copy of the job with the given ID.
func (m *Manager) Job(id uuid.UUID) (domain.Job, bool) {
	return m.registry.Get(id)
}

// List returns up to limit jobs, most recently submitted first.
func (m *Manager) List(limit int) []domain.Job {
	return m.registry.List(limit)
}

// TotalSubmitted returns the lifetime submitted-jobs counter.
func (m *Manager) TotalSubmitted() int64 {
	return m.registry.TotalSubmitted()
}

// worker is the processing loop: dequeue, process to a terminal state,
// repeat. It only exits on shutdown.
func (m *Manager) worker(id int) {
	defer m.wg.Done()

	log := m.logger.With(slog.Int("worker_id", id))
	log.Debug("worker started")

	for {
		select {
		case <-m.ctx.Done():
			log.Debug("worker stopped")
			return
		case item, ok := <-m.queue.Chan():
			if !ok {
				log.Debug("queue closed, worker stopped")
				return
			}
			m.process(item, log)
		}
	}
}

// process drives one job to a terminal state. Nothing in here may crash the
// worker loop: panics and errors both end as a failed record.
func (m *Manager) process(item queueItem, log *slog.Logger) {
	m.inflight.Add(1)
	defer m.inflight.Add(-1)

	log = log.With(slog.String("job_id", item.jobID.String()))

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("panic while processing job", slog.Any("panic", rec))
			if err := m.registry.SetFailed(item.jobID, fmt.Sprintf("unexpected error: %v", rec)); err != nil {
				log.Error("cannot record panic failure", slog.Any("error", err))
			}
		}
	}()

	if err := m.registry.SetRunning(item.jobID); err != nil {
		log.Error("cannot mark job running", slog.Any("error", err))
		return
	}

	log.Debug("processing job", slog.String("template", item.request.TemplateName))

	err := m.generator.Generate(m.ctx, item.jobID.String(), item.request, item.outputName)

	switch {
	case err == nil:
		if updateErr := m.registry.SetDone(item.jobID); updateErr != nil {
			log.Error("cannot mark job done", slog.Any("error", updateErr))
		}
		log.Info("job completed", slog.String("output", item.outputName))

	case m.ctx.Err() != nil && errors.Is(err, context.Canceled):
		// Forced shutdown killed the work mid-flight. The record stays
		// running; nothing persists across restarts anyway.
		log.Warn("job abandoned by shutdown")
		return

	default:
		if updateErr := m.registry.SetFailed(item.jobID, err.Error()); updateErr != nil {
			log.Error("cannot mark job failed", slog.Any("error", updateErr))
		}
		log.Error("job failed", slog.Any("error", err))
	}

	// Prompt reclamation so short-lived deployments still clean up.
	m.reclaimer.Sweep()
}
