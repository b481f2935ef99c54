package job

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Reclaimer removes expired state: finished job records past the retention
// window, and PDF files in the output directory whose modification time is
// past the window. The file sweep is independent of job records on purpose,
// so orphans left by a crashed run are collected too.
type Reclaimer struct {
	registry  *Registry
	outputDir string
	retention time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewReclaimer creates a Reclaimer over the given registry and output
// directory.
func NewReclaimer(registry *Registry, outputDir string, retention time.Duration, logger *slog.Logger) *Reclaimer {
	return &Reclaimer{
		registry:  registry,
		outputDir: outputDir,
		retention: retention,
		logger:    logger.With(slog.String("component", "reclaimer")),
		now:       time.Now,
	}
}

// Sweep runs one reclaim pass. Deletion errors are logged and never abort
// the sweep. Safe to call concurrently and idempotent when nothing aged.
func (r *Reclaimer) Sweep() {
	cutoff := r.now().Add(-r.retention)

	if evicted := r.registry.EvictOlderThan(cutoff); evicted > 0 {
		r.logger.Info("evicted expired job records", slog.Int("count", evicted))
	}

	r.sweepFiles(cutoff)
}

// Run executes Sweep on the given interval until ctx is canceled. The
// startup catch-up sweep is the caller's responsibility.
func (r *Reclaimer) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("reclaimer stopped")
			return
		case <-ticker.C:
			r.Sweep()
			r.logger.Debug("scheduled reclaim sweep completed")
		}
	}
}

// sweepFiles deletes every PDF in the output directory older than cutoff,
// whether or not a job record still references it.
func (r *Reclaimer) sweepFiles(cutoff time.Time) {
	entries, err := os.ReadDir(r.outputDir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			r.logger.Warn("cannot scan output directory",
				slog.String("dir", r.outputDir), slog.Any("error", err))
		}
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".pdf") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// File may have vanished between ReadDir and Info.
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		path := filepath.Join(r.outputDir, entry.Name())
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			r.logger.Warn("cannot delete expired PDF",
				slog.String("path", path), slog.Any("error", err))
			continue
		}
		r.logger.Debug("deleted expired PDF", slog.String("name", entry.Name()))
	}
}
