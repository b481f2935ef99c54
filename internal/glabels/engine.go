// Package glabels wraps the glabels-3-batch command line tool, which renders
// a CSV of label rows against a .glabels template into a PDF.
//
// The engine owns the subprocess lifecycle: concurrency is capped with a
// semaphore, every invocation has a deadline, and on expiry the process is
// killed and reaped so no zombie remains. Callers supply the CSV and template
// and must ensure the output directory exists.
package glabels

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"golang.org/x/sync/semaphore"
)

// logTruncate bounds stdout/stderr chunks written to the debug log.
const logTruncate = 4096

// Config holds the engine settings.
type Config struct {
	// Binary is the glabels-3-batch executable name or path.
	Binary string

	// MaxParallel caps concurrent glabels processes.
	MaxParallel int

	// DefaultTimeout applies when a run does not specify its own timeout.
	DefaultTimeout time.Duration

	// OutputPollAttempts and OutputPollInterval configure the wait for the
	// output file after a zero exit code. glabels occasionally returns
	// before the file is flushed to disk.
	OutputPollAttempts int
	OutputPollInterval time.Duration
}

// RunParams describes a single glabels invocation.
type RunParams struct {
	OutputPDF    string
	TemplatePath string
	CSVPath      string

	// Copies maps to --copies when greater than one.
	Copies int

	// Timeout overrides the engine default when non-zero.
	Timeout time.Duration
}

// Engine executes glabels-3-batch with bounded concurrency.
type Engine struct {
	cfg    Config
	sem    *semaphore.Weighted
	logger *slog.Logger
}

// NewEngine creates an Engine from the given config.
func NewEngine(cfg Config, logger *slog.Logger) *Engine {
	if cfg.MaxParallel < 1 {
		cfg.MaxParallel = 1
	}
	return &Engine{
		cfg:    cfg,
		sem:    semaphore.NewWeighted(int64(cfg.MaxParallel)),
		logger: logger.With(slog.String("component", "glabels_engine")),
	}
}

// Run executes glabels-3-batch to render params.CSVPath against
// params.TemplatePath into params.OutputPDF.
//
// Returns nil on success. Failure modes:
//   - *TimeoutError when the deadline expires (process killed and reaped)
//   - *ExecutionError on non-zero exit, or zero exit with no output file
//   - a wrapped context error when ctx is canceled (e.g. shutdown)
func (e *Engine) Run(ctx context.Context, params RunParams) error {
	if _, err := os.Stat(params.TemplatePath); err != nil {
		return fmt.Errorf("glabels template not found: %w", err)
	}
	if _, err := os.Stat(params.CSVPath); err != nil {
		return fmt.Errorf("glabels input CSV not found: %w", err)
	}

	if err := e.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("glabels run canceled while waiting for slot: %w", err)
	}
	defer e.sem.Release(1)

	timeout := params.Timeout
	if timeout == 0 {
		timeout = e.cfg.DefaultTimeout
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := []string{"-o", params.OutputPDF, "-i", params.CSVPath, params.TemplatePath}
	if params.Copies > 1 {
		args = append(args, fmt.Sprintf("--copies=%d", params.Copies))
	}

	cmd := exec.CommandContext(runCtx, e.cfg.Binary, args...)
	// Give the process a moment to die after the kill signal; Wait then
	// reaps it unconditionally.
	cmd.WaitDelay = 5 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.logger.Debug("running glabels",
		slog.String("binary", e.cfg.Binary),
		slog.Any("args", args),
		slog.Duration("timeout", timeout))

	runErr := cmd.Run()

	if runCtx.Err() == context.DeadlineExceeded {
		return &TimeoutError{Timeout: timeout}
	}
	if ctx.Err() != nil {
		return fmt.Errorf("glabels run canceled: %w", ctx.Err())
	}

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			return fmt.Errorf("failed to run glabels: %w", runErr)
		}
	}

	// glabels sometimes exits zero before the PDF is flushed to disk; give
	// the filesystem a short, configurable window to catch up.
	exists := e.waitForOutput(runCtx, params.OutputPDF, exitCode == 0)

	if exitCode != 0 || !exists {
		return &ExecutionError{ExitCode: exitCode, Stderr: stderr.String()}
	}

	e.logger.Debug("glabels done", slog.String("output", params.OutputPDF))
	if s := stdout.String(); s != "" {
		e.logger.Debug("glabels stdout", slog.String("output", truncate(s, logTruncate)))
	}
	if s := stderr.String(); s != "" {
		e.logger.Debug("glabels stderr", slog.String("output", truncate(s, logTruncate)))
	}

	return nil
}

// waitForOutput reports whether the output file exists, polling briefly when
// poll is true to absorb filesystem flush delay.
func (e *Engine) waitForOutput(ctx context.Context, path string, poll bool) bool {
	if fileExists(path) {
		return true
	}
	if !poll {
		return false
	}

	for i := 0; i < e.cfg.OutputPollAttempts; i++ {
		select {
		case <-ctx.Done():
			return fileExists(path)
		case <-time.After(e.cfg.OutputPollInterval):
		}
		if fileExists(path) {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
