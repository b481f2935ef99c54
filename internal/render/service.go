package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/labelpress/labelpress/internal/domain"
	"github.com/labelpress/labelpress/internal/glabels"
)

// stderrTruncate bounds the diagnostic excerpt embedded in a job's stored
// failure message. The full stderr stays available on the wrapped
// *glabels.ExecutionError.
const stderrTruncate = 1024

// Runner abstracts the glabels engine for the service (and its tests).
type Runner interface {
	Run(ctx context.Context, params glabels.RunParams) error
}

// TemplateResolver locates a template file by its submitted name.
type TemplateResolver interface {
	Resolve(name string) (string, error)
}

// Config holds render service settings.
type Config struct {
	OutputDir string
	TempDir   string

	// MaxLabelsPerBatch is the auto-split threshold; zero disables splitting.
	MaxLabelsPerBatch int

	// KeepCSV retains intermediate CSV files for debugging.
	KeepCSV bool
}

// Service generates the output PDF for one job, splitting oversized requests
// into parallel batches and merging the results.
type Service struct {
	engine    Runner
	templates TemplateResolver
	merge     func(inFiles []string, outFile string) error
	cfg       Config
	logger    *slog.Logger
}

// NewService creates a render Service. PDFs are merged with pdfcpu; tests
// swap the merge function.
func NewService(engine Runner, templates TemplateResolver, cfg Config, logger *slog.Logger) *Service {
	return &Service{
		engine:    engine,
		templates: templates,
		merge:     MergePDFs,
		cfg:       cfg,
		logger:    logger.With(slog.String("component", "render_service")),
	}
}

// Generate renders req into cfg.OutputDir/filename. It blocks until the PDF
// exists or an error occurred. All failure modes map onto the job's failed
// state by the caller; Generate itself never touches job records.
func (s *Service) Generate(ctx context.Context, jobID string, req domain.PrintRequest, filename string) error {
	if len(req.Data) == 0 {
		// The API layer rejects this before submission, but the core must
		// not invoke the producer on an empty request regardless.
		return domain.ErrNoRows
	}

	templatePath, err := s.templates.Resolve(req.TemplateName)
	if err != nil {
		return fmt.Errorf("template resolution failed: %w", err)
	}

	if err := os.MkdirAll(s.cfg.TempDir, 0o755); err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	if err := os.MkdirAll(s.cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	start := time.Now()
	outputPDF := filepath.Join(s.cfg.OutputDir, filename)
	chunks := Chunk(req.Data, s.cfg.MaxLabelsPerBatch)

	// One field ordering for every chunk, so all batch CSVs share the same
	// column layout.
	fieldOrder := CollectFieldNames(req.Data)

	log := s.logger.With(slog.String("job_id", jobID))

	if len(chunks) == 1 {
		if err := s.generateSingle(ctx, jobID, req, fieldOrder, templatePath, outputPDF); err != nil {
			return err
		}
		log.Info("label PDF generated",
			slog.Int("labels", len(req.Data)),
			slog.Duration("duration", time.Since(start)),
			slog.String("output", outputPDF))
		return nil
	}

	log.Info("splitting job into batches",
		slog.Int("labels", len(req.Data)),
		slog.Int("batches", len(chunks)),
		slog.Int("max_per_batch", s.cfg.MaxLabelsPerBatch))

	batchPDFs := make([]string, len(chunks))
	for i := range chunks {
		batchPDFs[i] = filepath.Join(s.cfg.OutputDir, fmt.Sprintf("%s_batch%d.pdf", jobID, i))
	}

	// Batch PDFs are intermediates; remove whatever exists whether the job
	// succeeded or not. Delete failures are logged, never fatal.
	defer func() {
		for _, path := range batchPDFs {
			if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
				log.Warn("cannot delete batch PDF", slog.String("path", path), slog.Any("error", err))
			}
		}
	}()

	// Run all batches concurrently; the engine's semaphore caps the real
	// process parallelism. The first failure cancels the sibling batches
	// through the group context, which also kills their subprocesses.
	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		g.Go(func() error {
			return s.generateBatch(gctx, jobID, i, chunk, fieldOrder, templatePath, req.Copies, batchPDFs[i])
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	mergeStart := time.Now()
	if err := s.merge(batchPDFs, outputPDF); err != nil {
		return err
	}

	log.Info("label PDF generated",
		slog.Int("labels", len(req.Data)),
		slog.Int("batches", len(chunks)),
		slog.Duration("merge_duration", time.Since(mergeStart)),
		slog.Duration("duration", time.Since(start)),
		slog.String("output", outputPDF))
	return nil
}

// generateSingle is the unsplit path: one CSV, one engine run.
func (s *Service) generateSingle(
	ctx context.Context,
	jobID string,
	req domain.PrintRequest,
	fieldOrder []string,
	templatePath, outputPDF string,
) error {
	csvPath := filepath.Join(s.cfg.TempDir, jobID+".csv")
	if err := WriteCSV(req.Data, fieldOrder, csvPath); err != nil {
		return fmt.Errorf("CSV encoding failed: %w", err)
	}
	defer s.cleanupCSV(csvPath)

	err := s.engine.Run(ctx, glabels.RunParams{
		OutputPDF:    outputPDF,
		TemplatePath: templatePath,
		CSVPath:      csvPath,
		Copies:       req.Copies,
	})
	if err != nil {
		return wrapRunError(err)
	}
	return nil
}

// generateBatch renders one chunk of a split job into its own PDF.
func (s *Service) generateBatch(
	ctx context.Context,
	jobID string,
	index int,
	chunk []domain.Row,
	fieldOrder []string,
	templatePath string,
	copies int,
	batchPDF string,
) error {
	csvPath := filepath.Join(s.cfg.TempDir, fmt.Sprintf("%s_batch%d.csv", jobID, index))
	if err := WriteCSV(chunk, fieldOrder, csvPath); err != nil {
		return fmt.Errorf("CSV encoding failed for batch %d: %w", index, err)
	}
	defer s.cleanupCSV(csvPath)

	s.logger.Debug("generating batch",
		slog.String("job_id", jobID),
		slog.Int("batch", index),
		slog.Int("labels", len(chunk)))

	err := s.engine.Run(ctx, glabels.RunParams{
		OutputPDF:    batchPDF,
		TemplatePath: templatePath,
		CSVPath:      csvPath,
		Copies:       copies,
	})
	if err != nil {
		return wrapRunError(err)
	}
	return nil
}

// cleanupCSV removes a temp CSV unless KeepCSV is set. Best effort.
func (s *Service) cleanupCSV(path string) {
	if s.cfg.KeepCSV {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("cannot delete temp CSV", slog.String("path", path), slog.Any("error", err))
	}
}

// wrapRunError converts an engine failure into the error stored on the job
// record, embedding a bounded stderr excerpt for execution failures while
// keeping the original error in the chain.
func wrapRunError(err error) error {
	var execErr *glabels.ExecutionError
	if errors.As(err, &execErr) && execErr.Stderr != "" {
		return fmt.Errorf("label PDF generation failed: %w (stderr: %s)",
			err, truncate(execErr.Stderr, stderrTruncate))
	}
	return fmt.Errorf("label PDF generation failed: %w", err)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
