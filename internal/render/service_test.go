package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labelpress/labelpress/internal/domain"
	"github.com/labelpress/labelpress/internal/glabels"
)

// fakeEngine copies the batch CSV into the output path so that tests can
// inspect exactly what each invocation would have rendered.
type fakeEngine struct {
	mu   sync.Mutex
	runs []fakeRun

	// failOn returns an error for specific params, nil otherwise.
	failOn func(params glabels.RunParams) error
}

type fakeRun struct {
	params  glabels.RunParams
	csvData string
}

func (f *fakeEngine) Run(ctx context.Context, params glabels.RunParams) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.failOn != nil {
		if err := f.failOn(params); err != nil {
			return err
		}
	}

	data, err := os.ReadFile(params.CSVPath)
	if err != nil {
		return err
	}
	if err := os.WriteFile(params.OutputPDF, data, 0o644); err != nil {
		return err
	}

	f.mu.Lock()
	f.runs = append(f.runs, fakeRun{params: params, csvData: string(data)})
	f.mu.Unlock()
	return nil
}

func (f *fakeEngine) runCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.runs)
}

type resolverFunc func(name string) (string, error)

func (fn resolverFunc) Resolve(name string) (string, error) { return fn(name) }

func fixedResolver(path string) resolverFunc {
	return func(string) (string, error) { return path, nil }
}

// concatMerge replaces the pdfcpu merge in tests: it concatenates the input
// files in order, which makes row ordering directly observable.
func concatMerge(inFiles []string, outFile string) error {
	var combined strings.Builder
	for _, in := range inFiles {
		data, err := os.ReadFile(in)
		if err != nil {
			return err
		}
		combined.Write(data)
	}
	return os.WriteFile(outFile, []byte(combined.String()), 0o644)
}

func newTestService(t *testing.T, engine Runner, maxPerBatch int, keepCSV bool) (*Service, Config) {
	t.Helper()
	cfg := Config{
		OutputDir:         filepath.Join(t.TempDir(), "output"),
		TempDir:           filepath.Join(t.TempDir(), "temp"),
		MaxLabelsPerBatch: maxPerBatch,
		KeepCSV:           keepCSV,
	}
	svc := NewService(engine, fixedResolver("demo.glabels"),
		cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.merge = concatMerge
	return svc, cfg
}

func requestWithRows(n int) domain.PrintRequest {
	rows := make([]domain.Row, n)
	for i := range rows {
		rows[i] = domain.NewRow("ITEM", fmt.Sprintf("A%03d", i), "CODE", fmt.Sprintf("X%03d", i))
	}
	return domain.PrintRequest{TemplateName: "demo.glabels", Data: rows, Copies: 1}
}

func TestServiceGenerate_SingleBatch(t *testing.T) {
	engine := &fakeEngine{}
	svc, cfg := newTestService(t, engine, 0, false)

	err := svc.Generate(context.Background(), "job1", requestWithRows(2), "out.pdf")
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(cfg.OutputDir, "out.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "ITEM,CODE\nA000,X000\nA001,X001\n", string(content))
	assert.Equal(t, 1, engine.runCount())

	// Temp CSV removed after the run.
	entries, err := os.ReadDir(cfg.TempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestServiceGenerate_KeepCSV(t *testing.T) {
	engine := &fakeEngine{}
	svc, cfg := newTestService(t, engine, 0, true)

	require.NoError(t, svc.Generate(context.Background(), "job1", requestWithRows(2), "out.pdf"))
	assert.FileExists(t, filepath.Join(cfg.TempDir, "job1.csv"))
}

func TestServiceGenerate_SplitAndMergePreservesOrder(t *testing.T) {
	engine := &fakeEngine{}
	svc, cfg := newTestService(t, engine, 3, false)

	err := svc.Generate(context.Background(), "job1", requestWithRows(7), "out.pdf")
	require.NoError(t, err)

	// Seven rows at three per batch: three engine invocations.
	assert.Equal(t, 3, engine.runCount())

	// Every batch CSV carries the identical header.
	engine.mu.Lock()
	for _, run := range engine.runs {
		assert.True(t, strings.HasPrefix(run.csvData, "ITEM,CODE\n"),
			"batch CSV must use the shared field order: %q", run.csvData)
	}
	engine.mu.Unlock()

	// The merged output holds all seven rows in the original order.
	content, err := os.ReadFile(filepath.Join(cfg.OutputDir, "out.pdf"))
	require.NoError(t, err)
	var dataLines []string
	for _, line := range strings.Split(strings.TrimSpace(string(content)), "\n") {
		if line != "ITEM,CODE" {
			dataLines = append(dataLines, line)
		}
	}
	require.Len(t, dataLines, 7)
	for i, line := range dataLines {
		assert.Equal(t, fmt.Sprintf("A%03d,X%03d", i, i), line)
	}

	// Batch intermediates are gone; only the final PDF remains.
	entries, err := os.ReadDir(cfg.OutputDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.pdf", entries[0].Name())
}

func TestServiceGenerate_EmptyRows(t *testing.T) {
	engine := &fakeEngine{}
	svc, _ := newTestService(t, engine, 0, false)

	err := svc.Generate(context.Background(), "job1", domain.PrintRequest{
		TemplateName: "demo.glabels",
		Copies:       1,
	}, "out.pdf")

	assert.ErrorIs(t, err, domain.ErrNoRows)
	assert.Zero(t, engine.runCount(), "producer must not be invoked for an empty request")
}

func TestServiceGenerate_ResolutionFailure(t *testing.T) {
	engine := &fakeEngine{}
	svc, _ := newTestService(t, engine, 0, false)
	svc.templates = resolverFunc(func(name string) (string, error) {
		return "", fmt.Errorf("template not found: %s", name)
	})

	err := svc.Generate(context.Background(), "job1", requestWithRows(1), "out.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "template resolution failed")
	assert.Zero(t, engine.runCount())
}

func TestServiceGenerate_BatchFailureCleansUp(t *testing.T) {
	engine := &fakeEngine{
		failOn: func(params glabels.RunParams) error {
			if strings.Contains(params.OutputPDF, "_batch1") {
				return &glabels.ExecutionError{ExitCode: 1, Stderr: "bad template field"}
			}
			return nil
		},
	}
	svc, cfg := newTestService(t, engine, 3, false)

	err := svc.Generate(context.Background(), "job1", requestWithRows(7), "out.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "label PDF generation failed")
	assert.Contains(t, err.Error(), "bad template field")

	// No final output, no leftover batch PDFs.
	entries, readErr := os.ReadDir(cfg.OutputDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestServiceGenerate_MergeFailureCleansUp(t *testing.T) {
	engine := &fakeEngine{}
	svc, cfg := newTestService(t, engine, 2, false)
	svc.merge = func([]string, string) error {
		return fmt.Errorf("%w: malformed page tree", ErrMerge)
	}

	err := svc.Generate(context.Background(), "job1", requestWithRows(5), "out.pdf")
	assert.ErrorIs(t, err, ErrMerge)

	entries, readErr := os.ReadDir(cfg.OutputDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "batch PDFs are cleaned up even when the merge fails")
}

func TestWrapRunError(t *testing.T) {
	t.Run("execution error embeds truncated stderr", func(t *testing.T) {
		execErr := &glabels.ExecutionError{
			ExitCode: 2,
			Stderr:   strings.Repeat("x", 5000),
		}
		wrapped := wrapRunError(execErr)

		assert.Less(t, len(wrapped.Error()), 1500)
		var target *glabels.ExecutionError
		require.ErrorAs(t, wrapped, &target)
		assert.Len(t, target.Stderr, 5000, "full stderr stays on the wrapped error")
	})

	t.Run("timeout error passes through", func(t *testing.T) {
		timeoutErr := &glabels.TimeoutError{Timeout: 1000000000}
		wrapped := wrapRunError(timeoutErr)
		assert.Contains(t, wrapped.Error(), "timed out")

		var target *glabels.TimeoutError
		assert.ErrorAs(t, wrapped, &target)
	})

	t.Run("context cancellation stays in chain", func(t *testing.T) {
		wrapped := wrapRunError(fmt.Errorf("glabels run canceled: %w", context.Canceled))
		assert.True(t, errors.Is(wrapped, context.Canceled))
	})
}
