package render

import (
	"errors"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ErrMerge is returned when combining per-batch PDFs into the final output
// fails. The job fails; batch files are still cleaned up best-effort.
var ErrMerge = errors.New("merging batch PDFs failed")

// MergePDFs concatenates the given PDF files into outFile, in slice order.
func MergePDFs(inFiles []string, outFile string) error {
	if err := api.MergeCreateFile(inFiles, outFile, false, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrMerge, err)
	}
	return nil
}
