package render

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/labelpress/labelpress/internal/domain"
)

// WriteCSV writes rows to path as UTF-8 CSV with a header line. Columns
// follow fieldOrder exactly; fields absent from a row are written empty.
func WriteCSV(rows []domain.Row, fieldOrder []string, path string) error {
	if len(rows) == 0 {
		return domain.ErrNoRows
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write(fieldOrder); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	record := make([]string, len(fieldOrder))
	for _, row := range rows {
		for i, key := range fieldOrder {
			record[i] = row.StringValue(key)
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return f.Close()
}
