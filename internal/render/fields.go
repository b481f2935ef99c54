// Package render turns print requests into PDF files: it encodes label rows
// as CSV, splits oversized requests into batches, drives the glabels engine
// for each batch in parallel, and merges the per-batch PDFs into the final
// output.
package render

import "github.com/labelpress/labelpress/internal/domain"

// CollectFieldNames returns the union of field names across all rows, in
// first-seen order. Every batch of a split job uses this single ordering so
// that all per-batch CSVs share one column layout and the merged output
// matches what an unsplit run would have produced.
func CollectFieldNames(rows []domain.Row) []string {
	seen := make(map[string]struct{})
	var order []string
	for _, row := range rows {
		for _, key := range row.Keys() {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			order = append(order, key)
		}
	}
	return order
}

// Chunk partitions rows into consecutive chunks of at most size rows, with
// the final chunk holding the remainder. A size of zero (or less) disables
// splitting and yields a single chunk. Chunks alias the input slice; callers
// must not mutate the rows afterwards.
func Chunk(rows []domain.Row, size int) [][]domain.Row {
	if size <= 0 || len(rows) <= size {
		return [][]domain.Row{rows}
	}

	chunks := make([][]domain.Row, 0, (len(rows)+size-1)/size)
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		chunks = append(chunks, rows[start:end])
	}
	return chunks
}
