package scanner

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docnav/internal/outline"
)

// csvBatchSize is the number of data rows grouped under one entry.
const csvBatchSize = 20

// CSV groups data rows into batches of csvBatchSize. Each batch becomes a
// level-1 entry "Rows a-b" (1-indexed file lines) starting at its first
// data row.
type CSV struct{}

func (s *CSV) Scan(ctx context.Context, src []byte) (Result, error) {
	lines := outline.NewLines(string(src))
	res := Result{Bounds: lines}

	reader := csv.NewReader(strings.NewReader(string(src)))
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	// Quoted fields may span lines, so batch starts come from the reader.
	var starts []int
	header := true
	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if _, err := reader.Read(); err != nil {
			if err == io.EOF {
				break
			}
			return res, fmt.Errorf("parse csv: %w", err)
		}
		line, _ := reader.FieldPos(0)
		if header {
			header = false
			continue
		}
		starts = append(starts, line-1)
	}

	for i := 0; i < len(starts); i += csvBatchSize {
		end := min(i+csvBatchSize, len(starts))
		row := starts[i]
		res.Entries = append(res.Entries, outline.RawEntry{
			RawLevel: 1,
			Text:     fmt.Sprintf("Rows %d-%d", i+2, end+1),
			Start:    outline.Position{Row: row},
			End:      outline.Position{Row: row, Column: lines.LineLength(row)},
		})
	}
	return res, nil
}
