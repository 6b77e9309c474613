// Package export renders grid rows as CSV and copies cells or whole
// exports to the system clipboard. Cell serialization is shared between
// the two paths so a single copied cell and a CSV field always agree.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/pgtui/gridq/grid"
	"github.com/pgtui/gridq/logger"
	"github.com/pgtui/gridq/rows"
)

// ErrTooManyRows is returned when an export exceeds the configured row
// limit. The export is refused rather than attempted.
var ErrTooManyRows = errors.New("export: too many rows")

// CellString serializes one cell value the same way for clipboard copy
// and CSV fields.
func CellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case bool:
		return strconv.FormatBool(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case map[string]any, []any:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// CSV renders a header of column keys followed by one line per record,
// in column order. A positive maxRows refuses larger exports with
// ErrTooManyRows.
func CSV(columns []grid.Column, records []rows.Record, maxRows int) (string, error) {
	if maxRows > 0 && len(records) > maxRows {
		return "", fmt.Errorf("%w: %d rows exceeds the limit of %d", ErrTooManyRows, len(records), maxRows)
	}

	var buf strings.Builder
	w := csv.NewWriter(&buf)

	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = c.Key
	}
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("export: write header: %w", err)
	}

	line := make([]string, len(columns))
	for _, r := range records {
		for i, c := range columns {
			line[i] = CellString(r.Data[c.Key])
		}
		if err := w.Write(line); err != nil {
			return "", fmt.Errorf("export: write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	return buf.String(), nil
}

// CopyCell puts one serialized cell value on the system clipboard.
func CopyCell(v any) error {
	return clipboard.WriteAll(CellString(v))
}

// CopyCSV renders records as CSV and puts the result on the system
// clipboard.
func CopyCSV(columns []grid.Column, records []rows.Record, maxRows int) error {
	out, err := CSV(columns, records, maxRows)
	if err != nil {
		return err
	}
	logger.Info("copied csv export", map[string]any{"rows": len(records)})
	return clipboard.WriteAll(out)
}
