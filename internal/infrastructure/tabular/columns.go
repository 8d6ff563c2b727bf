package tabular

import (
	"fmt"
	"strings"
	"time"

	"github.com/kirillkom/curve-comment-classifier/internal/core/domain"
)

// Required columns for every ingest entry point. `curve_list` is the
// historical column name for the curve identifier.
const (
	ColSource      = "source"
	ColDate        = "date"
	ColCurve       = "curve_list"
	ColComment     = "comment"
	ColGroupingVar = "grouping_var"
)

var RequiredColumns = []string{ColSource, ColDate, ColCurve, ColComment, ColGroupingVar}

// ColumnIndex maps a header row to column positions, trimming stray
// whitespace in header cells. A missing required column is a
// configuration error, not a recoverable condition.
func ColumnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, required := range RequiredColumns {
		if _, ok := index[required]; !ok {
			return nil, domain.WrapError(domain.ErrConfiguration, "validate columns",
				fmt.Errorf("required column %q is missing", required))
		}
	}
	return index, nil
}

// Cell returns the value at a column for a row, tolerating short rows.
func Cell(row []string, index map[string]int, column string) string {
	i, ok := index[column]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// dateLayouts are tried in order, day-first where ambiguous, matching how
// the accumulated datasets were written over the years.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"02.01.2006",
}

// ParseDate normalizes a raw date cell to ISO YYYY-MM-DD. Unparsable or
// empty input yields ("", false); callers store the empty string and log
// the data-quality note.
func ParseDate(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "nan" {
		return "", false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}
