package usecase

import (
	"fmt"
	"sort"

	"github.com/kirillkom/curve-comment-classifier/internal/core/domain"
)

// Projector flattens the hierarchy document into the date-columned pivot
// table. Rebuilt in full on every call; nothing is patched incrementally.
type Projector struct{}

func NewProjector() *Projector {
	return &Projector{}
}

// Project emits one row per (source, curve, grouping_var) leaf. Each
// entry fills the column named by its date with "[label] comment"; when
// two entries in one leaf share a date, the later one wins. Date columns
// sort ascending as strings, which for ISO dates is chronological; an
// empty-string date column sorts first and is a known artifact of
// records with unparsable dates.
func (p *Projector) Project(hierarchy domain.Hierarchy) *domain.PivotTable {
	dateSet := map[string]struct{}{}
	hierarchy.Walk(func(_, _, _ string, entries []domain.Entry) {
		for _, e := range entries {
			dateSet[e.Date] = struct{}{}
		}
	})

	dates := make([]string, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	dateCol := make(map[string]int, len(dates))
	for i, d := range dates {
		dateCol[d] = len(domain.KeyColumns) + i
	}

	columns := append(append([]string{}, domain.KeyColumns...), dates...)
	table := &domain.PivotTable{Columns: columns}

	hierarchy.Walk(func(source, curve, groupingVar string, entries []domain.Entry) {
		row := make([]string, len(columns))
		row[0], row[1], row[2] = source, curve, groupingVar
		for _, e := range entries {
			row[dateCol[e.Date]] = fmt.Sprintf("[%s] %s", e.StandardLabel, e.Comment)
		}
		table.Rows = append(table.Rows, row)
	})

	return table
}
