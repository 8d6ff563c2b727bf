package domain

// PivotTable is the disposable, date-columned flattening of a hierarchy
// used for spreadsheet export. Rebuilt in full on every projection.
type PivotTable struct {
	// Columns holds the three key columns first, then every distinct
	// date value observed in the document, ascending as strings. An
	// empty-string date column sorts before all real dates.
	Columns []string
	// Rows are aligned with Columns; cells without a value are "".
	Rows [][]string
}

// KeyColumns are the leading non-date columns of every pivot table.
var KeyColumns = []string{"source", "curve", "grouping_var"}
