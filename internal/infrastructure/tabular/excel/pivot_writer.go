package excel

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/curve-comment-classifier/internal/core/domain"
)

const pivotSheet = "Sheet1"

// PivotWriter exports the pivoted comments table as an XLSX workbook.
// The workbook is purely for human review and is rewritten wholesale on
// every run.
type PivotWriter struct{}

func NewPivotWriter() *PivotWriter {
	return &PivotWriter{}
}

func (w *PivotWriter) WritePivot(_ context.Context, table *domain.PivotTable, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]any, len(table.Columns))
	for i, col := range table.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(pivotSheet, "A1", &header); err != nil {
		return fmt.Errorf("write pivot header: %w", err)
	}

	for i, row := range table.Rows {
		cells := make([]any, len(row))
		for j, cell := range row {
			cells[j] = cell
		}
		anchor, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("pivot row anchor: %w", err)
		}
		if err := f.SetSheetRow(pivotSheet, anchor, &cells); err != nil {
			return fmt.Errorf("write pivot row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save pivot workbook: %w", err)
	}
	return nil
}
