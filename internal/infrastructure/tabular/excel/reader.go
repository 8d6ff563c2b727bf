package excel

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/curve-comment-classifier/internal/core/domain"
	"github.com/kirillkom/curve-comment-classifier/internal/infrastructure/tabular"
)

// Reader ingests comment rows from the first sheet of an XLSX workbook,
// the format analysts drop new data in.
type Reader struct{}

func NewReader() *Reader {
	return &Reader{}
}

func (r *Reader) ReadComments(_ context.Context, path string) ([]domain.CommentRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "read workbook", fmt.Errorf("no sheets in %s", path))
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, domain.WrapError(domain.ErrConfiguration, "read workbook", fmt.Errorf("empty sheet %s", sheets[0]))
	}

	index, err := tabular.ColumnIndex(rows[0])
	if err != nil {
		return nil, err
	}

	var records []domain.CommentRecord
	for i, row := range rows[1:] {
		rawDate := tabular.Cell(row, index, tabular.ColDate)
		date, ok := tabular.ParseDate(rawDate)
		if !ok && rawDate != "" {
			slog.Warn("unparsable_date", "file", path, "row", i+2, "value", rawDate)
		}

		records = append(records, domain.CommentRecord{
			Source:      tabular.Cell(row, index, tabular.ColSource),
			Curve:       tabular.Cell(row, index, tabular.ColCurve),
			GroupingVar: tabular.Cell(row, index, tabular.ColGroupingVar),
			Date:        date,
			RawComment:  tabular.Cell(row, index, tabular.ColComment),
		})
	}
	return records, nil
}
