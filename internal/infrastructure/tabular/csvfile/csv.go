package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/kirillkom/curve-comment-classifier/internal/core/domain"
	"github.com/kirillkom/curve-comment-classifier/internal/infrastructure/tabular"
)

// Reader ingests comment rows from a CSV file with the standard five
// columns.
type Reader struct{}

func NewReader() *Reader {
	return &Reader{}
}

func (r *Reader) ReadComments(_ context.Context, path string) ([]domain.CommentRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	index, err := tabular.ColumnIndex(header)
	if err != nil {
		return nil, err
	}

	var records []domain.CommentRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", line, err)
		}

		rawDate := tabular.Cell(row, index, tabular.ColDate)
		date, ok := tabular.ParseDate(rawDate)
		if !ok && rawDate != "" {
			slog.Warn("unparsable_date", "file", path, "line", line, "value", rawDate)
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

// Writer persists comment rows back to CSV in the standard column order,
// with the assigned label as a trailing column when present.
type Writer struct{}

func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) WriteComments(_ context.Context, path string, records []domain.CommentRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	header := append(append([]string{}, tabular.RequiredColumns...), "standard_label")
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, rec := range records {
		row := []string{rec.Source, rec.Date, rec.Curve, rec.RawComment, rec.GroupingVar, rec.StandardLabel}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
