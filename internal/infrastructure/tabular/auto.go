package tabular

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/kirillkom/curve-comment-classifier/internal/core/domain"
	"github.com/kirillkom/curve-comment-classifier/internal/core/ports"
)

// AutoReader dispatches to a concrete reader by file extension, so the
// pipelines accept CSV and Excel inputs interchangeably. Unknown
// extensions go to the CSV reader, which rejects non-tabular input with
// a parse error anyway.
type AutoReader struct {
	csv   ports.TabularReader
	excel ports.TabularReader
}

func NewAutoReader(csv, excel ports.TabularReader) *AutoReader {
	return &AutoReader{csv: csv, excel: excel}
}

func (r *AutoReader) ReadComments(ctx context.Context, path string) ([]domain.CommentRecord, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xls":
		return r.excel.ReadComments(ctx, path)
	default:
		return r.csv.ReadComments(ctx, path)
	}
}
