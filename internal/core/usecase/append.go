package usecase

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/google/uuid"

	"github.com/kirillkom/curve-comment-classifier/internal/core/domain"
	"github.com/kirillkom/curve-comment-classifier/internal/core/ports"
)

// AppendUseCase merges a new Excel drop into the accumulated CSV dataset.
// Blanks in every column except the comment are filled with the fallback
// sentinel so downstream grouping never keys on empty strings; blank
// comments stay blank and pick up the placeholder at hierarchy time.
type AppendUseCase struct {
	excelReader ports.TabularReader
	csvReader   ports.TabularReader
	writer      ports.TabularWriter
	datasetPath string
}

func NewAppendUseCase(excelReader, csvReader ports.TabularReader, writer ports.TabularWriter, datasetPath string) *AppendUseCase {
	return &AppendUseCase{
		excelReader: excelReader,
		csvReader:   csvReader,
		writer:      writer,
		datasetPath: datasetPath,
	}
}

func (uc *AppendUseCase) Append(ctx context.Context, excelPath string) (*ports.BatchSummary, error) {
	summary := &ports.BatchSummary{RunID: uuid.NewString()}

	existing, err := uc.csvReader.ReadComments(ctx, uc.datasetPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read dataset: %w", err)
		}
		slog.Info("dataset_not_found_starting_fresh", "path", uc.datasetPath)
	}

	incoming, err := uc.excelReader.ReadComments(ctx, excelPath)
	if err != nil {
		return nil, fmt.Errorf("read excel drop: %w", err)
	}
	summary.Records = len(incoming)

	reportMissing(incoming)
	fillBlanks(incoming)

	merged := append(existing, incoming...)
	if err := uc.writer.WriteComments(ctx, uc.datasetPath, merged); err != nil {
		return nil, fmt.Errorf("rewrite dataset: %w", err)
	}
	summary.Appended = len(incoming)

	return summary, nil
}

func reportMissing(records []domain.CommentRecord) {
	counts := map[string]int{}
	for _, rec := range records {
		if rec.Source == "" {
			counts["source"]++
		}
		if rec.Date == "" {
			counts["date"]++
		}
		if rec.Curve == "" {
			counts["curve_list"]++
		}
		if domain.IsBlankComment(rec.RawComment) {
			counts["comment"]++
		}
		if rec.GroupingVar == "" {
			counts["grouping_var"]++
		}
	}
	for _, column := range []string{"source", "date", "curve_list", "comment", "grouping_var"} {
		slog.Info("missing_values", "column", column, "count", counts[column])
	}
}

func fillBlanks(records []domain.CommentRecord) {
	for i := range records {
		if records[i].Source == "" {
			records[i].Source = domain.FallbackLabel
		}
		if records[i].Date == "" {
			records[i].Date = domain.FallbackLabel
		}
		if records[i].Curve == "" {
			records[i].Curve = domain.FallbackLabel
		}
		if records[i].GroupingVar == "" {
			records[i].GroupingVar = domain.FallbackLabel
		}
	}
}
