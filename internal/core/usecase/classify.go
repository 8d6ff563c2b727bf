package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/kirillkom/curve-comment-classifier/internal/core/domain"
	"github.com/kirillkom/curve-comment-classifier/internal/core/ports"
)

// ClassifyUseCase runs an incremental batch: label new comments against
// the stored reference corpus and append them to the hierarchy. All
// labels are computed before the store is touched, so a collaborator
// failure leaves every persisted artifact in its last-known-good state.
type ClassifyUseCase struct {
	reader     ports.TabularReader
	normalizer ports.Normalizer
	embedder   ports.Embedder
	artifacts  ports.ArtifactStore
	hierarchy  ports.HierarchyStore
	projector  ports.HierarchyProjector
	pivot      ports.PivotWriter
	archive    ports.CommentArchive

	threshold float64
	pivotPath string
}

func NewClassifyUseCase(
	reader ports.TabularReader,
	normalizer ports.Normalizer,
	embedder ports.Embedder,
	artifacts ports.ArtifactStore,
	hierarchy ports.HierarchyStore,
	projector ports.HierarchyProjector,
	pivot ports.PivotWriter,
	archive ports.CommentArchive,
	threshold float64,
	pivotPath string,
) *ClassifyUseCase {
	return &ClassifyUseCase{
		reader:     reader,
		normalizer: normalizer,
		embedder:   embedder,
		artifacts:  artifacts,
		hierarchy:  hierarchy,
		projector:  projector,
		pivot:      pivot,
		archive:    archive,
		threshold:  threshold,
		pivotPath:  pivotPath,
	}
}

func (uc *ClassifyUseCase) Classify(ctx context.Context, inputPath string) (*ports.BatchSummary, error) {
	summary := &ports.BatchSummary{RunID: uuid.NewString()}

	labelMap, err := uc.artifacts.LoadLabelMap(ctx)
	if err != nil {
		return nil, fmt.Errorf("load label map: %w", err)
	}
	corpus, err := uc.artifacts.LoadCorpus(ctx)
	if err != nil {
		return nil, fmt.Errorf("load reference corpus: %w", err)
	}

	records, err := uc.reader.ReadComments(ctx, inputPath)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	summary.Records = len(records)

	embeddings, err := uc.embedRecords(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}

	labeler := NewLabeler(uc.threshold, labelMap, corpus)
	labels := labeler.AssignLabels(records, embeddings)
	for i := range records {
		records[i].StandardLabel = labels[i]
		if labels[i] == domain.FallbackLabel {
			summary.FallbackLabels++
		}
	}

	if uc.archive != nil {
		if err := uc.archive.SaveBatch(ctx, summary.RunID, records); err != nil {
			return nil, fmt.Errorf("archive batch: %w", err)
		}
	}

	hierarchy, err := uc.appendToHierarchy(ctx, records, summary)
	if err != nil {
		return nil, fmt.Errorf("hierarchy update: %w", err)
	}

	table := uc.projector.Project(hierarchy)
	if err := uc.pivot.WritePivot(ctx, table, uc.pivotPath); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	return summary, nil
}

func (uc *ClassifyUseCase) embedRecords(ctx context.Context, records []domain.CommentRecord) ([][]float32, error) {
	texts := make([]string, len(records))
	for i, rec := range records {
		normalized := uc.normalizer.Normalize(rec.RawComment)
		records[i].Normalized = normalized
		texts[i] = normalized
	}

	embeddings, err := uc.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCollaborator, "embed comments", err)
	}
	if len(embeddings) != len(texts) {
		return nil, domain.WrapError(domain.ErrCollaborator, "embed comments",
			fmt.Errorf("vectors/texts mismatch: %d/%d", len(embeddings), len(texts)))
	}
	return embeddings, nil
}

// appendToHierarchy files the labeled batch in arrival order. Records
// without a curve identity cannot be filed and are skipped with a log
// entry, never silently dropped.
func (uc *ClassifyUseCase) appendToHierarchy(ctx context.Context, records []domain.CommentRecord, summary *ports.BatchSummary) (domain.Hierarchy, error) {
	hierarchy, err := uc.hierarchy.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load hierarchy: %w", err)
	}

	for _, rec := range records {
		entry := domain.Entry{
			Date:          rec.Date,
			Comment:       rec.CommentText(),
			StandardLabel: rec.StandardLabel,
		}
		if err := hierarchy.Append(rec.Source, rec.Curve, rec.GroupingVar, entry); err != nil {
			if domain.IsKind(err, domain.ErrMissingCurve) {
				summary.SkippedNoCurve++
				slog.Warn("hierarchy_append_skipped",
					"reason", "missing_curve",
					"source", rec.Source,
					"grouping_var", rec.GroupingVar,
					"date", rec.Date,
				)
				continue
			}
			return nil, fmt.Errorf("append entry: %w", err)
		}
		summary.Appended++
	}

	if err := uc.hierarchy.Save(ctx, hierarchy); err != nil {
		return nil, fmt.Errorf("save hierarchy: %w", err)
	}
	summary.HierarchyEntries = hierarchy.EntryCount()
	return hierarchy, nil
}
