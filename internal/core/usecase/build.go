package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/kirillkom/curve-comment-classifier/internal/core/domain"
	"github.com/kirillkom/curve-comment-classifier/internal/core/ports"
)

// BuildUseCase runs the initial construction: cluster the full dataset,
// bind the curated label map, and build the hierarchy and reference
// corpus from scratch. The label map itself is a human-curated input
// artifact; the build never infers it.
type BuildUseCase struct {
	reader     ports.TabularReader
	writer     ports.TabularWriter
	normalizer ports.Normalizer
	embedder   ports.Embedder
	clusterer  ports.Clusterer
	artifacts  ports.ArtifactStore
	hierarchy  ports.HierarchyStore
	projector  ports.HierarchyProjector
	pivot      ports.PivotWriter
	archive    ports.CommentArchive

	distanceThreshold float64
	labeledCSVPath    string
	pivotPath         string
}

func NewBuildUseCase(
	reader ports.TabularReader,
	writer ports.TabularWriter,
	normalizer ports.Normalizer,
	embedder ports.Embedder,
	clusterer ports.Clusterer,
	artifacts ports.ArtifactStore,
	hierarchy ports.HierarchyStore,
	projector ports.HierarchyProjector,
	pivot ports.PivotWriter,
	archive ports.CommentArchive,
	distanceThreshold float64,
	labeledCSVPath string,
	pivotPath string,
) *BuildUseCase {
	return &BuildUseCase{
		reader:            reader,
		writer:            writer,
		normalizer:        normalizer,
		embedder:          embedder,
		clusterer:         clusterer,
		artifacts:         artifacts,
		hierarchy:         hierarchy,
		projector:         projector,
		pivot:             pivot,
		archive:           archive,
		distanceThreshold: distanceThreshold,
		labeledCSVPath:    labeledCSVPath,
		pivotPath:         pivotPath,
	}
}

func (uc *BuildUseCase) Build(ctx context.Context, inputPath string) (*ports.BatchSummary, error) {
	summary := &ports.BatchSummary{RunID: uuid.NewString()}

	labelMap, err := uc.artifacts.LoadLabelMap(ctx)
	if err != nil {
		return nil, fmt.Errorf("load label map: %w", err)
	}

	records, err := uc.reader.ReadComments(ctx, inputPath)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	summary.Records = len(records)

	embeddings, err := uc.embedAll(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}

	clusterIDs, err := uc.cluster(ctx, embeddings)
	if err != nil {
		return nil, fmt.Errorf("cluster: %w", err)
	}

	uc.applyLabels(records, clusterIDs, labelMap, summary)

	if uc.archive != nil {
		if err := uc.archive.SaveBatch(ctx, summary.RunID, records); err != nil {
			return nil, fmt.Errorf("archive batch: %w", err)
		}
	}
	if uc.labeledCSVPath != "" {
		if err := uc.writer.WriteComments(ctx, uc.labeledCSVPath, records); err != nil {
			return nil, fmt.Errorf("write labeled dataset: %w", err)
		}
	}

	hierarchy, err := uc.buildHierarchy(records, summary)
	if err != nil {
		return nil, fmt.Errorf("hierarchy build: %w", err)
	}
	if err := uc.hierarchy.Save(ctx, hierarchy); err != nil {
		return nil, fmt.Errorf("save hierarchy: %w", err)
	}
	summary.HierarchyEntries = hierarchy.EntryCount()

	corpus := &domain.ReferenceCorpus{Embeddings: embeddings, ClusterIDs: clusterIDs}
	if err := uc.artifacts.SaveCorpus(ctx, corpus); err != nil {
		return nil, fmt.Errorf("save reference corpus: %w", err)
	}

	table := uc.projector.Project(hierarchy)
	if err := uc.pivot.WritePivot(ctx, table, uc.pivotPath); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	return summary, nil
}

func (uc *BuildUseCase) embedAll(ctx context.Context, records []domain.CommentRecord) ([][]float32, error) {
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

func (uc *BuildUseCase) cluster(ctx context.Context, embeddings [][]float32) ([]int, error) {
	clusterIDs, err := uc.clusterer.Cluster(ctx, embeddings, uc.distanceThreshold)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCollaborator, "cluster embeddings", err)
	}
	if len(clusterIDs) != len(embeddings) {
		return nil, domain.WrapError(domain.ErrCollaborator, "cluster embeddings",
			fmt.Errorf("ids/vectors mismatch: %d/%d", len(clusterIDs), len(embeddings)))
	}
	return clusterIDs, nil
}

func (uc *BuildUseCase) applyLabels(records []domain.CommentRecord, clusterIDs []int, labelMap domain.LabelMap, summary *ports.BatchSummary) {
	seen := map[int]struct{}{}
	for i := range records {
		records[i].ClusterID = clusterIDs[i]
		seen[clusterIDs[i]] = struct{}{}

		label, mapped := labelMap.Resolve(clusterIDs[i])
		if !mapped {
			slog.Warn("unmapped_cluster_id", "cluster_id", clusterIDs[i], "curve", records[i].Curve)
		}
		records[i].StandardLabel = label
		if label == domain.FallbackLabel {
			summary.FallbackLabels++
		}
	}
	summary.Clusters = len(seen)
}

// buildHierarchy constructs a fresh document from the batch sorted by
// date ascending; blank dates sort first. The sort is stable so records
// sharing a date keep their input order.
func (uc *BuildUseCase) buildHierarchy(records []domain.CommentRecord, summary *ports.BatchSummary) (domain.Hierarchy, error) {
	ordered := make([]domain.CommentRecord, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date < ordered[j].Date
	})

	hierarchy := domain.NewHierarchy()
	for _, rec := range ordered {
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
	return hierarchy, nil
}
