package ports

import (
	"context"

	"github.com/kirillkom/curve-comment-classifier/internal/core/domain"
)

// BatchSummary reports what a pipeline run did, for logging and metrics.
type BatchSummary struct {
	RunID          string
	Records        int
	Appended       int
	SkippedNoCurve int
	FallbackLabels int
	Clusters       int

	// HierarchyEntries is the document's total entry count after the
	// run, for runs that touch the hierarchy.
	HierarchyEntries int
}

// CorpusBuilder is the inbound contract for the initial build: cluster
// the full dataset, bind the curated label map, and construct the
// hierarchy and reference corpus from scratch.
type CorpusBuilder interface {
	Build(ctx context.Context, inputPath string) (*BatchSummary, error)
}

// BatchClassifier is the inbound contract for incremental runs: label new
// comments against the stored reference corpus and append them to the
// hierarchy.
type BatchClassifier interface {
	Classify(ctx context.Context, inputPath string) (*BatchSummary, error)
}

// DatasetAppender merges a new spreadsheet drop into the accumulated
// tabular dataset used for future rebuilds.
type DatasetAppender interface {
	Append(ctx context.Context, excelPath string) (*BatchSummary, error)
}

// HierarchyProjector rebuilds the pivot view from the full hierarchy.
type HierarchyProjector interface {
	Project(hierarchy domain.Hierarchy) *domain.PivotTable
}
