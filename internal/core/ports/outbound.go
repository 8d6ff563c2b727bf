package ports

import (
	"context"

	"github.com/kirillkom/curve-comment-classifier/internal/core/domain"
)

// Normalizer canonicalizes raw comment text before embedding.
type Normalizer interface {
	Normalize(text string) string
}

// Embedder maps normalized texts to fixed-length vectors, one per input,
// order-preserving.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Clusterer groups a batch of vectors with no preset cluster count,
// build phase only. The returned ids parallel the input rows;
// domain.NoiseClusterID marks points that joined no cluster.
type Clusterer interface {
	Cluster(ctx context.Context, vectors [][]float32, distanceThreshold float64) ([]int, error)
}

// TabularReader ingests comment rows from a tabular file. Implementations
// must reject inputs missing any of the required columns (source, date,
// curve_list, comment, grouping_var).
type TabularReader interface {
	ReadComments(ctx context.Context, path string) ([]domain.CommentRecord, error)
}

// TabularWriter persists comment rows back to a tabular file.
type TabularWriter interface {
	WriteComments(ctx context.Context, path string, records []domain.CommentRecord) error
}

// ArtifactStore persists the build-time artifacts that incremental runs
// depend on: the curated label map and the reference corpus.
type ArtifactStore interface {
	LoadLabelMap(ctx context.Context) (domain.LabelMap, error)
	SaveLabelMap(ctx context.Context, m domain.LabelMap) error
	LoadCorpus(ctx context.Context) (*domain.ReferenceCorpus, error)
	SaveCorpus(ctx context.Context, c *domain.ReferenceCorpus) error
}

// HierarchyStore loads and saves the hierarchy document wholesale. An
// absent backing file loads as an empty document.
type HierarchyStore interface {
	Load(ctx context.Context) (domain.Hierarchy, error)
	Save(ctx context.Context, h domain.Hierarchy) error
}

// PivotWriter exports a pivot table for human review.
type PivotWriter interface {
	WritePivot(ctx context.Context, table *domain.PivotTable, path string) error
}

// CommentArchive keeps the history of labeled batches for later audit and
// rebuilds. Optional: a nil archive disables archiving.
type CommentArchive interface {
	SaveBatch(ctx context.Context, runID string, records []domain.CommentRecord) error
}
