package usecase

import (
	"log/slog"
	"math"

	"github.com/kirillkom/curve-comment-classifier/internal/core/domain"
)

// Labeler assigns standard labels to new comments by cosine
// nearest-neighbor lookup against the reference corpus, without
// re-running global clustering. Pure given its inputs.
type Labeler struct {
	threshold float64
	labelMap  domain.LabelMap
	corpus    *domain.ReferenceCorpus
}

func NewLabeler(threshold float64, labelMap domain.LabelMap, corpus *domain.ReferenceCorpus) *Labeler {
	return &Labeler{
		threshold: threshold,
		labelMap:  labelMap,
		corpus:    corpus,
	}
}

// AssignLabels returns one label per record, order-preserving.
// embeddings parallels records. Blank comments and comments whose best
// match falls below the threshold get the fallback label; so does a
// nearest neighbor whose cluster id was never curated into the map.
// An empty reference corpus labels everything fallback rather than
// attempting similarity against zero rows.
func (l *Labeler) AssignLabels(records []domain.CommentRecord, embeddings [][]float32) []string {
	labels := make([]string, len(records))
	for i, rec := range records {
		labels[i] = l.assignOne(rec, embeddings[i])
	}
	return labels
}

func (l *Labeler) assignOne(rec domain.CommentRecord, embedding []float32) string {
	if domain.IsBlankComment(rec.RawComment) {
		return domain.FallbackLabel
	}
	if l.corpus.Len() == 0 {
		return domain.FallbackLabel
	}

	best, bestIdx := nearestNeighbor(embedding, l.corpus.Embeddings)
	if best < l.threshold {
		return domain.FallbackLabel
	}

	clusterID := l.corpus.ClusterIDs[bestIdx]
	label, mapped := l.labelMap.Resolve(clusterID)
	if !mapped {
		slog.Warn("unmapped_cluster_id",
			"cluster_id", clusterID,
			"similarity", best,
			"curve", rec.Curve,
		)
	}
	return label
}

// nearestNeighbor returns the maximum cosine similarity and its index,
// ties broken by the lowest index.
func nearestNeighbor(query []float32, matrix [][]float32) (float64, int) {
	best := math.Inf(-1)
	bestIdx := 0
	for i, row := range matrix {
		if sim := cosineSimilarity(query, row); sim > best {
			best = sim
			bestIdx = i
		}
	}
	return best, bestIdx
}

func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
