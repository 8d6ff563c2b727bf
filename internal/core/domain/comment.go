package domain

import (
	"strconv"
	"strings"
)

// FallbackLabel is assigned when a comment cannot be matched to any
// curated cluster: empty text, similarity below threshold, or an
// unmapped cluster id.
const FallbackLabel = "Not Reviewed / Evidenced"

// PlaceholderComment is stored in the hierarchy when a record carries no
// comment text, so "no text" stays distinguishable from "not processed".
const PlaceholderComment = "[Not Reviewed / Evidenced]"

// NoiseClusterID is the reserved id for points the build-time clusterer
// declined to place in any cluster.
const NoiseClusterID = -1

// CommentRecord is one analyst comment attached to a curve, enriched
// progressively by the pipeline stages. Never mutated after labeling.
type CommentRecord struct {
	Source      string `json:"source"`
	Curve       string `json:"curve"`
	GroupingVar string `json:"grouping_var"`

	// Date is an ISO YYYY-MM-DD string, or "" when the input date was
	// missing or unparsable. Kept as a string so serialized artifacts
	// stay portable.
	Date string `json:"date"`

	RawComment string `json:"comment"`
	Normalized string `json:"normalized_comment,omitempty"`

	Embedding     []float32 `json:"-"`
	ClusterID     int       `json:"cluster_id,omitempty"`
	StandardLabel string    `json:"standard_label,omitempty"`
}

// CommentText returns the text to file into the hierarchy: the raw
// comment, or the placeholder sentinel when it is blank.
func (r CommentRecord) CommentText() string {
	if IsBlankComment(r.RawComment) {
		return PlaceholderComment
	}
	return r.RawComment
}

// LabelMap binds stringified cluster ids to curated category labels.
// Human-curated once at build time, read-only afterwards.
type LabelMap map[string]string

// Resolve returns the label for a cluster id, or the fallback label when
// the id was never curated.
func (m LabelMap) Resolve(clusterID int) (string, bool) {
	label, ok := m[strconv.Itoa(clusterID)]
	if !ok || label == "" {
		return FallbackLabel, false
	}
	return label, true
}

// ReferenceCorpus is the persisted embedding matrix and parallel cluster
// id list produced at build time; incremental runs match against it
// without recomputing historical embeddings.
type ReferenceCorpus struct {
	Embeddings [][]float32 `json:"embeddings"`
	ClusterIDs []int       `json:"cluster_ids"`
}

func (c *ReferenceCorpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Embeddings)
}

// IsBlankComment reports whether a raw comment carries no usable text.
// The literal "nan" shows up in datasets that round-tripped through
// earlier tooling and is treated as missing.
func IsBlankComment(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	return trimmed == "" || trimmed == "nan"
}

