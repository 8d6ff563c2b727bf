package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/kirillkom/curve-comment-classifier/internal/core/domain"
)

type buildFixture struct {
	uc        *BuildUseCase
	reader    *fakeReader
	writer    *fakeWriter
	embedder  *fakeEmbedder
	clusterer *fakeClusterer
	artifacts *fakeArtifacts
	hierarchy *fakeHierarchyStore
	pivot     *fakePivotWriter
	archive   *fakeArchive
}

func newBuildFixture() *buildFixture {
	f := &buildFixture{
		reader:    &fakeReader{},
		writer:    &fakeWriter{},
		embedder:  &fakeEmbedder{},
		clusterer: &fakeClusterer{},
		artifacts: &fakeArtifacts{labelMap: axisLabelMap()},
		hierarchy: &fakeHierarchyStore{},
		pivot:     &fakePivotWriter{},
		archive:   &fakeArchive{},
	}
	f.uc = NewBuildUseCase(
		f.reader, f.writer, fakeNormalizer{}, f.embedder, f.clusterer,
		f.artifacts, f.hierarchy, NewProjector(), f.pivot, f.archive,
		1.5, "out/labeled.csv", "out/pivot.xlsx",
	)
	return f
}

func TestBuildClustersLabelsAndPersists(t *testing.T) {
	f := newBuildFixture()
	f.reader.records = []domain.CommentRecord{
		{Source: "desk", Curve: "EUR.OIS", GroupingVar: "tenor", Date: "2026-01-05", RawComment: "Broker refresh."},
		{Source: "desk", Curve: "EUR.OIS", GroupingVar: "tenor", Date: "2026-01-06", RawComment: "Vendor feed moved."},
	}
	f.embedder.vectors = [][]float32{{1, 0}, {0, 1}}
	f.clusterer.ids = []int{0, 1}

	summary, err := f.uc.Build(context.Background(), "in/dataset.csv")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if summary.Records != 2 || summary.Appended != 2 || summary.Clusters != 2 {
		t.Fatalf("summary = %+v, want 2 records in 2 clusters", summary)
	}

	if f.clusterer.threshold != 1.5 {
		t.Fatalf("distance threshold = %v, want 1.5", f.clusterer.threshold)
	}
	if len(f.clusterer.vectors) != 2 {
		t.Fatalf("clusterer received %d vectors", len(f.clusterer.vectors))
	}

	if f.artifacts.savedCorpus == nil || f.artifacts.savedCorpus.Len() != 2 {
		t.Fatalf("saved corpus = %+v, want 2 rows", f.artifacts.savedCorpus)
	}
	if f.artifacts.savedCorpus.ClusterIDs[0] != 0 || f.artifacts.savedCorpus.ClusterIDs[1] != 1 {
		t.Fatalf("corpus ids = %v", f.artifacts.savedCorpus.ClusterIDs)
	}

	if f.writer.path != "out/labeled.csv" || len(f.writer.records) != 2 {
		t.Fatalf("labeled dataset write: path=%q records=%d", f.writer.path, len(f.writer.records))
	}
	if f.writer.records[0].StandardLabel != "broker quote update" {
		t.Fatalf("labeled record = %+v", f.writer.records[0])
	}

	entries := f.hierarchy.saved["desk"]["EUR.OIS"]["tenor"]
	if len(entries) != 2 {
		t.Fatalf("saved hierarchy has %d entries, want 2", len(entries))
	}
	if f.pivot.path != "out/pivot.xlsx" || len(f.pivot.table.Rows) != 1 {
		t.Fatalf("pivot export: path=%q rows=%d", f.pivot.path, len(f.pivot.table.Rows))
	}
	if f.archive.runID != summary.RunID {
		t.Fatalf("archive run id %q, summary %q", f.archive.runID, summary.RunID)
	}
}

func TestBuildSortsHierarchyByDateAscending(t *testing.T) {
	f := newBuildFixture()
	f.reader.records = []domain.CommentRecord{
		{Source: "desk", Curve: "EUR.OIS", GroupingVar: "tenor", Date: "2026-02-10", RawComment: "later"},
		{Source: "desk", Curve: "EUR.OIS", GroupingVar: "tenor", Date: "2026-01-03", RawComment: "earlier"},
		{Source: "desk", Curve: "EUR.OIS", GroupingVar: "tenor", Date: "", RawComment: "undated"},
	}
	f.embedder.vectors = [][]float32{{1, 0}, {1, 0}, {1, 0}}
	f.clusterer.ids = []int{0, 0, 0}

	if _, err := f.uc.Build(context.Background(), "in/dataset.csv"); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	entries := f.hierarchy.saved["desk"]["EUR.OIS"]["tenor"]
	if len(entries) != 3 {
		t.Fatalf("leaf has %d entries, want 3", len(entries))
	}
	got := []string{entries[0].Comment, entries[1].Comment, entries[2].Comment}
	want := []string{"undated", "earlier", "later"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry order = %v, want %v", got, want)
		}
	}
}

func TestBuildUnmappedClusterFallsBack(t *testing.T) {
	f := newBuildFixture()
	f.reader.records = []domain.CommentRecord{
		{Source: "desk", Curve: "EUR.OIS", GroupingVar: "tenor", Date: "2026-01-05", RawComment: "odd one out"},
	}
	f.embedder.vectors = [][]float32{{1, 0}}
	f.clusterer.ids = []int{domain.NoiseClusterID}

	summary, err := f.uc.Build(context.Background(), "in/dataset.csv")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if summary.FallbackLabels != 1 {
		t.Fatalf("FallbackLabels = %d, want 1", summary.FallbackLabels)
	}
	if f.writer.records[0].StandardLabel != domain.FallbackLabel {
		t.Fatalf("label = %q, want fallback", f.writer.records[0].StandardLabel)
	}
}

func TestBuildClustererFailureLeavesStoresUntouched(t *testing.T) {
	f := newBuildFixture()
	f.reader.records = []domain.CommentRecord{
		{Source: "desk", Curve: "EUR.OIS", GroupingVar: "tenor", RawComment: "x"},
	}
	f.embedder.vectors = [][]float32{{1, 0}}
	f.clusterer.err = errors.New("cluster service down")

	_, err := f.uc.Build(context.Background(), "in/dataset.csv")
	if !domain.IsKind(err, domain.ErrCollaborator) {
		t.Fatalf("Build() error = %v, want collaborator kind", err)
	}
	if f.hierarchy.saved != nil || f.artifacts.savedCorpus != nil || f.pivot.table != nil {
		t.Fatal("stores mutated after cluster failure")
	}
	if f.archive.calls != 0 {
		t.Fatal("archive called after cluster failure")
	}
}

func TestBuildIDCountMismatch(t *testing.T) {
	f := newBuildFixture()
	f.reader.records = []domain.CommentRecord{
		{Source: "desk", Curve: "EUR.OIS", GroupingVar: "tenor", RawComment: "a"},
		{Source: "desk", Curve: "EUR.OIS", GroupingVar: "tenor", RawComment: "b"},
	}
	f.embedder.vectors = [][]float32{{1, 0}, {0, 1}}
	f.clusterer.ids = []int{0}

	if _, err := f.uc.Build(context.Background(), "in/dataset.csv"); !domain.IsKind(err, domain.ErrCollaborator) {
		t.Fatalf("Build() error = %v, want collaborator kind", err)
	}
}

func TestBuildMissingLabelMapFails(t *testing.T) {
	f := newBuildFixture()
	f.artifacts.labelMapErr = domain.WrapError(domain.ErrConfiguration, "load label map", errors.New("no such file"))

	if _, err := f.uc.Build(context.Background(), "in/dataset.csv"); !domain.IsKind(err, domain.ErrConfiguration) {
		t.Fatalf("Build() error = %v, want configuration kind", err)
	}
	if f.reader.path != "" {
		t.Fatal("reader called before label map check")
	}
}
