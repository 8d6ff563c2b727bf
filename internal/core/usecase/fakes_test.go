package usecase

import (
	"context"
	"strings"

	"github.com/kirillkom/curve-comment-classifier/internal/core/domain"
)

type fakeReader struct {
	records []domain.CommentRecord
	err     error
	path    string
}

func (f *fakeReader) ReadComments(_ context.Context, path string) ([]domain.CommentRecord, error) {
	f.path = path
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.CommentRecord, len(f.records))
	copy(out, f.records)
	return out, nil
}

type fakeWriter struct {
	path    string
	records []domain.CommentRecord
	err     error
}

func (f *fakeWriter) WriteComments(_ context.Context, path string, records []domain.CommentRecord) error {
	if f.err != nil {
		return f.err
	}
	f.path = path
	f.records = append([]domain.CommentRecord{}, records...)
	return nil
}

type fakeNormalizer struct{}

func (fakeNormalizer) Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

type fakeEmbedder struct {
	vectors [][]float32
	err     error
	texts   []string
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.texts = texts
	if f.err != nil {
		return nil, f.err
	}
	return f.vectors, nil
}

type fakeClusterer struct {
	ids       []int
	err       error
	threshold float64
	vectors   [][]float32
}

func (f *fakeClusterer) Cluster(_ context.Context, vectors [][]float32, distanceThreshold float64) ([]int, error) {
	f.vectors = vectors
	f.threshold = distanceThreshold
	if f.err != nil {
		return nil, f.err
	}
	return f.ids, nil
}

type fakeArtifacts struct {
	labelMap    domain.LabelMap
	labelMapErr error
	corpus      *domain.ReferenceCorpus
	corpusErr   error
	savedCorpus *domain.ReferenceCorpus
	saveErr     error
}

func (f *fakeArtifacts) LoadLabelMap(context.Context) (domain.LabelMap, error) {
	return f.labelMap, f.labelMapErr
}

func (f *fakeArtifacts) SaveLabelMap(_ context.Context, m domain.LabelMap) error {
	f.labelMap = m
	return nil
}

func (f *fakeArtifacts) LoadCorpus(context.Context) (*domain.ReferenceCorpus, error) {
	if f.corpusErr != nil {
		return nil, f.corpusErr
	}
	if f.corpus == nil {
		return &domain.ReferenceCorpus{}, nil
	}
	return f.corpus, nil
}

func (f *fakeArtifacts) SaveCorpus(_ context.Context, c *domain.ReferenceCorpus) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.savedCorpus = c
	return nil
}

type fakeHierarchyStore struct {
	doc     domain.Hierarchy
	loadErr error
	saved   domain.Hierarchy
	saveErr error
}

func (f *fakeHierarchyStore) Load(context.Context) (domain.Hierarchy, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if f.doc == nil {
		return domain.NewHierarchy(), nil
	}
	return f.doc, nil
}

func (f *fakeHierarchyStore) Save(_ context.Context, h domain.Hierarchy) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = h
	return nil
}

type fakePivotWriter struct {
	path  string
	table *domain.PivotTable
	err   error
}

func (f *fakePivotWriter) WritePivot(_ context.Context, table *domain.PivotTable, path string) error {
	if f.err != nil {
		return f.err
	}
	f.table = table
	f.path = path
	return nil
}

type fakeArchive struct {
	runID   string
	records []domain.CommentRecord
	err     error
	calls   int
}

func (f *fakeArchive) SaveBatch(_ context.Context, runID string, records []domain.CommentRecord) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.runID = runID
	f.records = append([]domain.CommentRecord{}, records...)
	return nil
}
