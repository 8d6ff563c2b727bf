package localfs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kirillkom/curve-comment-classifier/internal/core/domain"
)

const (
	labelMapFile  = "cluster_label_mapping.json"
	corpusFile    = "reference_corpus.json"
	hierarchyFile = "comment_hierarchy.json"
)

// Store persists the pipeline artifacts as JSON documents under one
// directory: the curated cluster→label map, the reference corpus, and the
// hierarchy document. Each document is written atomically (temp file +
// rename) so an aborted run never leaves a half-written artifact.
type Store struct {
	basePath string
}

func New(basePath string) (*Store, error) {
	if basePath == "" {
		basePath = "./data/artifacts"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create artifacts dir: %w", err)
	}
	return &Store{basePath: basePath}, nil
}

// LoadLabelMap reads the curated map. A missing file is a configuration
// error: incremental runs cannot label without it.
func (s *Store) LoadLabelMap(_ context.Context) (domain.LabelMap, error) {
	var m domain.LabelMap
	if err := s.readJSON(labelMapFile, &m); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.WrapError(domain.ErrConfiguration, "load label map", err)
		}
		return nil, err
	}
	return m, nil
}

func (s *Store) SaveLabelMap(_ context.Context, m domain.LabelMap) error {
	return s.writeJSON(labelMapFile, m)
}

// LoadCorpus reads the reference embeddings and cluster ids. A missing
// file loads as an empty corpus; the labeler then assigns the fallback
// label to everything rather than failing.
func (s *Store) LoadCorpus(_ context.Context) (*domain.ReferenceCorpus, error) {
	var c domain.ReferenceCorpus
	if err := s.readJSON(corpusFile, &c); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &domain.ReferenceCorpus{}, nil
		}
		return nil, err
	}
	if len(c.Embeddings) != len(c.ClusterIDs) {
		return nil, domain.WrapError(domain.ErrInvalidInput, "load reference corpus",
			fmt.Errorf("embeddings/cluster ids mismatch: %d/%d", len(c.Embeddings), len(c.ClusterIDs)))
	}
	return &c, nil
}

func (s *Store) SaveCorpus(_ context.Context, c *domain.ReferenceCorpus) error {
	return s.writeJSON(corpusFile, c)
}

// Load reads the hierarchy document. Absent and empty are equivalent:
// both yield an empty document, the first-time-use case.
func (s *Store) Load(_ context.Context) (domain.Hierarchy, error) {
	var h domain.Hierarchy
	if err := s.readJSON(hierarchyFile, &h); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.NewHierarchy(), nil
		}
		return nil, err
	}
	if h == nil {
		h = domain.NewHierarchy()
	}
	return h, nil
}

func (s *Store) Save(_ context.Context, h domain.Hierarchy) error {
	return s.writeJSON(hierarchyFile, h)
}

func (s *Store) readJSON(name string, out any) error {
	path := filepath.Join(s.basePath, name)
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func (s *Store) writeJSON(name string, in any) error {
	raw, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	path := filepath.Join(s.basePath, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}
