package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/curve-comment-classifier/internal/core/domain"
)

// Config is the explicit configuration object handed to the pipeline
// components at construction. Loaded once at process start from an
// optional YAML file, then overridden by environment variables.
type Config struct {
	LogLevel string `yaml:"log_level"`

	// SimilarityThreshold gates nearest-neighbor label reuse. Required:
	// a missing value is a configuration error, never a silent default.
	SimilarityThreshold *float64 `yaml:"similarity_threshold"`

	// DistanceThreshold controls build-time clustering granularity.
	DistanceThreshold float64 `yaml:"distance_threshold"`

	EmbedURL               string  `yaml:"embed_url"`
	EmbedModel             string  `yaml:"embed_model"`
	EmbedRequestsPerSecond float64 `yaml:"embed_requests_per_second"`

	ClusterURL string `yaml:"cluster_url"`

	ArtifactsPath string `yaml:"artifacts_path"`
	DatasetCSV    string `yaml:"dataset_csv"`
	LabeledCSV    string `yaml:"labeled_csv"`
	PivotXLSX     string `yaml:"pivot_xlsx"`

	ArchiveDSN     string `yaml:"archive_dsn"`
	PushgatewayURL string `yaml:"pushgateway_url"`
}

// Load reads the YAML file named by CLASSIFIER_CONFIG (if set), applies
// environment overrides, and returns the result. Validation is a
// separate step so callers control which mode's requirements apply.
func Load() (Config, error) {
	cfg := Config{
		LogLevel:          "info",
		DistanceThreshold: 1.0,
		EmbedURL:          "http://localhost:11434",
		EmbedModel:        "all-minilm",
		ClusterURL:        "http://localhost:8600",
		ArtifactsPath:     "./data/artifacts",
		DatasetCSV:        "./data/data.csv",
		LabeledCSV:        "./data/labeled_comments.csv",
		PivotXLSX:         "./data/Pivoted_Comments_Table.xlsx",
	}

	if path := os.Getenv("CLASSIFIER_CONFIG"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, domain.WrapError(domain.ErrConfiguration, "read config file", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, domain.WrapError(domain.ErrConfiguration, "parse config file", err)
		}
	}

	cfg.LogLevel = envString("CLASSIFIER_LOG_LEVEL", cfg.LogLevel)
	cfg.EmbedURL = envString("CLASSIFIER_EMBED_URL", cfg.EmbedURL)
	cfg.EmbedModel = envString("CLASSIFIER_EMBED_MODEL", cfg.EmbedModel)
	cfg.ClusterURL = envString("CLASSIFIER_CLUSTER_URL", cfg.ClusterURL)
	cfg.ArtifactsPath = envString("CLASSIFIER_ARTIFACTS_PATH", cfg.ArtifactsPath)
	cfg.DatasetCSV = envString("CLASSIFIER_DATASET_CSV", cfg.DatasetCSV)
	cfg.LabeledCSV = envString("CLASSIFIER_LABELED_CSV", cfg.LabeledCSV)
	cfg.PivotXLSX = envString("CLASSIFIER_PIVOT_XLSX", cfg.PivotXLSX)
	cfg.ArchiveDSN = envString("CLASSIFIER_ARCHIVE_DSN", cfg.ArchiveDSN)
	cfg.PushgatewayURL = envString("CLASSIFIER_PUSHGATEWAY_URL", cfg.PushgatewayURL)

	if v := os.Getenv("CLASSIFIER_SIMILARITY_THRESHOLD"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, domain.WrapError(domain.ErrConfiguration, "parse similarity threshold", err)
		}
		cfg.SimilarityThreshold = &parsed
	}
	if v := os.Getenv("CLASSIFIER_DISTANCE_THRESHOLD"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, domain.WrapError(domain.ErrConfiguration, "parse distance threshold", err)
		}
		cfg.DistanceThreshold = parsed
	}
	if v := os.Getenv("CLASSIFIER_EMBED_RPS"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, domain.WrapError(domain.ErrConfiguration, "parse embed rps", err)
		}
		cfg.EmbedRequestsPerSecond = parsed
	}

	return cfg, nil
}

// Validate checks the requirements shared by every mode.
func (c Config) Validate() error {
	if c.SimilarityThreshold == nil {
		return domain.WrapError(domain.ErrConfiguration, "validate config",
			fmt.Errorf("similarity_threshold is required"))
	}
	if t := *c.SimilarityThreshold; t <= 0 || t > 1 {
		return domain.WrapError(domain.ErrConfiguration, "validate config",
			fmt.Errorf("similarity_threshold %v out of range (0, 1]", t))
	}
	if c.EmbedURL == "" || c.EmbedModel == "" {
		return domain.WrapError(domain.ErrConfiguration, "validate config",
			fmt.Errorf("embed_url and embed_model are required"))
	}
	if c.ArtifactsPath == "" {
		return domain.WrapError(domain.ErrConfiguration, "validate config",
			fmt.Errorf("artifacts_path is required"))
	}
	return nil
}

// ValidateBuild adds the build-mode requirements on top of Validate.
func (c Config) ValidateBuild() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.ClusterURL == "" {
		return domain.WrapError(domain.ErrConfiguration, "validate config",
			fmt.Errorf("cluster_url is required for build"))
	}
	if c.DistanceThreshold <= 0 {
		return domain.WrapError(domain.ErrConfiguration, "validate config",
			fmt.Errorf("distance_threshold must be positive"))
	}
	return nil
}

// ValidateDataset checks only what the dataset merge needs; it does not
// touch collaborators, so the collaborator settings stay optional.
func (c Config) ValidateDataset() error {
	if c.DatasetCSV == "" {
		return domain.WrapError(domain.ErrConfiguration, "validate config",
			fmt.Errorf("dataset_csv is required"))
	}
	return nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
