package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kirillkom/curve-comment-classifier/internal/config"
	"github.com/kirillkom/curve-comment-classifier/internal/core/ports"
	"github.com/kirillkom/curve-comment-classifier/internal/core/usecase"
	"github.com/kirillkom/curve-comment-classifier/internal/infrastructure/artifacts/localfs"
	"github.com/kirillkom/curve-comment-classifier/internal/infrastructure/cluster/remote"
	"github.com/kirillkom/curve-comment-classifier/internal/infrastructure/embed/ollama"
	"github.com/kirillkom/curve-comment-classifier/internal/infrastructure/preprocess"
	"github.com/kirillkom/curve-comment-classifier/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/curve-comment-classifier/internal/infrastructure/resilience"
	"github.com/kirillkom/curve-comment-classifier/internal/infrastructure/tabular"
	"github.com/kirillkom/curve-comment-classifier/internal/infrastructure/tabular/csvfile"
	"github.com/kirillkom/curve-comment-classifier/internal/infrastructure/tabular/excel"
)

type App struct {
	Config config.Config

	BuildUC    ports.CorpusBuilder
	ClassifyUC ports.BatchClassifier
	AppendUC   ports.DatasetAppender

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	store, err := localfs.New(cfg.ArtifactsPath)
	if err != nil {
		return nil, fmt.Errorf("init artifact store: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())
	embedder := ollama.NewWithOptions(cfg.EmbedURL, cfg.EmbedModel, ollama.Options{
		RequestsPerSecond:  cfg.EmbedRequestsPerSecond,
		ResilienceExecutor: executor,
	})
	clusterer := remote.NewWithOptions(cfg.ClusterURL, remote.Options{
		ResilienceExecutor: executor,
	})

	var archive ports.CommentArchive
	var db *sql.DB
	if cfg.ArchiveDSN != "" {
		db, err = postgres.OpenDB(cfg.ArchiveDSN)
		if err != nil {
			return nil, fmt.Errorf("open archive db: %w", err)
		}
		repo := postgres.NewCommentArchive(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ensure archive schema: %w", err)
		}
		archive = repo
	}

	csvReader := csvfile.NewReader()
	csvWriter := csvfile.NewWriter()
	excelReader := excel.NewReader()
	reader := tabular.NewAutoReader(csvReader, excelReader)
	pivot := excel.NewPivotWriter()
	normalizer := preprocess.NewNormalizer()
	projector := usecase.NewProjector()

	var threshold float64
	if cfg.SimilarityThreshold != nil {
		threshold = *cfg.SimilarityThreshold
	}

	buildUC := usecase.NewBuildUseCase(
		reader, csvWriter, normalizer, embedder, clusterer,
		store, store, projector, pivot, archive,
		cfg.DistanceThreshold, cfg.LabeledCSV, cfg.PivotXLSX,
	)
	classifyUC := usecase.NewClassifyUseCase(
		reader, normalizer, embedder, store, store,
		projector, pivot, archive,
		threshold, cfg.PivotXLSX,
	)
	appendUC := usecase.NewAppendUseCase(excelReader, csvReader, csvWriter, cfg.DatasetCSV)

	return &App{
		Config: cfg,

		BuildUC:    buildUC,
		ClassifyUC: classifyUC,
		AppendUC:   appendUC,

		closeFn: func() {
			if db != nil {
				_ = db.Close()
			}
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
