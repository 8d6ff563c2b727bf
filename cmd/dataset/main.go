package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/curve-comment-classifier/internal/bootstrap"
	"github.com/kirillkom/curve-comment-classifier/internal/config"
	"github.com/kirillkom/curve-comment-classifier/internal/observability/logging"
	"github.com/kirillkom/curve-comment-classifier/internal/observability/metrics"
)

const job = "dataset"

func main() {
	input := flag.String("input", "", "excel drop to merge into the accumulated dataset")
	flag.Parse()
	if *input == "" {
		log.Fatal("usage: dataset -input <file.xlsx>")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := cfg.ValidateDataset(); err != nil {
		log.Fatalf("config error: %v", err)
	}
	slog.SetDefault(logging.NewJSONLogger("curve-comment-classifier", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	m := metrics.NewPipelineMetrics(job)
	start := time.Now()
	summary, err := app.AppendUC.Append(ctx, *input)
	m.FinishBatch(job, err)
	if summary != nil {
		m.ObserveStage(job, "pipeline", summary.Records, time.Since(start))
	}
	if pushErr := m.Push(cfg.PushgatewayURL, job); pushErr != nil {
		slog.Warn("metrics_push_failed", "error", pushErr)
	}

	if err != nil {
		slog.Error("dataset_merge_failed", "input", *input, "error", err)
		os.Exit(1)
	}
	slog.Info("dataset_merge_complete",
		"run_id", summary.RunID,
		"input", *input,
		"records", summary.Records,
		"appended", summary.Appended,
		"dataset", cfg.DatasetCSV,
		"duration", time.Since(start).String(),
	)
}
