package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// PipelineMetrics instruments one batch run. Because runs are short-lived
// processes, metrics are pushed to a Pushgateway at the end of the run
// instead of being scraped.
type PipelineMetrics struct {
	registry *prometheus.Registry

	recordsTotal  *prometheus.CounterVec
	skippedTotal  *prometheus.CounterVec
	fallbackTotal prometheus.Counter
	stageDuration *prometheus.HistogramVec
	batchesTotal  *prometheus.CounterVec
	hierarchySize prometheus.Gauge
}

func NewPipelineMetrics(job string) *PipelineMetrics {
	registry := prometheus.NewRegistry()

	recordsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ccc",
			Subsystem: "pipeline",
			Name:      "records_total",
			Help:      "Records handled per stage.",
		},
		[]string{"job", "stage"},
	)
	skippedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ccc",
			Subsystem: "pipeline",
			Name:      "records_skipped_total",
			Help:      "Records skipped by data-quality reason.",
		},
		[]string{"job", "reason"},
	)
	fallbackTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   "ccc",
			Subsystem:   "pipeline",
			Name:        "fallback_labels_total",
			Help:        "Comments that received the fallback label.",
			ConstLabels: prometheus.Labels{"job": job},
		},
	)
	stageDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ccc",
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 5, 15, 60, 300, 900},
		},
		[]string{"job", "stage"},
	)
	batchesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ccc",
			Subsystem: "pipeline",
			Name:      "batches_total",
			Help:      "Completed batch runs by outcome.",
		},
		[]string{"job", "status"},
	)
	hierarchySize := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   "ccc",
			Subsystem:   "pipeline",
			Name:        "hierarchy_entries",
			Help:        "Entries in the hierarchy document after the run.",
			ConstLabels: prometheus.Labels{"job": job},
		},
	)

	registry.MustRegister(recordsTotal, skippedTotal, fallbackTotal, stageDuration, batchesTotal, hierarchySize)

	return &PipelineMetrics{
		registry:      registry,
		recordsTotal:  recordsTotal,
		skippedTotal:  skippedTotal,
		fallbackTotal: fallbackTotal,
		stageDuration: stageDuration,
		batchesTotal:  batchesTotal,
		hierarchySize: hierarchySize,
	}
}

func (m *PipelineMetrics) ObserveStage(job, stage string, records int, duration time.Duration) {
	m.recordsTotal.WithLabelValues(job, stage).Add(float64(records))
	m.stageDuration.WithLabelValues(job, stage).Observe(duration.Seconds())
}

func (m *PipelineMetrics) RecordSkips(job, reason string, n int) {
	m.skippedTotal.WithLabelValues(job, reason).Add(float64(n))
}

func (m *PipelineMetrics) RecordFallbackLabels(n int) {
	m.fallbackTotal.Add(float64(n))
}

func (m *PipelineMetrics) FinishBatch(job string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.batchesTotal.WithLabelValues(job, status).Inc()
}

func (m *PipelineMetrics) SetHierarchyEntries(n int) {
	m.hierarchySize.Set(float64(n))
}

// Push sends the run's metrics to a Pushgateway. An empty URL disables
// pushing; a push failure never fails the batch.
func (m *PipelineMetrics) Push(gatewayURL, job string) error {
	if gatewayURL == "" {
		return nil
	}
	return push.New(gatewayURL, job).Gatherer(m.registry).Push()
}
