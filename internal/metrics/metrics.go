// Affinity - Batch Item Recommendation Engine
// Copyright 2026 The Affinity Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/commercekit/affinity

package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/commercekit/affinity/internal/config"
)

var (
	// Run Metrics
	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "run_duration_seconds",
			Help:    "End-to-end duration of batch runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600}, // Full runs can take minutes
		},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "run_stage_duration_seconds",
			Help:    "Duration of individual run stages in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		},
		[]string{"stage"}, // "load", "generate", "sink", "export"
	)

	RunLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "run_last_success_timestamp",
			Help: "Unix timestamp of last successful batch run",
		},
	)

	RunErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "run_errors_total",
			Help: "Total number of failed batch runs",
		},
	)

	// Engine Metrics
	EventsLoaded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_loaded_total",
			Help: "Total number of interaction events loaded from the event store",
		},
		[]string{"projection"}, // "user_item", "order_item"
	)

	RecommendationsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_generated_total",
			Help: "Total number of recommendation records produced",
		},
		[]string{"model_type"}, // "pairwise", "itemset"
	)

	EntityFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_entity_failures_total",
			Help: "Total number of entities skipped by per-entity failure isolation",
		},
		[]string{"model_type"},
	)

	ModelFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_failures_total",
			Help: "Total number of model paths that failed entirely",
		},
		[]string{"model_type"},
	)

	// Output Metrics
	SinkRowsWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sink_rows_written_total",
			Help: "Total number of recommendation rows written to the PostgreSQL sink",
		},
	)

	ExportRowsWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "export_rows_written_total",
			Help: "Total number of recommendation lines written to JSONL exports",
		},
	)
)

// RecordRun records the outcome of a full batch run.
func RecordRun(duration time.Duration, err error) {
	RunDuration.Observe(duration.Seconds())
	if err != nil {
		RunErrors.Inc()
		return
	}
	RunLastSuccess.Set(float64(time.Now().Unix()))
}

// RecordStage records the duration of one run stage.
func RecordStage(stage string, duration time.Duration) {
	StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordEventsLoaded records events loaded for one projection.
func RecordEventsLoaded(projection string, count int) {
	EventsLoaded.WithLabelValues(projection).Add(float64(count))
}

// RecordModelResult records the output counts of one model path.
func RecordModelResult(modelType string, records, entityFailures int) {
	RecommendationsGenerated.WithLabelValues(modelType).Add(float64(records))
	if entityFailures > 0 {
		EntityFailures.WithLabelValues(modelType).Add(float64(entityFailures))
	}
}

// RecordModelFailure records a model path failing entirely.
func RecordModelFailure(modelType string) {
	ModelFailures.WithLabelValues(modelType).Inc()
}

// RecordSinkWrite records rows written to the sink.
func RecordSinkWrite(rows int) {
	SinkRowsWritten.Add(float64(rows))
}

// RecordExportWrite records lines written to a JSONL export.
func RecordExportWrite(rows int) {
	ExportRowsWritten.Add(float64(rows))
}

// Push delivers the current state of all registered metrics to the
// configured Pushgateway. A nil config or empty URL disables the push and
// returns nil.
func Push(ctx context.Context, cfg *config.MetricsConfig) error {
	if cfg == nil || cfg.PushGatewayURL == "" {
		return nil
	}

	job := cfg.JobName
	if job == "" {
		job = "affinity"
	}

	pusher := push.New(cfg.PushGatewayURL, job).Gatherer(prometheus.DefaultGatherer)
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
