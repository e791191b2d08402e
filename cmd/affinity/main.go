// Affinity - Batch Item Recommendation Engine
// Copyright 2026 The Affinity Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/commercekit/affinity

// Package main is the entry point for the affinity batch binary.
//
// Affinity generates item recommendations from commerce interaction events
// in a single batch pass: it loads events from a DuckDB store, fits the
// configured models, and writes the assembled recommendations to a
// PostgreSQL serving table and/or a JSONL export file.
//
// # Run Pipeline
//
// Each invocation performs one run:
//
//  1. Configuration: Koanf v2 layering (defaults, YAML file, environment)
//  2. Logging: zerolog with JSON or console output
//  3. Event store: DuckDB open, optional CSV ingest (-ingest)
//  4. Load: ordered user-item and order-item event projections
//  5. Models: pairwise similarity and/or frequent itemsets (engine.paths)
//  6. Outputs: PostgreSQL sink (demote-then-insert) and/or JSONL export
//  7. Metrics: optional push to a Prometheus Pushgateway
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (see internal/config for the full list)
//   - Config file (config.yaml, or CONFIG_PATH / -config)
//   - Built-in defaults
//
// # Flags
//
//	-config   path to a YAML config file (overrides CONFIG_PATH)
//	-ingest   CSV file loaded into the event store before the run
//	-export   JSONL output path (enables the export writer)
//	-evaluate hold out each user's latest item and report the hit rate
//	-dry-run  run the models but skip sink writes
//
// # Exit Codes
//
// The binary exits 0 only when every configured model path produced its
// output and all enabled writes succeeded. A model path that fails is
// isolated (the other paths still run and their output is still written)
// but the run exits 1 so schedulers notice.
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the I/O stages (event loading, sink writes)
// via context. In-memory model computation is not interrupted; a batch
// that has reached the fitting stage finishes it.
//
// # Example Usage
//
// One-off run against a CSV extract, exporting to a file:
//
//	export DUCKDB_PATH=/data/affinity.duckdb
//	./affinity -ingest /data/events.csv -export /data/recs.jsonl
//
// Scheduled production run writing to PostgreSQL:
//
//	export DUCKDB_PATH=/data/affinity.duckdb
//	export SOURCE_LOOKBACK_DAYS=90
//	export SINK_ENABLED=true
//	export DATABASE_URL=postgres://affinity:...@db:5432/recs
//	export PUSH_GATEWAY_URL=http://pushgateway:9091
//	./affinity
//
// Offline evaluation without touching the serving table:
//
//	./affinity -evaluate -dry-run
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/commercekit/affinity/internal/config"
	"github.com/commercekit/affinity/internal/database"
	"github.com/commercekit/affinity/internal/export"
	"github.com/commercekit/affinity/internal/logging"
	"github.com/commercekit/affinity/internal/metrics"
	"github.com/commercekit/affinity/internal/recommend"
	"github.com/commercekit/affinity/internal/sink"
)

// runOptions carries the flag-controlled behavior of one invocation.
type runOptions struct {
	ingestPath string
	evaluate   bool
	dryRun     bool
}

func main() {
	var (
		configPath = flag.String("config", "", "Path to a YAML config file (overrides CONFIG_PATH)")
		ingestPath = flag.String("ingest", "", "CSV file to load into the event store before the run")
		exportPath = flag.String("export", "", "JSONL output path (enables the export writer)")
		evaluate   = flag.Bool("evaluate", false, "Hold out each user's latest item and report the hit rate")
		dryRun     = flag.Bool("dry-run", false, "Run the models but skip sink writes")
	)
	flag.Parse()

	if *configPath != "" {
		if err := os.Setenv(config.ConfigPathEnvVar, *configPath); err != nil {
			logging.Fatal().Err(err).Msg("Failed to set config path")
		}
	}

	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize zerolog with configuration
	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	// Flag overrides on top of the layered config
	if *exportPath != "" {
		cfg.Export.Enabled = true
		cfg.Export.Path = *exportPath
	}

	runID := uuid.New().String()
	logging.Info().
		Str("run_id", runID).
		Str("db_path", cfg.Source.Path).
		Strs("paths", cfg.Engine.Paths).
		Bool("sink_enabled", cfg.Sink.Enabled).
		Bool("export_enabled", cfg.Export.Enabled).
		Msg("Starting batch run")

	// Create context for I/O cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	runErr := run(ctx, cfg, runID, runOptions{
		ingestPath: *ingestPath,
		evaluate:   *evaluate,
		dryRun:     *dryRun,
	})

	// Push uses its own timeout so a canceled or failed run still reports.
	pushCtx, pushCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := metrics.Push(pushCtx, &cfg.Metrics); err != nil {
		logging.Warn().Err(err).Msg("Metrics push failed")
	}
	pushCancel()

	if runErr != nil {
		logging.Fatal().Err(runErr).Str("run_id", runID).Msg("Batch run failed")
	}

	logging.Info().Str("run_id", runID).Msg("Batch run finished")
}

// run executes one batch: ingest, load, generate, write.
func run(ctx context.Context, cfg *config.Config, runID string, opts runOptions) (err error) {
	start := time.Now()
	defer func() { metrics.RecordRun(time.Since(start), err) }()

	db, err := database.New(&cfg.Source)
	if err != nil {
		return fmt.Errorf("open event store: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error().Err(closeErr).Msg("Error closing event store")
		}
	}()

	if opts.ingestPath != "" {
		if _, err := db.IngestCSV(ctx, opts.ingestPath); err != nil {
			return err
		}
	}

	since := time.Time{}
	if cfg.Source.LookbackDays > 0 {
		since = time.Now().UTC().AddDate(0, 0, -cfg.Source.LookbackDays)
	}

	events, err := loadEvents(ctx, db, &cfg.Engine, since)
	if err != nil {
		return err
	}

	var holdout map[string][]string
	if opts.evaluate {
		events, holdout = recommend.SplitLeaveOneOut(events)
		logging.Info().Int("holdout_users", len(holdout)).Msg("Evaluation holdout prepared")
	}

	engine, err := initEngine(&cfg.Engine)
	if err != nil {
		return err
	}

	generateStart := time.Now()
	result, err := engine.Run(events)
	if err != nil {
		return fmt.Errorf("batch run: %w", err)
	}
	metrics.RecordStage("generate", time.Since(generateStart))
	recordEngineMetrics(result)

	generatedAt := time.Now().UTC()

	if cfg.Sink.Enabled {
		if opts.dryRun {
			logging.Info().Int("records", len(result.Recommendations)).Msg("Dry run: skipping sink writes")
		} else if err := writeSink(ctx, cfg, runID, result.Recommendations); err != nil {
			return err
		}
	}

	if cfg.Export.Enabled {
		exportStart := time.Now()
		lines, err := export.WriteJSONL(cfg.Export.Path, runID, result.Recommendations, generatedAt)
		if err != nil {
			return err
		}
		metrics.RecordExportWrite(lines)
		metrics.RecordStage("export", time.Since(exportStart))
	}

	if opts.evaluate {
		rate := recommend.HitRate(result.Recommendations, holdout)
		logging.Info().
			Float64("hit_rate", rate).
			Int("holdout_users", len(holdout)).
			Msg("Offline evaluation")
	}

	logging.Info().
		Str("run_id", runID).
		Int("events", result.Stats.Events).
		Int("records", result.Stats.Records).
		Int("models_run", result.Stats.ModelsRun).
		Int("models_failed", result.Stats.ModelsFailed).
		Int("entity_failures", result.Stats.EntityFailures).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("Run summary")

	if result.Failed() {
		return fmt.Errorf("%d of %d model paths failed", result.Stats.ModelsFailed, result.Stats.ModelsRun+result.Stats.ModelsFailed)
	}

	return nil
}

// loadEvents loads the projections required by the enabled paths and
// concatenates them into one engine input.
func loadEvents(ctx context.Context, db *database.DB, cfg *config.EngineConfig, since time.Time) ([]recommend.InteractionEvent, error) {
	loadStart := time.Now()
	defer func() { metrics.RecordStage("load", time.Since(loadStart)) }()

	var events []recommend.InteractionEvent

	if cfg.PairwiseEnabled() {
		userEvents, err := db.LoadUserItemEvents(ctx, since)
		if err != nil {
			return nil, err
		}
		metrics.RecordEventsLoaded("user_item", len(userEvents))
		logging.Info().Int("events", len(userEvents)).Msg("Loaded user-item events")
		events = append(events, userEvents...)
	}

	if cfg.ItemsetEnabled() {
		orderEvents, err := db.LoadOrderItemEvents(ctx, since)
		if err != nil {
			return nil, err
		}
		metrics.RecordEventsLoaded("order_item", len(orderEvents))
		logging.Info().Int("events", len(orderEvents)).Msg("Loaded order-item events")
		events = append(events, orderEvents...)
	}

	return events, nil
}

// writeSink connects to PostgreSQL and performs the demote-then-insert
// refresh for this run's records.
func writeSink(ctx context.Context, cfg *config.Config, runID string, recs []recommend.Recommendation) error {
	sinkStart := time.Now()

	s, err := sink.New(ctx, &cfg.Sink, logging.Logger())
	if err != nil {
		return fmt.Errorf("connect sink: %w", err)
	}
	defer func() {
		if closeErr := s.Close(); closeErr != nil {
			logging.Warn().Err(closeErr).Msg("Error closing sink")
		}
	}()

	written, err := s.WriteRecommendations(ctx, runID, recs)
	if err != nil {
		return err
	}

	metrics.RecordSinkWrite(written)
	metrics.RecordStage("sink", time.Since(sinkStart))

	return nil
}

// recordEngineMetrics derives per-model metric updates from a run result.
func recordEngineMetrics(result *recommend.Result) {
	records := make(map[string]int)
	for _, rec := range result.Recommendations {
		records[rec.ModelType.String()]++
	}

	failures := make(map[string]int)
	for _, ef := range result.EntityFailures {
		failures[ef.Model]++
	}

	for modelType, count := range records {
		metrics.RecordModelResult(modelType, count, failures[modelType])
		delete(failures, modelType)
	}
	// Models with failures but zero surviving records
	for modelType, count := range failures {
		metrics.RecordModelResult(modelType, 0, count)
	}

	for _, pe := range result.PathErrors {
		metrics.RecordModelFailure(pe.Model)
	}
}
