// Affinity - Batch Item Recommendation Engine
// Copyright 2026 The Affinity Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/commercekit/affinity

/*
Package config provides centralized configuration management for Affinity.

This package handles loading, validation, and parsing of configuration for
the batch recommendation run. It layers environment variables over an
optional YAML config file over built-in defaults, and validates the result
before any component sees it.

# Configuration Sources

The package reads configuration from, in increasing priority:
  - Built-in defaults (every optional setting has one)
  - YAML config file (config.yaml, or CONFIG_PATH override)
  - Environment variables (highest priority)

# Configuration Structure

The package organizes configuration into logical groups:

  - SourceConfig: DuckDB interaction event store (path, memory, lookback)
  - EngineConfig: Recommendation paths and algorithm parameters
  - SinkConfig: PostgreSQL serving database for generated recommendations
  - ExportConfig: JSONL file export
  - MetricsConfig: Prometheus Pushgateway delivery
  - LoggingConfig: Log level and output format

# Environment Variables

Source (SourceConfig):
  - DUCKDB_PATH: Database file path (default: /data/affinity.duckdb)
  - DUCKDB_MAX_MEMORY: Memory limit (default: 2GB)
  - DUCKDB_THREADS: Thread count, 0 = NumCPU (default: 0)
  - SOURCE_LOOKBACK_DAYS: Event window in days, 0 = all (default: 0)

Engine (EngineConfig):
  - ENGINE_PATHS: Paths to run, comma-separated (default: pairwise,itemset)
  - SIMILARITY_METRIC: cosine or jaccard (default: cosine)
  - TOP_N_RECOMMENDATIONS: Seed items per user (default: 6)
  - MIN_SUPPORT: FP-Growth support fraction (default: 0.0001)
  - MAX_ITEMSET_LENGTH: Itemset size bound (default: 10)
  - MIN_ITEMSET_LENGTH_FILTER: Keep itemsets longer than this (default: 2)
  - MIN_BASKET_SIZE: Minimum distinct items per order (default: 4)
  - TOP_ITEMSETS_PER_CANDIDATE: Itemsets unioned per candidate (default: 3)

Sink (SinkConfig):
  - SINK_ENABLED: Enable PostgreSQL sink (default: false)
  - DATABASE_URL: PostgreSQL connection string (required when enabled)
  - SINK_BATCH_SIZE: Rows per insert batch (default: 500)
  - SINK_RETRY_ATTEMPTS: Write retry attempts (default: 3)
  - SINK_RETRY_DELAY: Initial retry delay (default: 2s)
  - SINK_WRITES_PER_SECOND: Batch rate limit, 0 = off (default: 0)
  - SINK_MIGRATE_ON_START: Run embedded migrations (default: true)

Export (ExportConfig):
  - EXPORT_ENABLED: Enable JSONL export (default: false)
  - EXPORT_PATH: Output file path (required when enabled)

Metrics (MetricsConfig):
  - PUSH_GATEWAY_URL: Pushgateway URL, empty disables push
  - METRICS_JOB_NAME: Job label for pushed metrics (default: affinity)

Logging (LoggingConfig):
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json, console (default: json)
  - LOG_CALLER: Include caller file:line (default: false)

# Usage Example

Basic configuration loading:

	import "github.com/commercekit/affinity/internal/config"

	// Load configuration from defaults, file, and environment
	cfg, err := config.Load()
	if err != nil {
	    log.Fatalf("Failed to load config: %v", err)
	}

	// Access configuration values
	fmt.Printf("Source: %s\n", cfg.Source.Path)
	fmt.Printf("Metric: %s\n", cfg.Engine.SimilarityMetric)

Testing with custom configuration:

	// Override environment variables for testing
	os.Setenv("DUCKDB_PATH", ":memory:")
	os.Setenv("SIMILARITY_METRIC", "jaccard")

	cfg, err := config.Load()
	// Use cfg for testing

# Validation

The package performs validation at load time:

  - Enum fields: SIMILARITY_METRIC and ENGINE_PATHS entries are closed sets
  - Numeric ranges: counts must be positive, MIN_SUPPORT in (0, 1]
  - Conditional requirements: DATABASE_URL when the sink is enabled,
    EXPORT_PATH when export is enabled
  - Cross-field: MIN_ITEMSET_LENGTH_FILTER below MAX_ITEMSET_LENGTH

# Thread Safety

The Config struct is immutable after Load() returns, making it safe for
concurrent access from multiple goroutines without synchronization.
*/
package config
