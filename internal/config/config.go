// Affinity - Batch Item Recommendation Engine
// Copyright 2026 The Affinity Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/commercekit/affinity

package config

import (
	"time"
)

// Config holds all application configuration loaded from environment variables and config files.
// Provides centralized configuration management for the batch run: interaction source,
// recommendation engine parameters, serving sink, export, metrics, and logging.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting via environment variables
//
// Configuration Categories:
//
//  1. Data Source:
//     - Source: DuckDB interaction event store (path, memory, lookback window)
//
//  2. Engine:
//     - Engine: Recommendation paths and algorithm parameters
//
//  3. Outputs:
//     - Sink: PostgreSQL serving database for generated recommendations
//     - Export: JSONL file export of generated recommendations
//
//  4. Observability:
//     - Metrics: Prometheus Pushgateway for batch job metrics
//     - Logging: Log levels and output formats
//
// Example - Load configuration from environment:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	// cfg.Source.Path, cfg.Engine.SimilarityMetric, etc. are now populated
//
// Validation:
// The Load() function validates all fields and returns an error if:
//   - The sink is enabled but DATABASE_URL is missing
//   - Values are out of range (negative counts, support outside [0, 1])
//   - The similarity metric or engine path names are unknown
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access from multiple goroutines.
type Config struct {
	Source  SourceConfig  `koanf:"source"`
	Engine  EngineConfig  `koanf:"engine"`
	Sink    SinkConfig    `koanf:"sink"`    // Optional: PostgreSQL serving sink
	Export  ExportConfig  `koanf:"export"`  // Optional: JSONL file export
	Metrics MetricsConfig `koanf:"metrics"` // Optional: Pushgateway metrics delivery
	Logging LoggingConfig `koanf:"logging"`
}

// SourceConfig holds DuckDB interaction event store settings.
//
// Environment Variables:
//   - DUCKDB_PATH: Database file path (default: /data/affinity.duckdb)
//   - DUCKDB_MAX_MEMORY: DuckDB memory limit (default: 2GB)
//   - DUCKDB_THREADS: DuckDB thread count, 0 = NumCPU (default: 0)
//   - SOURCE_LOOKBACK_DAYS: Event window in days, 0 = all history (default: 0)
type SourceConfig struct {
	// Path is the DuckDB database file location.
	// Use ":memory:" for an ephemeral in-memory store.
	// Default: /data/affinity.duckdb
	Path string `koanf:"path" validate:"required"`

	// MaxMemory is the DuckDB memory limit (e.g. "2GB", "512MB").
	// Default: 2GB
	MaxMemory string `koanf:"max_memory"`

	// Threads is the number of DuckDB threads (0 = use NumCPU).
	// Default: 0
	Threads int `koanf:"threads" validate:"gte=0"`

	// PreserveInsertionOrder trades memory for ordered scans.
	// Disable for large imports where order does not matter.
	// Default: true
	PreserveInsertionOrder bool `koanf:"preserve_insertion_order"`

	// LookbackDays restricts event loading to a trailing window.
	// 0 loads all recorded history.
	// Default: 0
	LookbackDays int `koanf:"lookback_days" validate:"gte=0"`
}

// EngineConfig holds recommendation engine parameters for both batch paths.
//
// Environment Variables:
//   - ENGINE_PATHS: Comma-separated paths to run: pairwise, itemset (default: pairwise,itemset)
//   - SIMILARITY_METRIC: cosine or jaccard (default: cosine)
//   - TOP_N_RECOMMENDATIONS: Seed items per user for pairwise (default: 6)
//   - MIN_SUPPORT: FP-Growth minimum support fraction (default: 0.0001)
//   - MAX_ITEMSET_LENGTH: FP-Growth maximum itemset size (default: 10)
//   - MIN_ITEMSET_LENGTH_FILTER: Keep itemsets strictly longer than this (default: 2)
//   - MIN_BASKET_SIZE: Minimum distinct items per order (default: 4)
//   - TOP_ITEMSETS_PER_CANDIDATE: Itemsets unioned per candidate item (default: 3)
type EngineConfig struct {
	// Paths is the list of recommendation paths to run.
	// Available: pairwise, itemset
	// Default: pairwise, itemset (both)
	Paths []string `koanf:"paths" validate:"required,min=1,dive,oneof=pairwise itemset"`

	// SimilarityMetric selects the pairwise similarity measure: cosine or jaccard.
	// Default: cosine
	SimilarityMetric string `koanf:"similarity_metric" validate:"required,oneof=cosine jaccard"`

	// TopNRecommendations is the number of seed items ranked per user.
	// Seeds are the user's most interacted items; each seed yields one recommendation.
	// Default: 6
	TopNRecommendations int `koanf:"top_n_recommendations" validate:"gt=0"`

	// MinSupport is the FP-Growth minimum support as a fraction of transactions.
	// Itemsets below this support are pruned during mining.
	// Default: 0.0001
	MinSupport float64 `koanf:"min_support" validate:"gt=0,lte=1"`

	// MaxItemsetLength bounds the size of mined itemsets.
	// Larger values increase mining cost combinatorially.
	// Default: 10
	MaxItemsetLength int `koanf:"max_itemset_length" validate:"gt=0"`

	// MinItemsetLengthFilter keeps only itemsets strictly longer than this value.
	// The default of 2 keeps itemsets of three or more items.
	// Default: 2
	MinItemsetLengthFilter int `koanf:"min_itemset_length_filter" validate:"gte=0"`

	// MinBasketSize is the minimum distinct item count for an order to qualify
	// as a transaction. Smaller orders are dropped before mining.
	// Default: 4
	MinBasketSize int `koanf:"min_basket_size" validate:"gt=0"`

	// TopItemsetsPerCandidate is the number of best itemsets unioned into each
	// candidate item's recommendation list.
	// Default: 3
	TopItemsetsPerCandidate int `koanf:"top_itemsets_per_candidate" validate:"gt=0"`
}

// PairwiseEnabled reports whether the pairwise similarity path is configured to run.
func (c *EngineConfig) PairwiseEnabled() bool {
	return c.hasPath("pairwise")
}

// ItemsetEnabled reports whether the frequent itemset path is configured to run.
func (c *EngineConfig) ItemsetEnabled() bool {
	return c.hasPath("itemset")
}

func (c *EngineConfig) hasPath(name string) bool {
	for _, p := range c.Paths {
		if p == name {
			return true
		}
	}
	return false
}

// SinkConfig holds PostgreSQL serving database settings.
// The sink receives generated recommendations via demote-then-insert:
// prior rows for refreshed entities are marked non-current in the same
// transaction that inserts the new batch.
//
// Environment Variables:
//   - SINK_ENABLED: Enable the PostgreSQL sink (default: false)
//   - DATABASE_URL: PostgreSQL connection string (required when sink enabled)
//   - SINK_BATCH_SIZE: Rows per insert batch (default: 500)
//   - SINK_RETRY_ATTEMPTS: Write retry attempts (default: 3)
//   - SINK_RETRY_DELAY: Initial retry delay, doubles per attempt (default: 2s)
//   - SINK_WRITES_PER_SECOND: Batch write rate limit, 0 = unthrottled (default: 0)
//   - SINK_MIGRATE_ON_START: Run embedded schema migrations before writing (default: true)
type SinkConfig struct {
	// Enabled controls whether generated recommendations are written to PostgreSQL.
	// Default: false
	Enabled bool `koanf:"enabled"`

	// DatabaseURL is the PostgreSQL connection string.
	// Required when the sink is enabled.
	DatabaseURL string `koanf:"database_url"`

	// BatchSize is the number of recommendation rows per insert batch.
	// Default: 500
	BatchSize int `koanf:"batch_size" validate:"gt=0"`

	// RetryAttempts is the number of write attempts before giving up.
	// Default: 3
	RetryAttempts int `koanf:"retry_attempts" validate:"gt=0"`

	// RetryDelay is the initial delay between retries. Doubles per attempt.
	// Default: 2s
	RetryDelay time.Duration `koanf:"retry_delay"`

	// WritesPerSecond throttles insert batches against the serving database.
	// 0 disables throttling.
	// Default: 0
	WritesPerSecond float64 `koanf:"writes_per_second" validate:"gte=0"`

	// BreakerFailureThreshold is the consecutive failure count that opens
	// the sink circuit breaker.
	// Default: 5
	BreakerFailureThreshold uint32 `koanf:"breaker_failure_threshold"`

	// BreakerTimeout is how long the breaker stays open before probing.
	// Default: 30s
	BreakerTimeout time.Duration `koanf:"breaker_timeout"`

	// MigrateOnStart runs embedded goose migrations before the first write.
	// Default: true
	MigrateOnStart bool `koanf:"migrate_on_start"`
}

// ExportConfig holds JSONL file export settings.
//
// Environment Variables:
//   - EXPORT_ENABLED: Enable JSONL export (default: false)
//   - EXPORT_PATH: Output file path (required when export enabled)
type ExportConfig struct {
	// Enabled controls whether generated recommendations are exported to a file.
	// Default: false
	Enabled bool `koanf:"enabled"`

	// Path is the JSONL output file location. One recommendation per line.
	Path string `koanf:"path"`
}

// MetricsConfig holds Prometheus Pushgateway settings.
// Batch jobs push metrics at completion rather than exposing a scrape endpoint.
//
// Environment Variables:
//   - PUSH_GATEWAY_URL: Pushgateway base URL, empty disables push (default: "")
//   - METRICS_JOB_NAME: Job label for pushed metrics (default: affinity)
type MetricsConfig struct {
	// PushGatewayURL is the Prometheus Pushgateway base URL.
	// Empty disables the metrics push entirely.
	PushGatewayURL string `koanf:"push_gateway_url" validate:"omitempty,url"`

	// JobName is the job label attached to pushed metrics.
	// Default: affinity
	JobName string `koanf:"job_name"`
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// JSON is recommended for production (structured, machine-parseable).
	// Console is human-readable for development.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Adds slight performance overhead.
	// Default: false
	Caller bool `koanf:"caller"`
}

// Load reads configuration using the Koanf v2 loading chain:
// defaults, then optional YAML config file, then environment variables.
// The loaded configuration is validated before being returned.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
