// Affinity - Batch Item Recommendation Engine
// Copyright 2026 The Affinity Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/commercekit/affinity

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/commercekit/affinity/internal/logging"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/affinity/config.yaml",
	"/etc/affinity/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config populated with built-in defaults.
// Every optional setting has a sensible default; the loading chain
// layers file and environment values on top.
func defaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Path:                   "/data/affinity.duckdb",
			MaxMemory:              "2GB",
			Threads:                0,
			PreserveInsertionOrder: true,
			LookbackDays:           0,
		},
		Engine: EngineConfig{
			Paths:                   []string{"pairwise", "itemset"},
			SimilarityMetric:        "cosine",
			TopNRecommendations:     6,
			MinSupport:              0.0001,
			MaxItemsetLength:        10,
			MinItemsetLengthFilter:  2,
			MinBasketSize:           4,
			TopItemsetsPerCandidate: 3,
		},
		Sink: SinkConfig{
			Enabled:                 false,
			DatabaseURL:             "",
			BatchSize:               500,
			RetryAttempts:           3,
			RetryDelay:              2 * time.Second,
			WritesPerSecond:         0,
			BreakerFailureThreshold: 5,
			BreakerTimeout:          30 * time.Second,
			MigrateOnStart:          true,
		},
		Export: ExportConfig{
			Enabled: false,
			Path:    "",
		},
		Metrics: MetricsConfig{
			PushGatewayURL: "",
			JobName:        "affinity",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using the Koanf v2 layering chain:
//
//  1. Built-in defaults (structs provider)
//  2. Optional YAML config file (file provider)
//  3. Environment variables (env provider with explicit key mapping)
//
// Comma-separated environment values for slice fields are split before
// unmarshaling. The result is validated before being returned.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configFile := findConfigFile(); configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configFile, err)
		}
		logging.Debug().Str("path", configFile).Msg("Loaded config file")
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile locates the YAML config file.
// CONFIG_PATH takes priority; otherwise the default paths are probed in order.
// Returns empty string when no file exists (defaults plus env apply).
func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
		logging.Warn().Str("path", path).Msg("Config file from CONFIG_PATH not found")
		return ""
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths lists koanf paths holding slice values that may arrive
// from the environment as comma-separated strings.
var sliceConfigPaths = []string{
	"engine.paths",
}

// processSliceFields splits comma-separated string values into slices for
// the fields listed in sliceConfigPaths. Values already decoded as slices
// (from the YAML file or defaults) are left untouched.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		raw := k.Get(path)
		if raw == nil {
			continue
		}

		// Already a slice from YAML or defaults
		if _, ok := raw.([]interface{}); ok {
			continue
		}
		if _, ok := raw.([]string); ok {
			continue
		}

		s, ok := raw.(string)
		if !ok {
			continue
		}

		parts := strings.Split(s, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				cleaned = append(cleaned, trimmed)
			}
		}

		if err := k.Set(path, cleaned); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}

	return nil
}

// envMappings maps lowercased environment variable names to koanf paths.
// Unlisted variables are ignored, which keeps unrelated environment noise
// out of the configuration tree.
var envMappings = map[string]string{
	// Source
	"duckdb_path":                     "source.path",
	"duckdb_max_memory":               "source.max_memory",
	"duckdb_threads":                  "source.threads",
	"duckdb_preserve_insertion_order": "source.preserve_insertion_order",
	"source_lookback_days":            "source.lookback_days",

	// Engine
	"engine_paths":               "engine.paths",
	"similarity_metric":          "engine.similarity_metric",
	"top_n_recommendations":      "engine.top_n_recommendations",
	"min_support":                "engine.min_support",
	"max_itemset_length":         "engine.max_itemset_length",
	"min_itemset_length_filter":  "engine.min_itemset_length_filter",
	"min_basket_size":            "engine.min_basket_size",
	"top_itemsets_per_candidate": "engine.top_itemsets_per_candidate",

	// Sink
	"sink_enabled":                   "sink.enabled",
	"database_url":                   "sink.database_url",
	"sink_batch_size":                "sink.batch_size",
	"sink_retry_attempts":            "sink.retry_attempts",
	"sink_retry_delay":               "sink.retry_delay",
	"sink_writes_per_second":         "sink.writes_per_second",
	"sink_breaker_failure_threshold": "sink.breaker_failure_threshold",
	"sink_breaker_timeout":           "sink.breaker_timeout",
	"sink_migrate_on_start":          "sink.migrate_on_start",

	// Export
	"export_enabled": "export.enabled",
	"export_path":    "export.path",

	// Metrics
	"push_gateway_url": "metrics.push_gateway_url",
	"metrics_job_name": "metrics.job_name",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps environment variable names to koanf paths.
// Returning empty string skips the variable entirely.
func envTransformFunc(s string) string {
	key := strings.ToLower(s)

	if path, ok := envMappings[key]; ok {
		return path
	}

	return ""
}
