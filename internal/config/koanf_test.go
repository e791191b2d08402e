// Affinity - Batch Item Recommendation Engine
// Copyright 2026 The Affinity Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/commercekit/affinity

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	// Source defaults
	if cfg.Source.Path != "/data/affinity.duckdb" {
		t.Errorf("Source.Path = %q, want /data/affinity.duckdb", cfg.Source.Path)
	}
	if cfg.Source.MaxMemory != "2GB" {
		t.Errorf("Source.MaxMemory = %q, want 2GB", cfg.Source.MaxMemory)
	}
	if cfg.Source.Threads != 0 {
		t.Errorf("Source.Threads = %d, want 0", cfg.Source.Threads)
	}
	if !cfg.Source.PreserveInsertionOrder {
		t.Error("Source.PreserveInsertionOrder should be true by default")
	}
	if cfg.Source.LookbackDays != 0 {
		t.Errorf("Source.LookbackDays = %d, want 0", cfg.Source.LookbackDays)
	}

	// Engine defaults
	if len(cfg.Engine.Paths) != 2 || cfg.Engine.Paths[0] != "pairwise" || cfg.Engine.Paths[1] != "itemset" {
		t.Errorf("Engine.Paths = %v, want [pairwise itemset]", cfg.Engine.Paths)
	}
	if cfg.Engine.SimilarityMetric != "cosine" {
		t.Errorf("Engine.SimilarityMetric = %q, want cosine", cfg.Engine.SimilarityMetric)
	}
	if cfg.Engine.TopNRecommendations != 6 {
		t.Errorf("Engine.TopNRecommendations = %d, want 6", cfg.Engine.TopNRecommendations)
	}
	if cfg.Engine.MinSupport != 0.0001 {
		t.Errorf("Engine.MinSupport = %v, want 0.0001", cfg.Engine.MinSupport)
	}
	if cfg.Engine.MaxItemsetLength != 10 {
		t.Errorf("Engine.MaxItemsetLength = %d, want 10", cfg.Engine.MaxItemsetLength)
	}
	if cfg.Engine.MinItemsetLengthFilter != 2 {
		t.Errorf("Engine.MinItemsetLengthFilter = %d, want 2", cfg.Engine.MinItemsetLengthFilter)
	}
	if cfg.Engine.MinBasketSize != 4 {
		t.Errorf("Engine.MinBasketSize = %d, want 4", cfg.Engine.MinBasketSize)
	}
	if cfg.Engine.TopItemsetsPerCandidate != 3 {
		t.Errorf("Engine.TopItemsetsPerCandidate = %d, want 3", cfg.Engine.TopItemsetsPerCandidate)
	}

	// Sink defaults (disabled)
	if cfg.Sink.Enabled {
		t.Error("Sink.Enabled should be false by default")
	}
	if cfg.Sink.BatchSize != 500 {
		t.Errorf("Sink.BatchSize = %d, want 500", cfg.Sink.BatchSize)
	}
	if cfg.Sink.RetryAttempts != 3 {
		t.Errorf("Sink.RetryAttempts = %d, want 3", cfg.Sink.RetryAttempts)
	}
	if cfg.Sink.RetryDelay != 2*time.Second {
		t.Errorf("Sink.RetryDelay = %v, want 2s", cfg.Sink.RetryDelay)
	}
	if cfg.Sink.BreakerFailureThreshold != 5 {
		t.Errorf("Sink.BreakerFailureThreshold = %d, want 5", cfg.Sink.BreakerFailureThreshold)
	}
	if cfg.Sink.BreakerTimeout != 30*time.Second {
		t.Errorf("Sink.BreakerTimeout = %v, want 30s", cfg.Sink.BreakerTimeout)
	}
	if !cfg.Sink.MigrateOnStart {
		t.Error("Sink.MigrateOnStart should be true by default")
	}

	// Export defaults (disabled)
	if cfg.Export.Enabled {
		t.Error("Export.Enabled should be false by default")
	}

	// Metrics defaults
	if cfg.Metrics.PushGatewayURL != "" {
		t.Errorf("Metrics.PushGatewayURL = %q, want empty", cfg.Metrics.PushGatewayURL)
	}
	if cfg.Metrics.JobName != "affinity" {
		t.Errorf("Metrics.JobName = %q, want affinity", cfg.Metrics.JobName)
	}

	// Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want json", cfg.Logging.Format)
	}
}

// TestDefaultConfigValidates ensures the built-in defaults pass validation
func TestDefaultConfigValidates(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaultConfig().Validate() = %v, want nil", err)
	}
}

// TestEnvTransformFunc verifies environment variable name transformations
func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// Source
		{"DUCKDB_PATH", "source.path"},
		{"DUCKDB_MAX_MEMORY", "source.max_memory"},
		{"DUCKDB_THREADS", "source.threads"},
		{"SOURCE_LOOKBACK_DAYS", "source.lookback_days"},

		// Engine
		{"ENGINE_PATHS", "engine.paths"},
		{"SIMILARITY_METRIC", "engine.similarity_metric"},
		{"TOP_N_RECOMMENDATIONS", "engine.top_n_recommendations"},
		{"MIN_SUPPORT", "engine.min_support"},
		{"MAX_ITEMSET_LENGTH", "engine.max_itemset_length"},
		{"MIN_ITEMSET_LENGTH_FILTER", "engine.min_itemset_length_filter"},
		{"MIN_BASKET_SIZE", "engine.min_basket_size"},
		{"TOP_ITEMSETS_PER_CANDIDATE", "engine.top_itemsets_per_candidate"},

		// Sink
		{"SINK_ENABLED", "sink.enabled"},
		{"DATABASE_URL", "sink.database_url"},
		{"SINK_BATCH_SIZE", "sink.batch_size"},
		{"SINK_RETRY_DELAY", "sink.retry_delay"},

		// Export
		{"EXPORT_ENABLED", "export.enabled"},
		{"EXPORT_PATH", "export.path"},

		// Metrics
		{"PUSH_GATEWAY_URL", "metrics.push_gateway_url"},
		{"METRICS_JOB_NAME", "metrics.job_name"},

		// Logging
		{"LOG_LEVEL", "logging.level"},
		{"LOG_FORMAT", "logging.format"},

		// Unknown (should return empty)
		{"RANDOM_VAR", ""},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := envTransformFunc(tt.input)
			if result != tt.expected {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

// TestFindConfigFile verifies config file discovery
func TestFindConfigFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	origDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	defer func() {
		if err := os.Chdir(origDir); err != nil {
			t.Errorf("Failed to restore working directory: %v", err)
		}
	}()

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change to temp directory: %v", err)
	}

	t.Run("no config file exists", func(t *testing.T) {
		os.Unsetenv(ConfigPathEnvVar)
		result := findConfigFile()
		if result != "" {
			t.Errorf("findConfigFile() = %q, want empty string", result)
		}
	})

	t.Run("config.yaml exists", func(t *testing.T) {
		configPath := filepath.Join(tmpDir, "config.yaml")
		if err := os.WriteFile(configPath, []byte("logging:\n  level: info\n"), 0644); err != nil {
			t.Fatalf("Failed to create config file: %v", err)
		}
		defer os.Remove(configPath)

		os.Unsetenv(ConfigPathEnvVar)
		result := findConfigFile()
		if result != "config.yaml" {
			t.Errorf("findConfigFile() = %q, want config.yaml", result)
		}
	})

	t.Run("CONFIG_PATH env var takes precedence", func(t *testing.T) {
		customPath := filepath.Join(tmpDir, "custom_config.yaml")
		if err := os.WriteFile(customPath, []byte("logging:\n  level: info\n"), 0644); err != nil {
			t.Fatalf("Failed to create custom config file: %v", err)
		}
		defer os.Remove(customPath)

		os.Setenv(ConfigPathEnvVar, customPath)
		defer os.Unsetenv(ConfigPathEnvVar)

		result := findConfigFile()
		if result != customPath {
			t.Errorf("findConfigFile() = %q, want %q", result, customPath)
		}
	})

	t.Run("CONFIG_PATH env var with non-existent file", func(t *testing.T) {
		os.Setenv(ConfigPathEnvVar, "/non/existent/config.yaml")
		defer os.Unsetenv(ConfigPathEnvVar)

		result := findConfigFile()
		if result != "" {
			t.Errorf("findConfigFile() = %q, want empty string", result)
		}
	})
}

// TestLoadWithKoanfEnvVars tests loading configuration from environment variables
func TestLoadWithKoanfEnvVars(t *testing.T) {
	os.Clearenv()

	os.Setenv("DUCKDB_PATH", ":memory:")
	os.Setenv("SIMILARITY_METRIC", "jaccard")
	os.Setenv("TOP_N_RECOMMENDATIONS", "10")
	os.Setenv("MIN_SUPPORT", "0.05")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("SINK_RETRY_DELAY", "5s")
	defer os.Clearenv()

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	// Verify custom overrides
	if cfg.Source.Path != ":memory:" {
		t.Errorf("Source.Path = %q, want :memory:", cfg.Source.Path)
	}
	if cfg.Engine.SimilarityMetric != "jaccard" {
		t.Errorf("Engine.SimilarityMetric = %q, want jaccard", cfg.Engine.SimilarityMetric)
	}
	if cfg.Engine.TopNRecommendations != 10 {
		t.Errorf("Engine.TopNRecommendations = %d, want 10", cfg.Engine.TopNRecommendations)
	}
	if cfg.Engine.MinSupport != 0.05 {
		t.Errorf("Engine.MinSupport = %v, want 0.05", cfg.Engine.MinSupport)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Sink.RetryDelay != 5*time.Second {
		t.Errorf("Sink.RetryDelay = %v, want 5s", cfg.Sink.RetryDelay)
	}

	// Verify defaults are still applied for unset values
	if cfg.Engine.MinBasketSize != 4 {
		t.Errorf("Engine.MinBasketSize = %d, want 4 (default)", cfg.Engine.MinBasketSize)
	}
	if cfg.Source.MaxMemory != "2GB" {
		t.Errorf("Source.MaxMemory = %q, want 2GB (default)", cfg.Source.MaxMemory)
	}
}

// TestLoadWithKoanfSlicePaths tests comma-separated ENGINE_PATHS parsing
func TestLoadWithKoanfSlicePaths(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  []string
	}{
		{"single path", "pairwise", []string{"pairwise"}},
		{"both paths", "pairwise,itemset", []string{"pairwise", "itemset"}},
		{"spaces trimmed", " itemset , pairwise ", []string{"itemset", "pairwise"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			os.Setenv("ENGINE_PATHS", tt.value)
			defer os.Clearenv()

			cfg, err := LoadWithKoanf()
			if err != nil {
				t.Fatalf("LoadWithKoanf() error = %v", err)
			}

			if len(cfg.Engine.Paths) != len(tt.want) {
				t.Fatalf("Engine.Paths = %v, want %v", cfg.Engine.Paths, tt.want)
			}
			for i, p := range tt.want {
				if cfg.Engine.Paths[i] != p {
					t.Errorf("Engine.Paths[%d] = %q, want %q", i, cfg.Engine.Paths[i], p)
				}
			}
		})
	}
}

// TestLoadWithKoanfConfigFile tests loading configuration from a YAML file
func TestLoadWithKoanfConfigFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	configContent := `
source:
  path: "/tmp/affinity_test.duckdb"
  max_memory: "512MB"

engine:
  similarity_metric: "jaccard"
  top_n_recommendations: 8
  paths:
    - pairwise

logging:
  level: "warn"
`
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}

	os.Clearenv()
	os.Setenv(ConfigPathEnvVar, configPath)
	defer os.Clearenv()

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Source.Path != "/tmp/affinity_test.duckdb" {
		t.Errorf("Source.Path = %q, want /tmp/affinity_test.duckdb", cfg.Source.Path)
	}
	if cfg.Source.MaxMemory != "512MB" {
		t.Errorf("Source.MaxMemory = %q, want 512MB", cfg.Source.MaxMemory)
	}
	if cfg.Engine.SimilarityMetric != "jaccard" {
		t.Errorf("Engine.SimilarityMetric = %q, want jaccard", cfg.Engine.SimilarityMetric)
	}
	if cfg.Engine.TopNRecommendations != 8 {
		t.Errorf("Engine.TopNRecommendations = %d, want 8", cfg.Engine.TopNRecommendations)
	}
	if len(cfg.Engine.Paths) != 1 || cfg.Engine.Paths[0] != "pairwise" {
		t.Errorf("Engine.Paths = %v, want [pairwise]", cfg.Engine.Paths)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}

	// Defaults fill the gaps the file does not cover
	if cfg.Engine.MinBasketSize != 4 {
		t.Errorf("Engine.MinBasketSize = %d, want 4 (default)", cfg.Engine.MinBasketSize)
	}
}

// TestLoadWithKoanfEnvOverridesFile tests that environment variables win over the file
func TestLoadWithKoanfEnvOverridesFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	configContent := `
engine:
  similarity_metric: "cosine"
logging:
  level: "warn"
`
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}

	os.Clearenv()
	os.Setenv(ConfigPathEnvVar, configPath)
	os.Setenv("SIMILARITY_METRIC", "jaccard")
	defer os.Clearenv()

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Engine.SimilarityMetric != "jaccard" {
		t.Errorf("Engine.SimilarityMetric = %q, want jaccard (env should win)", cfg.Engine.SimilarityMetric)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn (from file)", cfg.Logging.Level)
	}
}

// TestLoadWithKoanfInvalidConfig tests that validation rejects bad values
func TestLoadWithKoanfInvalidConfig(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown metric", "SIMILARITY_METRIC", "euclidean"},
		{"unknown engine path", "ENGINE_PATHS", "streaming"},
		{"zero top n", "TOP_N_RECOMMENDATIONS", "0"},
		{"negative min support", "MIN_SUPPORT", "-0.5"},
		{"min support above one", "MIN_SUPPORT", "1.5"},
		{"bad log level", "LOG_LEVEL", "loud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			os.Setenv(tt.key, tt.value)
			defer os.Clearenv()

			if _, err := LoadWithKoanf(); err == nil {
				t.Errorf("LoadWithKoanf() with %s=%s succeeded, want error", tt.key, tt.value)
			}
		})
	}
}
