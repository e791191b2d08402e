// Affinity - Batch Item Recommendation Engine
// Copyright 2026 The Affinity Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/commercekit/affinity

package config

import (
	"fmt"

	"github.com/commercekit/affinity/internal/validation"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateTags(); err != nil {
		return err
	}

	if err := c.validateEngine(); err != nil {
		return err
	}

	if err := c.validateSink(); err != nil {
		return err
	}

	if err := c.validateExport(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateTags runs struct tag validation (required, oneof, ranges)
// across the whole configuration tree.
func (c *Config) validateTags() error {
	if err := validation.ValidateStruct(c); err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}
	return nil
}

// validateEngine validates cross-field engine constraints the struct
// tags cannot express.
func (c *Config) validateEngine() error {
	seen := make(map[string]bool, len(c.Engine.Paths))
	for _, p := range c.Engine.Paths {
		if seen[p] {
			return fmt.Errorf("ENGINE_PATHS contains duplicate path %q", p)
		}
		seen[p] = true
	}

	if c.Engine.MinItemsetLengthFilter >= c.Engine.MaxItemsetLength {
		return fmt.Errorf("MIN_ITEMSET_LENGTH_FILTER (%d) must be below MAX_ITEMSET_LENGTH (%d)",
			c.Engine.MinItemsetLengthFilter, c.Engine.MaxItemsetLength)
	}

	return nil
}

// validateSink validates sink configuration (only if enabled)
func (c *Config) validateSink() error {
	if !c.Sink.Enabled {
		return nil // Sink is optional - no validation needed when disabled
	}

	if c.Sink.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required when SINK_ENABLED=true")
	}

	if c.Sink.RetryDelay <= 0 {
		return fmt.Errorf("SINK_RETRY_DELAY must be positive")
	}

	if c.Sink.BreakerFailureThreshold == 0 {
		return fmt.Errorf("SINK_BREAKER_FAILURE_THRESHOLD must be positive")
	}

	if c.Sink.BreakerTimeout <= 0 {
		return fmt.Errorf("SINK_BREAKER_TIMEOUT must be positive")
	}

	return nil
}

// validateExport validates export configuration (only if enabled)
func (c *Config) validateExport() error {
	if !c.Export.Enabled {
		return nil
	}

	if c.Export.Path == "" {
		return fmt.Errorf("EXPORT_PATH is required when EXPORT_ENABLED=true")
	}

	return nil
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if err := c.validateLogLevel(); err != nil {
		return err
	}
	return c.validateLogFormat()
}

// validateLogLevel validates the log level configuration
func (c *Config) validateLogLevel() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	return nil
}

// validateLogFormat validates the log format configuration
func (c *Config) validateLogFormat() error {
	if c.Logging.Format == "" {
		return nil
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
