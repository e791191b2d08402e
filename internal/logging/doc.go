// Affinity - Batch Item Recommendation Engine
// Copyright 2026 The Affinity Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/commercekit/affinity

// Package logging provides centralized zerolog-based logging for Affinity.
//
// All output goes through a single global logger so that batch runs emit one
// coherent, structured stream regardless of which stage is executing:
//
//   - Zero-allocation structured logging
//   - JSON output for production, console output for local runs
//   - Component sub-loggers via With()
//
// # Quick Start
//
//	import "github.com/commercekit/affinity/internal/logging"
//
//	// Initialize at process startup
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	// Log messages
//	logging.Info().Str("run_id", runID).Msg("Batch run starting")
//	logging.Error().Err(err).Msg("Sink write failed")
//
// # Best Practices
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Info().Str("key", "value").Msg("message")  // Correct
//	logging.Info().Str("key", "value")                 // WRONG - log not emitted
//
// Use structured fields instead of string formatting:
//
//	logging.Info().Str("path", p).Int("count", n).Msg("events loaded")  // Correct
//	logging.Info().Msgf("loaded %d events from %s", n, p)               // Avoid
package logging
