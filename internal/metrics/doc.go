// Affinity - Batch Item Recommendation Engine
// Copyright 2026 The Affinity Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/commercekit/affinity

/*
Package metrics provides Prometheus instrumentation for batch runs.

This package implements run-level instrumentation using the Prometheus
client library. Because the engine runs as a batch job rather than a
long-lived server, metrics are not scraped from an endpoint; at the end of
a run they are optionally pushed to a Pushgateway, the standard delivery
path for short-lived jobs.

# Available Metrics

Run Metrics:
  - run_duration_seconds: End-to-end batch run duration (histogram)
    Buckets: 1, 5, 10, 30, 60, 120, 300, 600
  - run_stage_duration_seconds: Per-stage duration (histogram)
    Labels: stage (load, generate, sink, export)
  - run_last_success_timestamp: Unix timestamp of last successful run (gauge)
  - run_errors_total: Failed runs (counter)

Engine Metrics:
  - events_loaded_total: Interaction events loaded (counter)
    Labels: projection (user_item, order_item)
  - recommendations_generated_total: Recommendation records produced (counter)
    Labels: model_type (pairwise, itemset)
  - recommendation_entity_failures_total: Entities skipped by isolation (counter)
    Labels: model_type
  - model_failures_total: Model paths that failed entirely (counter)
    Labels: model_type

Output Metrics:
  - sink_rows_written_total: Rows written to the PostgreSQL sink (counter)
  - export_rows_written_total: Lines written to the JSONL export (counter)

# Pushgateway

Push is disabled when no Pushgateway URL is configured. With a URL set,
the run's final state of every registered metric is pushed under the
configured job label:

	if err := metrics.Push(ctx, cfg.Metrics); err != nil {
	    logging.Warn().Err(err).Msg("Metrics push failed")
	}

A failed push never fails the run; the recommendations are already
written by the time the push happens.
*/
package metrics
