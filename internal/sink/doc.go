// Affinity - Batch Item Recommendation Engine
// Copyright 2026 The Affinity Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/commercekit/affinity

// Package sink writes generated recommendations to the PostgreSQL
// serving database.
//
// The serving table keeps every batch run's output. Rows from the
// latest run carry is_current = TRUE; the storefront reads only
// current rows. A batch run is a full refresh of each model's output,
// so the write demotes all current rows of the refreshed model types
// and inserts the new batch inside one transaction. Readers never
// observe a half-refreshed model.
//
// # Resilience
//
// The serving database is shared with live traffic, so writes are
// defensive on three layers:
//
//   - retry with exponential backoff on transient failures
//   - a circuit breaker that fails fast after repeated failures
//   - an optional rate limit on insert batches
//
// A sink failure never corrupts served data: the demote and insert
// either both commit or both roll back.
//
// # Migrations
//
// Schema migrations are embedded in the binary and applied through
// goose on startup when sink.migrate_on_start is enabled.
package sink
