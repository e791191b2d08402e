// Affinity - Batch Item Recommendation Engine
// Copyright 2026 The Affinity Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/commercekit/affinity

/*
schema.go - Event Store Schema Management

This file manages the DuckDB schema for the interaction event store.

Tables:
  - interaction_events: All commerce interaction activity (views, cart
    additions, order lines). Order lines carry an order_id; other event
    kinds leave it empty.

Schema Strategy:
All columns are defined in the initial CREATE TABLE statement. The store
is rebuilt from CSV extracts rather than migrated in place, so versioned
migrations are not needed here.

Index Strategy:
Indexes cover the loader access paths:
  - occurred_at for lookback windowing
  - user_id + item_id for the pairwise projection
  - order_id for the itemset projection
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	queries := []string{
		`CREATE TABLE IF NOT EXISTS interaction_events (
			user_id TEXT NOT NULL DEFAULT '',
			item_id TEXT NOT NULL DEFAULT '',
			order_id TEXT NOT NULL DEFAULT '',
			occurred_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, query := range queries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}

// createIndexes creates indexes for the loader access paths
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_events_occurred_at ON interaction_events(occurred_at)`,
		`CREATE INDEX IF NOT EXISTS idx_events_user_item ON interaction_events(user_id, item_id)`,
		`CREATE INDEX IF NOT EXISTS idx_events_order ON interaction_events(order_id)`,
	}

	for _, query := range indexes {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}

	return nil
}
