// Affinity - Batch Item Recommendation Engine
// Copyright 2026 The Affinity Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/commercekit/affinity

// Package database provides the DuckDB-backed interaction event store.
//
// The store holds raw commerce interaction events (views, cart additions,
// order lines) and serves them to the recommendation engine as ordered
// slices. DuckDB fits the batch shape of this workload: a single analytical
// file database that ingests CSV extracts quickly and scans millions of
// rows without a server process.
//
// # Event Model
//
// Every row in interaction_events carries a user, an item, an optional
// order reference, and an occurrence timestamp:
//
//   - user_id: the interacting customer (empty for anonymous order lines)
//   - item_id: the product SKU
//   - order_id: set when the event is an order line, empty otherwise
//   - occurred_at: when the interaction happened
//
// The two model paths read different projections of the same table.
// LoadUserItemEvents feeds the pairwise similarity path with user-item
// pairs. LoadOrderItemEvents feeds the itemset mining path with order
// lines only. Each projection clears the other's reference column on the
// returned events, so the two slices can be concatenated into one engine
// input without any row feeding both paths.
//
// # Determinism
//
// Both loaders apply a total ORDER BY so repeated runs over the same data
// return events in identical order. The engine sorts again internally, but
// stable load order keeps logs and failure reports reproducible.
//
// # Ingestion
//
// IngestCSV loads a CSV extract directly through DuckDB's read_csv_auto,
// which infers column types and parses timestamps without row-by-row
// round trips through Go.
//
// # Usage
//
//	db, err := database.New(&cfg.Source)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	events, err := db.LoadUserItemEvents(ctx, since)
//
// # Thread Safety
//
// DB wraps database/sql and is safe for concurrent use. The batch binary
// uses it from a single goroutine.
package database
