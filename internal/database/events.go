// Affinity - Batch Item Recommendation Engine
// Copyright 2026 The Affinity Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/commercekit/affinity

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/commercekit/affinity/internal/logging"
	"github.com/commercekit/affinity/internal/recommend"
)

// LoadUserItemEvents returns user-item interaction events for the pairwise
// similarity path. Events without a user or item reference are excluded,
// and returned events carry only this projection's fields: OrderID is
// always empty, so the slice can be combined with the order projection
// without a row feeding both model paths. A zero since loads all recorded
// history; otherwise only events at or after since are returned.
//
// Results are totally ordered so repeated runs over the same data load
// events identically.
func (db *DB) LoadUserItemEvents(ctx context.Context, since time.Time) ([]recommend.InteractionEvent, error) {
	query := `
		SELECT user_id, item_id, '' AS order_id, occurred_at
		FROM interaction_events
		WHERE user_id <> ''
		  AND item_id <> ''`

	var args []any
	if !since.IsZero() {
		query += `
		  AND occurred_at >= ?`
		args = append(args, since)
	}

	query += `
		ORDER BY occurred_at, user_id, item_id, order_id`

	return db.loadEvents(ctx, "user-item events", query, args...)
}

// LoadOrderItemEvents returns order line events for the itemset mining
// path. Only events carrying an order reference qualify; UserID is always
// empty on returned events, mirroring the user projection. A zero since
// loads all recorded history.
func (db *DB) LoadOrderItemEvents(ctx context.Context, since time.Time) ([]recommend.InteractionEvent, error) {
	query := `
		SELECT '' AS user_id, item_id, order_id, occurred_at
		FROM interaction_events
		WHERE order_id <> ''
		  AND item_id <> ''`

	var args []any
	if !since.IsZero() {
		query += `
		  AND occurred_at >= ?`
		args = append(args, since)
	}

	query += `
		ORDER BY occurred_at, order_id, item_id`

	return db.loadEvents(ctx, "order-item events", query, args...)
}

// loadEvents runs an event projection query and scans the result rows
func (db *DB) loadEvents(ctx context.Context, label, query string, args ...any) ([]recommend.InteractionEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", label, err)
	}
	defer rows.Close()

	var events []recommend.InteractionEvent
	for rows.Next() {
		var (
			userID     string
			itemID     string
			orderID    string
			occurredAt time.Time
		)

		if err := rows.Scan(&userID, &itemID, &orderID, &occurredAt); err != nil {
			return nil, fmt.Errorf("scan %s: %w", label, err)
		}

		events = append(events, recommend.InteractionEvent{
			UserID:     userID,
			ItemID:     itemID,
			OrderID:    orderID,
			OccurredAt: occurredAt,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", label, err)
	}

	return events, nil
}

// InsertEvents atomically writes interaction events to the store.
// All events are inserted or none are. Used by tests and programmatic
// seeding; bulk loads should prefer IngestCSV.
func (db *DB) InsertEvents(ctx context.Context, events []recommend.InteractionEvent) (err error) {
	if len(events) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Ensure transaction is finalized
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.Error().
					Err(rbErr).
					AnErr("original_error", err).
					Msg("Transaction rollback failed")
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO interaction_events (user_id, item_id, order_id, occurred_at)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert events: %w", err)
	}
	defer closeWithLog(stmt, "insert statement")

	for _, ev := range events {
		if _, err = stmt.ExecContext(ctx, ev.UserID, ev.ItemID, ev.OrderID, ev.OccurredAt); err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit insert events: %w", err)
	}

	return nil
}

// CountEvents returns the total number of stored interaction events
func (db *DB) CountEvents(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var count int64
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM interaction_events`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}

	return count, nil
}
