// Affinity - Batch Item Recommendation Engine
// Copyright 2026 The Affinity Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/commercekit/affinity

package database

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/commercekit/affinity/internal/logging"
)

// IngestCSV bulk-loads interaction events from a CSV extract.
//
// The file must carry a header row with user_id, item_id, order_id and
// occurred_at columns. DuckDB's read_csv_auto infers the column types
// and parses timestamps directly, so rows never round-trip through Go.
// Missing user_id or order_id values load as empty strings.
//
// Returns the number of rows loaded.
func (db *DB) IngestCSV(ctx context.Context, path string) (int64, error) {
	if _, err := os.Stat(path); err != nil {
		return 0, fmt.Errorf("ingest csv: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	defer cancel()

	query := `
		INSERT INTO interaction_events (user_id, item_id, order_id, occurred_at)
		SELECT
			COALESCE(CAST(user_id AS TEXT), ''),
			COALESCE(CAST(item_id AS TEXT), ''),
			COALESCE(CAST(order_id AS TEXT), ''),
			CAST(occurred_at AS TIMESTAMP)
		FROM read_csv_auto(?, header = true)`

	result, err := db.conn.ExecContext(ctx, query, path)
	if err != nil {
		return 0, fmt.Errorf("ingest csv %s: %w", path, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("ingest csv row count: %w", err)
	}

	logging.Info().
		Str("path", path).
		Int64("rows", rows).
		Msg("CSV ingest complete")

	return rows, nil
}
