// Affinity - Batch Item Recommendation Engine
// Copyright 2026 The Affinity Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/commercekit/affinity

//go:build integration

package sink

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/commercekit/affinity/internal/config"
	"github.com/commercekit/affinity/internal/testinfra"
)

// Usage:
//   go test -tags integration -run TestSink ./internal/sink/...

// TestSink_Integration runs the full write path against a real PostgreSQL
// instance: migrations, the demote-then-insert refresh, and read-back of
// what downstream consumers would see.
func TestSink_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testinfra.SkipIfNoDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	pg, err := testinfra.NewPostgresContainer(ctx,
		testinfra.WithStartTimeout(90*time.Second),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer testinfra.CleanupContainer(t, ctx, pg.Container)

	cfg := &config.SinkConfig{
		Enabled:        true,
		DatabaseURL:    pg.ConnectionString(),
		BatchSize:      500,
		RetryAttempts:  3,
		RetryDelay:     500 * time.Millisecond,
		MigrateOnStart: true,
	}

	s, err := New(ctx, cfg, testLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	runA := uuid.New().String()
	runB := uuid.New().String()

	t.Run("ping succeeds", func(t *testing.T) {
		if err := s.Ping(ctx); err != nil {
			t.Fatalf("Ping() error = %v", err)
		}
	})

	t.Run("migrations create empty schema", func(t *testing.T) {
		var count int
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM recommendations").Scan(&count); err != nil {
			t.Fatalf("count recommendations: %v", err)
		}
		if count != 0 {
			t.Errorf("fresh schema has %d rows, want 0", count)
		}
	})

	t.Run("first write marks all rows current", func(t *testing.T) {
		recs := testRecommendations()

		written, err := s.WriteRecommendations(ctx, runA, recs)
		if err != nil {
			t.Fatalf("WriteRecommendations() error = %v", err)
		}
		if written != len(recs) {
			t.Errorf("WriteRecommendations() = %d, want %d", written, len(recs))
		}

		var current int
		if err := s.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM recommendations WHERE is_current").Scan(&current); err != nil {
			t.Fatalf("count current rows: %v", err)
		}
		if current != len(recs) {
			t.Errorf("current rows = %d, want %d", current, len(recs))
		}
	})

	t.Run("second write demotes previous rows", func(t *testing.T) {
		recs := testRecommendations()

		if _, err := s.WriteRecommendations(ctx, runB, recs); err != nil {
			t.Fatalf("WriteRecommendations() error = %v", err)
		}

		var current, total int
		if err := s.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FILTER (WHERE is_current), COUNT(*) FROM recommendations").
			Scan(&current, &total); err != nil {
			t.Fatalf("count rows: %v", err)
		}
		if current != len(recs) {
			t.Errorf("current rows = %d, want %d", current, len(recs))
		}
		if total != 2*len(recs) {
			t.Errorf("total rows = %d, want %d", total, 2*len(recs))
		}

		// Every current row must belong to the latest run.
		var stale int
		if err := s.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM recommendations WHERE is_current AND run_id <> $1",
			runB).Scan(&stale); err != nil {
			t.Fatalf("count stale rows: %v", err)
		}
		if stale != 0 {
			t.Errorf("current rows outside run %s = %d, want 0", runB, stale)
		}
	})

	t.Run("current rows read back per entity", func(t *testing.T) {
		rows, err := s.db.QueryContext(ctx, `
			SELECT recommended_item_id, score
			FROM recommendations
			WHERE is_current AND entity_id = $1 AND model_type = $2
			ORDER BY recommended_item_id`, "u1", "pairwise")
		if err != nil {
			t.Fatalf("query current rows: %v", err)
		}
		defer rows.Close()

		var got []string
		for rows.Next() {
			var item string
			var score float64
			if err := rows.Scan(&item, &score); err != nil {
				t.Fatalf("scan row: %v", err)
			}
			got = append(got, item)
		}
		if err := rows.Err(); err != nil {
			t.Fatalf("iterate rows: %v", err)
		}

		want := []string{"sku-b", "sku-c"}
		if len(got) != len(want) {
			t.Fatalf("current items = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("item[%d] = %q, want %q", i, got[i], want[i])
			}
		}
	})
}

// TestSink_Integration_Reconnect verifies a second Sink against the same
// database skips nothing: migrations are idempotent and existing rows
// survive.
func TestSink_Integration_Reconnect(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testinfra.SkipIfNoDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	pg, err := testinfra.NewPostgresContainer(ctx,
		testinfra.WithStartTimeout(90*time.Second),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer testinfra.CleanupContainer(t, ctx, pg.Container)

	cfg := &config.SinkConfig{
		Enabled:        true,
		DatabaseURL:    pg.ConnectionString(),
		BatchSize:      500,
		RetryAttempts:  3,
		RetryDelay:     500 * time.Millisecond,
		MigrateOnStart: true,
	}

	first, err := New(ctx, cfg, testLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := first.WriteRecommendations(ctx, uuid.New().String(), testRecommendations()); err != nil {
		t.Fatalf("WriteRecommendations() error = %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	second, err := New(ctx, cfg, testLogger())
	if err != nil {
		t.Fatalf("New() after reconnect error = %v", err)
	}
	defer second.Close()

	var count int
	if err := second.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM recommendations").Scan(&count); err != nil {
		t.Fatalf("count recommendations: %v", err)
	}
	if count != len(testRecommendations()) {
		t.Errorf("rows after reconnect = %d, want %d", count, len(testRecommendations()))
	}
}
