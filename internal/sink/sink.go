// Affinity - Batch Item Recommendation Engine
// Copyright 2026 The Affinity Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/commercekit/affinity

package sink

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as database/sql driver
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/commercekit/affinity/internal/config"
	"github.com/commercekit/affinity/internal/recommend"
)

// insertColumns is the column list for recommendation inserts.
// placeholdersPerRow must match the bound placeholders in buildInsert.
const (
	insertColumns      = "run_id, entity_id, recommended_item_id, score, rank, model_type, is_current, generated_at"
	placeholdersPerRow = 7
)

// Sink writes recommendation batches to the PostgreSQL serving database
type Sink struct {
	db      *sql.DB
	cfg     *config.SinkConfig
	logger  zerolog.Logger
	breaker *gobreaker.CircuitBreaker[any]
	limiter *rate.Limiter
}

// New connects to the serving database, optionally applies embedded
// migrations, and returns a ready Sink.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(ctx context.Context, cfg *config.SinkConfig, logger zerolog.Logger) (*Sink, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Batch writer pool: a handful of connections is plenty
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(2 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if cfg.MigrateOnStart {
		if err := RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	return NewWithDB(db, cfg, logger), nil
}

// NewWithDB builds a Sink over an existing connection.
// Used by tests with mocked connections; New is the production path.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewWithDB(db *sql.DB, cfg *config.SinkConfig, logger zerolog.Logger) *Sink {
	s := &Sink{
		db:     db,
		cfg:    cfg,
		logger: logger.With().Str("component", "sink").Logger(),
	}

	s.breaker = newBreaker(cfg, s.logger)

	if cfg.WritesPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.WritesPerSecond), 1)
	}

	return s
}

// newBreaker builds the circuit breaker guarding serving database writes.
// The breaker opens after the configured number of consecutive failures
// and probes again once the timeout elapses.
func newBreaker(cfg *config.SinkConfig, logger zerolog.Logger) *gobreaker.CircuitBreaker[any] {
	threshold := cfg.BreakerFailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	timeout := cfg.BreakerTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "postgres-sink",
		MaxRequests: 1,
		Timeout:     timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", stateToString(from)).
				Str("to", stateToString(to)).
				Msg("Circuit breaker state transition")
		},
	})
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Ping checks if the serving database connection is alive
func (s *Sink) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the serving database connection
func (s *Sink) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// WriteRecommendations writes a batch run's output to the serving table.
//
// The write is a full refresh of every model type present in recs:
// current rows of those model types are demoted and the new rows
// inserted in one transaction, so readers switch over atomically.
// The whole transaction is retried with backoff behind the circuit
// breaker; insert batches respect the configured rate limit.
//
// Returns the number of rows written.
func (s *Sink) WriteRecommendations(ctx context.Context, runID string, recs []recommend.Recommendation) (int, error) {
	if len(recs) == 0 {
		s.logger.Warn().Str("run_id", runID).Msg("no recommendations to write")
		return 0, nil
	}

	modelTypes := distinctModelTypes(recs)
	batches := chunkRecommendations(recs, s.batchSize())
	generatedAt := time.Now().UTC()

	start := time.Now()
	err := s.retryWithBackoff(ctx, func() error {
		_, execErr := s.breaker.Execute(func() (any, error) {
			return nil, s.writeTx(ctx, runID, modelTypes, batches, generatedAt)
		})
		return execErr
	})
	if err != nil {
		return 0, fmt.Errorf("write recommendations: %w", err)
	}

	s.logger.Info().
		Str("run_id", runID).
		Int("rows", len(recs)).
		Int("batches", len(batches)).
		Strs("model_types", modelTypes).
		Dur("duration", time.Since(start)).
		Msg("recommendations written")

	return len(recs), nil
}

// writeTx runs the demote-then-insert refresh in a single transaction
func (s *Sink) writeTx(ctx context.Context, runID string, modelTypes []string, batches [][]recommend.Recommendation, generatedAt time.Time) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	// Ensure transaction is finalized
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error().
					Err(rbErr).
					AnErr("original_error", err).
					Msg("Transaction rollback failed")
			}
		}
	}()

	for _, mt := range modelTypes {
		if _, err = tx.ExecContext(ctx,
			`UPDATE recommendations SET is_current = FALSE WHERE is_current = TRUE AND model_type = $1`,
			mt); err != nil {
			return fmt.Errorf("demote model %s: %w", mt, err)
		}
	}

	for _, batch := range batches {
		if s.limiter != nil {
			if err = s.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("rate limit wait: %w", err)
			}
		}

		query, args := buildInsert(runID, batch, generatedAt)
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert batch: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// buildInsert constructs a multi-row insert statement for one batch
func buildInsert(runID string, recs []recommend.Recommendation, generatedAt time.Time) (string, []any) {
	var sb strings.Builder
	args := make([]any, 0, len(recs)*placeholdersPerRow)

	sb.WriteString("INSERT INTO recommendations (")
	sb.WriteString(insertColumns)
	sb.WriteString(") VALUES ")

	for i, rec := range recs {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * placeholdersPerRow
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, TRUE, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7)
		args = append(args,
			runID,
			rec.SourceEntityID,
			rec.RecommendedItemID,
			rec.Score,
			rec.Rank,
			rec.ModelType.String(),
			generatedAt,
		)
	}

	return sb.String(), args
}

// distinctModelTypes returns the sorted model type names present in recs
func distinctModelTypes(recs []recommend.Recommendation) []string {
	seen := make(map[string]struct{})
	for _, rec := range recs {
		seen[rec.ModelType.String()] = struct{}{}
	}

	types := make([]string, 0, len(seen))
	for mt := range seen {
		types = append(types, mt)
	}
	sort.Strings(types)

	return types
}

// chunkRecommendations splits recs into batches of at most size rows
func chunkRecommendations(recs []recommend.Recommendation, size int) [][]recommend.Recommendation {
	var batches [][]recommend.Recommendation
	for start := 0; start < len(recs); start += size {
		end := start + size
		if end > len(recs) {
			end = len(recs)
		}
		batches = append(batches, recs[start:end])
	}
	return batches
}

func (s *Sink) batchSize() int {
	if s.cfg.BatchSize > 0 {
		return s.cfg.BatchSize
	}
	return 500
}
