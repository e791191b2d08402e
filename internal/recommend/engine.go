// Affinity - Batch Item Recommendation Engine
// Copyright 2026 The Affinity Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/commercekit/affinity

package recommend

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Note: This package has no dependencies on other internal packages to
// maintain clean separation. Loaders and sinks integrate through plain
// InteractionEvent slices and Recommendation records, which keeps the
// core import-free and trivially testable.

// Engine coordinates the registered recommendation models and produces the
// assembled batch output. Model registration is safe for concurrent use;
// Run itself executes the batch synchronously on the calling goroutine.
type Engine struct {
	config *Config
	logger zerolog.Logger

	models  []Model
	modelMu sync.RWMutex
}

// Result is the outcome of one batch run. PathErrors and EntityFailures
// are collected, never thrown: a failed model or entity does not abort
// the rest of the batch.
type Result struct {
	// Recommendations is the assembled, canonically ordered output.
	Recommendations []Recommendation `json:"recommendations"`

	// EntityFailures lists entities skipped due to per-entity errors.
	EntityFailures []EntityFailure `json:"entity_failures,omitempty"`

	// PathErrors lists models whose fit or setup failed entirely.
	PathErrors []PathError `json:"path_errors,omitempty"`

	// Stats summarizes the run.
	Stats RunStats `json:"stats"`
}

// Failed reports whether any registered model failed as a whole.
// Per-entity failures alone do not fail a run.
func (r *Result) Failed() bool {
	return len(r.PathErrors) > 0
}

// RunStats summarizes one batch run for logging and metrics.
type RunStats struct {
	// Events is the number of input interaction events.
	Events int `json:"events"`

	// ModelsRun is the number of models that fitted and generated.
	ModelsRun int `json:"models_run"`

	// ModelsFailed is the number of models with a fatal path error.
	ModelsFailed int `json:"models_failed"`

	// Entities is the total entity count across successful models.
	Entities int `json:"entities"`

	// Records is the number of assembled recommendation records.
	Records int `json:"records"`

	// EntityFailures is the number of entities skipped on error.
	EntityFailures int `json:"entity_failures"`

	// Duration is the wall-clock time of the run.
	Duration time.Duration `json:"duration"`
}

// NewEngine creates a new batch recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		config: cfg,
		logger: logger.With().Str("component", "recommend").Logger(),
		models: make([]Model, 0),
	}, nil
}

// RegisterModel adds a model to the batch.
func (e *Engine) RegisterModel(m Model) {
	e.modelMu.Lock()
	defer e.modelMu.Unlock()

	e.models = append(e.models, m)
	e.logger.Info().
		Str("model", m.Name()).
		Msg("registered model")
}

// GetConfig returns a copy of the current configuration.
func (e *Engine) GetConfig() *Config {
	return e.config.Clone()
}

// Run fits every registered model on the events and generates the
// assembled recommendation batch.
//
// Failure handling is two-tiered. A model whose fit fails is recorded as
// a PathError and the remaining models still run. Within a successful
// model, an entity whose generation fails (including panics) is recorded
// as an EntityFailure and the remaining entities still run. Run returns
// an error only when no model is registered.
func (e *Engine) Run(events []InteractionEvent) (*Result, error) {
	start := time.Now()

	models := e.getModels()
	if len(models) == 0 {
		return nil, fmt.Errorf("no models registered")
	}

	e.logger.Info().
		Int("events", len(events)).
		Int("models", len(models)).
		Msg("starting batch run")

	result := &Result{}
	recordSets := make([][]Recommendation, 0, len(models))

	for _, m := range models {
		run := e.runModel(m, events)
		if run.err != nil {
			e.logger.Error().
				Str("model", run.name).
				Err(run.err).
				Msg("model run failed")
			result.PathErrors = append(result.PathErrors, PathError{Model: run.name, Err: run.err})
			continue
		}

		recordSets = append(recordSets, run.records)
		result.EntityFailures = append(result.EntityFailures, run.failures...)
		result.Stats.ModelsRun++
		result.Stats.Entities += run.entities
	}

	result.Recommendations = Assemble(recordSets...)
	result.Stats.Events = len(events)
	result.Stats.ModelsFailed = len(result.PathErrors)
	result.Stats.Records = len(result.Recommendations)
	result.Stats.EntityFailures = len(result.EntityFailures)
	result.Stats.Duration = time.Since(start)

	e.logger.Info().
		Int("models_run", result.Stats.ModelsRun).
		Int("models_failed", result.Stats.ModelsFailed).
		Int("entities", result.Stats.Entities).
		Int("records", result.Stats.Records).
		Int("entity_failures", result.Stats.EntityFailures).
		Int64("duration_ms", result.Stats.Duration.Milliseconds()).
		Msg("batch run complete")

	return result, nil
}

// modelRun holds the outcome of fitting and generating with one model.
type modelRun struct {
	name     string
	records  []Recommendation
	failures []EntityFailure
	entities int
	err      error
}

// runModel fits one model and generates records for all its entities.
func (e *Engine) runModel(m Model, events []InteractionEvent) modelRun {
	run := modelRun{name: m.Name()}

	fitStart := time.Now()
	if err := m.Fit(events); err != nil {
		run.err = fmt.Errorf("fit: %w", err)
		return run
	}

	entities := m.Entities()
	run.entities = len(entities)

	e.logger.Debug().
		Str("model", m.Name()).
		Int("entities", len(entities)).
		Int64("fit_ms", time.Since(fitStart).Milliseconds()).
		Msg("model fitted")

	for _, entityID := range entities {
		recs, err := e.recommendEntity(m, entityID)
		if err != nil {
			e.logger.Warn().
				Str("model", m.Name()).
				Str("entity", entityID).
				Err(err).
				Msg("entity generation failed")
			run.failures = append(run.failures, EntityFailure{
				EntityID: entityID,
				Model:    m.Name(),
				Err:      err,
			})
			continue
		}
		run.records = append(run.records, recs...)
	}

	return run
}

// recommendEntity generates records for one entity, converting panics into
// ordinary per-entity errors so a single bad entity cannot take down the
// whole batch.
func (e *Engine) recommendEntity(m Model, entityID string) (recs []Recommendation, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	return m.RecommendFor(entityID)
}

// getModels returns a snapshot of registered models.
func (e *Engine) getModels() []Model {
	e.modelMu.RLock()
	defer e.modelMu.RUnlock()

	models := make([]Model, len(e.models))
	copy(models, e.models)
	return models
}
