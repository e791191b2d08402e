// Affinity - Batch Item Recommendation Engine
// Copyright 2026 The Affinity Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/commercekit/affinity

package recommend

import (
	"errors"
	"fmt"
)

// Sentinel errors for fatal structural failures. These surface immediately
// with no retry; callers match them with errors.Is.
var (
	// ErrEmptyInteractionData indicates no usable rows remained after
	// building or filtering the model input.
	ErrEmptyInteractionData = errors.New("no interaction data after filtering")

	// ErrAllItemsPruned indicates sparsity reduction removed every item
	// from the interaction matrix.
	ErrAllItemsPruned = errors.New("sparsity reduction removed all items")

	// ErrUnsupportedSimilarityMetric indicates a similarity metric outside
	// the supported set. Raised before any computation starts.
	ErrUnsupportedSimilarityMetric = errors.New("unsupported similarity metric")

	// ErrInsufficientSupportItemsets indicates no mined itemset survived
	// the support threshold and length filter.
	ErrInsufficientSupportItemsets = errors.New("no itemsets meet support and length requirements")

	// ErrNotFitted indicates recommendation was requested before Fit.
	ErrNotFitted = errors.New("model is not fitted")

	// ErrUnknownEntity indicates a RecommendFor call for an entity the
	// fitted model has no state for.
	ErrUnknownEntity = errors.New("unknown entity")
)

// EntityFailure records one entity whose recommendation generation failed.
// Failures are isolated: they are collected alongside successful records
// and never abort the batch.
type EntityFailure struct {
	// EntityID is the entity that failed.
	EntityID string `json:"entity_id"`

	// Model is the name of the model that produced the failure.
	Model string `json:"model"`

	// Err is the underlying cause.
	Err error `json:"-"`
}

// Error implements the error interface.
func (f *EntityFailure) Error() string {
	return fmt.Sprintf("generate recommendations for entity %q (model %s): %v", f.EntityID, f.Model, f.Err)
}

// Unwrap returns the underlying cause for errors.Is/As matching.
func (f *EntityFailure) Unwrap() error {
	return f.Err
}

// PathError records a fatal failure of one whole recommendation path.
// Other registered paths still run; the batch result carries the error.
type PathError struct {
	// Model is the name of the failed model.
	Model string `json:"model"`

	// Err is the underlying cause.
	Err error `json:"-"`
}

// Error implements the error interface.
func (p *PathError) Error() string {
	return fmt.Sprintf("fit model %s: %v", p.Model, p.Err)
}

// Unwrap returns the underlying cause for errors.Is/As matching.
func (p *PathError) Unwrap() error {
	return p.Err
}
