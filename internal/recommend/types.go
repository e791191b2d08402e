// Affinity - Batch Item Recommendation Engine
// Copyright 2026 The Affinity Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/commercekit/affinity

package recommend

import (
	"time"
)

// ModelType identifies which recommendation path produced a record.
type ModelType string

const (
	// ModelTypePairwise marks records from the pairwise similarity path.
	ModelTypePairwise ModelType = "pairwise"
	// ModelTypeItemset marks records from the frequent itemset path.
	ModelTypeItemset ModelType = "itemset"
)

// String returns the model type name.
func (t ModelType) String() string {
	return string(t)
}

// Valid reports whether the model type is a known value.
func (t ModelType) Valid() bool {
	return t == ModelTypePairwise || t == ModelTypeItemset
}

// InteractionEvent is one observed user-item interaction.
// It is the immutable input record for both recommendation paths.
type InteractionEvent struct {
	// UserID identifies the interacting user. Opaque non-empty string;
	// events with an empty UserID are discarded by the matrix builder.
	UserID string `json:"user_id"`

	// ItemID identifies the interacted item. Opaque non-empty string.
	ItemID string `json:"item_id"`

	// OrderID groups events into a purchase transaction. Optional;
	// only the association path reads it.
	OrderID string `json:"order_id,omitempty"`

	// OccurredAt is when the interaction happened. Loaders use it for
	// lookback windows; the core algorithms ignore it.
	OccurredAt time.Time `json:"occurred_at,omitempty"`
}

// Transaction is one order collapsed to its distinct item set.
// Items are sorted lexicographically and duplicates are removed.
type Transaction struct {
	// OrderID identifies the source order.
	OrderID string `json:"order_id"`

	// Items is the sorted set of distinct item IDs in the order.
	Items []string `json:"items"`
}

// Size returns the number of distinct items in the transaction.
func (t Transaction) Size() int {
	return len(t.Items)
}

// Contains reports whether the transaction includes the given item.
// Items is sorted, so this is a binary search.
func (t Transaction) Contains(itemID string) bool {
	lo, hi := 0, len(t.Items)
	for lo < hi {
		mid := (lo + hi) / 2
		if t.Items[mid] < itemID {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo < len(t.Items) && t.Items[lo] == itemID
}

// Recommendation is one generated (entity, item) pair.
//
// Invariants: RecommendedItemID never equals SourceEntityID, and within
// one model type a source entity never repeats a recommended item.
type Recommendation struct {
	// SourceEntityID is the entity the recommendation is for: a user ID
	// on the pairwise path, an item ID on the itemset path.
	SourceEntityID string `json:"entity_id"`

	// RecommendedItemID is the item being recommended.
	RecommendedItemID string `json:"recommended_item_id"`

	// Score is the similarity score rounded to five decimal places.
	// Set on the pairwise path only; nil means no score.
	Score *float64 `json:"score,omitempty"`

	// Rank is an optional explicit position. Unset by both current paths;
	// consumers order by score or by record order.
	Rank *int `json:"rank,omitempty"`

	// ModelType records which path generated this recommendation.
	ModelType ModelType `json:"model_type"`
}

// Model is a recommendation path that fits on raw events and generates
// per-entity recommendations.
//
// Fit builds all model state in one synchronous pass; it returns a fatal
// error (wrapping one of this package's sentinel errors) when the input
// cannot support the model. RecommendFor is entity-isolated: an error for
// one entity must not affect any other.
type Model interface {
	// Name returns the model identifier (e.g., "pairwise", "itemset").
	Name() string

	// ModelType returns the type stamped on generated records.
	ModelType() ModelType

	// Fit builds model state from interaction events.
	Fit(events []InteractionEvent) error

	// IsFitted reports whether Fit has completed successfully.
	IsFitted() bool

	// Entities returns the sorted IDs the model can recommend for.
	// Empty until fitted.
	Entities() []string

	// RecommendFor generates recommendations for a single entity.
	// Returns an error for unknown entities or internal failures;
	// such errors are per-entity and never fatal to the batch.
	RecommendFor(entityID string) ([]Recommendation, error)
}

// Float64 returns a pointer to v. Helper for optional Recommendation scores.
func Float64(v float64) *float64 {
	return &v
}

// Int returns a pointer to v. Helper for optional Recommendation ranks.
func Int(v int) *int {
	return &v
}
