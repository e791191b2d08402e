// Affinity - Batch Item Recommendation Engine
// Copyright 2026 The Affinity Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/commercekit/affinity

package algorithms

import (
	"fmt"
	"sort"

	"github.com/commercekit/affinity/internal/recommend"
)

// ItemsetConfig configures the frequent itemset model.
type ItemsetConfig struct {
	// MinSupport is the minimum fraction of transactions an itemset must
	// appear in. Default: 0.0001.
	MinSupport float64

	// MaxItemsetLength bounds the size of mined itemsets. Default: 10.
	MaxItemsetLength int

	// MinItemsetLengthFilter keeps only itemsets strictly longer than
	// this after mining. Zero disables the filter. Default: 2.
	MinItemsetLengthFilter int

	// MinBasketSize is the minimum distinct item count for an order to
	// qualify as a transaction. Default: 4.
	MinBasketSize int

	// TopItemsetsPerCandidate is the number of best itemsets unioned
	// into each item's recommendation list. Default: 3.
	TopItemsetsPerCandidate int
}

// DefaultItemsetConfig returns the default itemset configuration.
func DefaultItemsetConfig() ItemsetConfig {
	return ItemsetConfig{
		MinSupport:              0.0001,
		MaxItemsetLength:        10,
		MinItemsetLengthFilter:  2,
		MinBasketSize:           4,
		TopItemsetsPerCandidate: 3,
	}
}

// Itemset recommends items that co-occur with a candidate item in mined
// frequent itemsets.
//
// Fit collapses orders into transactions, drops small baskets, mines
// frequent itemsets with FP-Growth, and keeps only itemsets above the
// length filter. RecommendFor unions the members of a candidate item's
// best itemsets. Records on this path carry no score.
type Itemset struct {
	BaseModel
	config ItemsetConfig

	itemsets   []FrequentItemset
	byItem     map[string][]int // item -> itemset indexes, best first
	candidates []string         // sorted union of member items
}

// NewItemset creates a new frequent itemset model.
func NewItemset(config ItemsetConfig) *Itemset {
	if config.MinSupport <= 0 {
		config.MinSupport = 0.0001
	}
	if config.MaxItemsetLength <= 0 {
		config.MaxItemsetLength = 10
	}
	if config.MinItemsetLengthFilter < 0 {
		config.MinItemsetLengthFilter = 0
	}
	if config.MinBasketSize <= 0 {
		config.MinBasketSize = 4
	}
	if config.TopItemsetsPerCandidate <= 0 {
		config.TopItemsetsPerCandidate = 3
	}

	return &Itemset{
		BaseModel: NewBaseModel("itemset", recommend.ModelTypeItemset),
		config:    config,
	}
}

// Fit mines frequent itemsets from the order transactions in the events.
func (m *Itemset) Fit(events []recommend.InteractionEvent) error {
	m.acquireFitLock()
	defer m.releaseFitLock()

	txs, err := recommend.BuildTransactions(events)
	if err != nil {
		return err
	}

	txs, err = recommend.FilterTransactions(txs, m.config.MinBasketSize)
	if err != nil {
		return err
	}

	mined := mineFrequentItemsets(txs, m.config.MinSupport, m.config.MaxItemsetLength)

	kept := make([]FrequentItemset, 0, len(mined))
	for _, set := range mined {
		if set.Length() > m.config.MinItemsetLengthFilter {
			kept = append(kept, set)
		}
	}
	if len(kept) == 0 {
		return fmt.Errorf("mine itemsets: %w", recommend.ErrInsufficientSupportItemsets)
	}

	m.itemsets = kept
	m.indexItemsets()
	m.markFitted()

	return nil
}

// indexItemsets builds the per-item candidate index. Each member item's
// containing itemsets are ordered by support descending, then length
// descending, then member list ascending.
func (m *Itemset) indexItemsets() {
	order := make([]int, len(m.itemsets))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		x, y := m.itemsets[order[a]], m.itemsets[order[b]]
		if x.Support != y.Support {
			return x.Support > y.Support
		}
		if x.Length() != y.Length() {
			return x.Length() > y.Length()
		}
		return compareStringSlices(x.Items, y.Items) < 0
	})

	byItem := make(map[string][]int)
	for _, idx := range order {
		for _, item := range m.itemsets[idx].Items {
			byItem[item] = append(byItem[item], idx)
		}
	}

	candidates := make([]string, 0, len(byItem))
	for item := range byItem {
		candidates = append(candidates, item)
	}
	sort.Strings(candidates)

	m.byItem = byItem
	m.candidates = candidates
}

// Entities returns the sorted items appearing in any kept itemset.
func (m *Itemset) Entities() []string {
	m.acquireRecommendLock()
	defer m.releaseRecommendLock()

	if !m.fitted {
		return nil
	}

	out := make([]string, len(m.candidates))
	copy(out, m.candidates)
	return out
}

// Itemsets returns the kept itemsets in canonical member order.
func (m *Itemset) Itemsets() []FrequentItemset {
	m.acquireRecommendLock()
	defer m.releaseRecommendLock()

	out := make([]FrequentItemset, len(m.itemsets))
	copy(out, m.itemsets)
	return out
}

// RecommendFor generates recommendations for one catalog item: the union
// of its TopItemsetsPerCandidate best itemsets' members, minus the item
// itself, sorted ascending.
func (m *Itemset) RecommendFor(entityID string) ([]recommend.Recommendation, error) {
	m.acquireRecommendLock()
	defer m.releaseRecommendLock()

	if !m.fitted {
		return nil, recommend.ErrNotFitted
	}

	indexes, ok := m.byItem[entityID]
	if !ok {
		return nil, fmt.Errorf("item %q: %w", entityID, recommend.ErrUnknownEntity)
	}

	if len(indexes) > m.config.TopItemsetsPerCandidate {
		indexes = indexes[:m.config.TopItemsetsPerCandidate]
	}

	union := make(map[string]struct{})
	for _, idx := range indexes {
		for _, item := range m.itemsets[idx].Items {
			if item != entityID {
				union[item] = struct{}{}
			}
		}
	}

	items := make([]string, 0, len(union))
	for item := range union {
		items = append(items, item)
	}
	sort.Strings(items)

	recs := make([]recommend.Recommendation, 0, len(items))
	for _, item := range items {
		recs = append(recs, recommend.Recommendation{
			SourceEntityID:    entityID,
			RecommendedItemID: item,
			ModelType:         recommend.ModelTypeItemset,
		})
	}

	return recs, nil
}
