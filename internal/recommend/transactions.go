// Affinity - Batch Item Recommendation Engine
// Copyright 2026 The Affinity Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/commercekit/affinity

package recommend

import (
	"fmt"
	"sort"
)

// BuildTransactions groups events into per-order transactions.
//
// Events with an empty OrderID or ItemID are discarded. Repeated items
// within an order collapse to one; quantity does not matter on this path.
// Transactions are returned sorted by OrderID with their item sets sorted.
// Returns ErrEmptyInteractionData when no usable events remain.
func BuildTransactions(events []InteractionEvent) ([]Transaction, error) {
	orders := make(map[string]map[string]struct{})

	for _, ev := range events {
		if ev.OrderID == "" || ev.ItemID == "" {
			continue
		}
		if orders[ev.OrderID] == nil {
			orders[ev.OrderID] = make(map[string]struct{})
		}
		orders[ev.OrderID][ev.ItemID] = struct{}{}
	}

	if len(orders) == 0 {
		return nil, fmt.Errorf("build transactions: %w", ErrEmptyInteractionData)
	}

	txs := make([]Transaction, 0, len(orders))
	for orderID, set := range orders {
		items := make([]string, 0, len(set))
		for item := range set {
			items = append(items, item)
		}
		sort.Strings(items)
		txs = append(txs, Transaction{OrderID: orderID, Items: items})
	}

	sort.Slice(txs, func(i, j int) bool { return txs[i].OrderID < txs[j].OrderID })

	return txs, nil
}

// FilterTransactions drops transactions with fewer than minBasketSize
// items. Returns ErrEmptyInteractionData when nothing survives.
func FilterTransactions(txs []Transaction, minBasketSize int) ([]Transaction, error) {
	kept := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Size() >= minBasketSize {
			kept = append(kept, tx)
		}
	}

	if len(kept) == 0 {
		return nil, fmt.Errorf("filter transactions: %w", ErrEmptyInteractionData)
	}

	return kept, nil
}
