// Affinity - Batch Item Recommendation Engine
// Copyright 2026 The Affinity Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/commercekit/affinity

package recommend

import (
	"fmt"
	"sort"
)

// sparseItemCellLimit is the sparsity pruning threshold: an item row is
// dropped when the number of its present cells with value <= 1 is at or
// below this limit. The rule is kept bit-for-bit compatible with the
// legacy batch jobs; see the package doc for its known quirk with
// uniformly popular items.
const sparseItemCellLimit = 2

// ItemCount pairs an item with its interaction count for one user.
type ItemCount struct {
	// ItemID is the item identifier.
	ItemID string `json:"item_id"`

	// Count is the number of observed interactions.
	Count int `json:"count"`
}

// InteractionMatrix is the item-by-user interaction count matrix.
//
// Rows are items, columns are users. A cell holds the number of observed
// interactions, or is absent when the pair was never observed. Absence is
// distinct from zero until Reduce fills the surviving cells; after Reduce
// the matrix is frozen and absent cells read as 0.
type InteractionMatrix struct {
	items  []string                  // sorted row IDs
	users  []string                  // sorted column IDs
	counts map[string]map[string]int // item -> user -> count, present cells only
	filled bool
}

// BuildInteractionMatrix aggregates events into an InteractionMatrix.
// Events with an empty UserID or ItemID are discarded. Returns
// ErrEmptyInteractionData when no usable events remain.
func BuildInteractionMatrix(events []InteractionEvent) (*InteractionMatrix, error) {
	counts := make(map[string]map[string]int)

	for _, ev := range events {
		if ev.UserID == "" || ev.ItemID == "" {
			continue
		}
		if counts[ev.ItemID] == nil {
			counts[ev.ItemID] = make(map[string]int)
		}
		counts[ev.ItemID][ev.UserID]++
	}

	if len(counts) == 0 {
		return nil, fmt.Errorf("build interaction matrix: %w", ErrEmptyInteractionData)
	}

	items := make([]string, 0, len(counts))
	userSet := make(map[string]struct{})
	for item, row := range counts {
		items = append(items, item)
		for user := range row {
			userSet[user] = struct{}{}
		}
	}
	sort.Strings(items)

	users := make([]string, 0, len(userSet))
	for user := range userSet {
		users = append(users, user)
	}
	sort.Strings(users)

	return &InteractionMatrix{
		items:  items,
		users:  users,
		counts: counts,
	}, nil
}

// Reduce applies sparsity pruning and freezes the matrix:
//
//  1. Drop every item row whose count of present cells with value <= 1
//     is at or below sparseItemCellLimit.
//  2. Drop every user column with no present cell among surviving items.
//  3. Fill all remaining absent cells with 0.
//
// Returns ErrAllItemsPruned when step 1 removes every item. Reduce may
// be called once; the matrix is read-only afterwards.
func (m *InteractionMatrix) Reduce() error {
	if m.filled {
		return fmt.Errorf("reduce interaction matrix: matrix already reduced")
	}

	keptItems := make([]string, 0, len(m.items))
	for _, item := range m.items {
		low := 0
		for _, c := range m.counts[item] {
			if c <= 1 {
				low++
			}
		}
		if low > sparseItemCellLimit {
			keptItems = append(keptItems, item)
		}
	}

	if len(keptItems) == 0 {
		return fmt.Errorf("reduce interaction matrix: %w", ErrAllItemsPruned)
	}

	userSeen := make(map[string]struct{})
	for _, item := range keptItems {
		for user := range m.counts[item] {
			userSeen[user] = struct{}{}
		}
	}

	keptUsers := make([]string, 0, len(userSeen))
	for _, user := range m.users {
		if _, ok := userSeen[user]; ok {
			keptUsers = append(keptUsers, user)
		}
	}

	keptCounts := make(map[string]map[string]int, len(keptItems))
	for _, item := range keptItems {
		keptCounts[item] = m.counts[item]
	}

	m.items = keptItems
	m.users = keptUsers
	m.counts = keptCounts
	m.filled = true

	return nil
}

// Reduced reports whether Reduce has completed.
func (m *InteractionMatrix) Reduced() bool {
	return m.filled
}

// Items returns the sorted item row IDs.
func (m *InteractionMatrix) Items() []string {
	out := make([]string, len(m.items))
	copy(out, m.items)
	return out
}

// Users returns the sorted user column IDs.
func (m *InteractionMatrix) Users() []string {
	out := make([]string, len(m.users))
	copy(out, m.users)
	return out
}

// NumItems returns the number of item rows.
func (m *InteractionMatrix) NumItems() int {
	return len(m.items)
}

// NumUsers returns the number of user columns.
func (m *InteractionMatrix) NumUsers() int {
	return len(m.users)
}

// HasUser reports whether the user column exists.
func (m *InteractionMatrix) HasUser(userID string) bool {
	i := sort.SearchStrings(m.users, userID)
	return i < len(m.users) && m.users[i] == userID
}

// HasItem reports whether the item row exists.
func (m *InteractionMatrix) HasItem(itemID string) bool {
	i := sort.SearchStrings(m.items, itemID)
	return i < len(m.items) && m.items[i] == itemID
}

// Count returns the interaction count for an (item, user) cell.
// Absent cells read as 0 once the matrix is reduced.
func (m *InteractionMatrix) Count(itemID, userID string) int {
	return m.counts[itemID][userID]
}

// Vector returns the item's count row aligned with Users(), with absent
// cells as 0. Returns nil for unknown items.
func (m *InteractionMatrix) Vector(itemID string) []float64 {
	row, ok := m.counts[itemID]
	if !ok {
		return nil
	}

	vec := make([]float64, len(m.users))
	for i, user := range m.users {
		vec[i] = float64(row[user])
	}
	return vec
}

// Supports returns the sorted user IDs with a non-zero count for the item.
// Returns nil for unknown items.
func (m *InteractionMatrix) Supports(itemID string) []string {
	row, ok := m.counts[itemID]
	if !ok {
		return nil
	}

	users := make([]string, 0, len(row))
	for user := range row {
		users = append(users, user)
	}
	sort.Strings(users)
	return users
}

// NonZeroCounts returns the user's non-zero (item, count) cells sorted by
// item ID ascending. The pairwise path ranks these into seed items.
func (m *InteractionMatrix) NonZeroCounts(userID string) []ItemCount {
	var cells []ItemCount
	for _, item := range m.items {
		if c, ok := m.counts[item][userID]; ok && c > 0 {
			cells = append(cells, ItemCount{ItemID: item, Count: c})
		}
	}
	return cells
}
