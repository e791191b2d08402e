// Affinity - Batch Item Recommendation Engine
// Copyright 2026 The Affinity Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/commercekit/affinity

package algorithms

import (
	"math"
	"sort"

	"github.com/commercekit/affinity/internal/recommend"
)

// ========== Frequent Itemset Mining ==========

// FrequentItemset is one mined itemset with its support.
type FrequentItemset struct {
	// Items is the sorted member item IDs.
	Items []string `json:"items"`

	// Support is the fraction of transactions containing every member.
	Support float64 `json:"support"`
}

// Length returns the number of member items.
func (s FrequentItemset) Length() int {
	return len(s.Items)
}

// mineFrequentItemsets mines all itemsets with support >= minSupport and
// at most maxLen members using FP-Growth. Results are sorted by member
// list ascending; the same transactions always produce the same output.
func mineFrequentItemsets(txs []recommend.Transaction, minSupport float64, maxLen int) []FrequentItemset {
	n := len(txs)
	if n == 0 || maxLen < 1 {
		return nil
	}

	minCount := supportCount(minSupport, n)

	itemCounts := make(map[string]int)
	for _, tx := range txs {
		for _, item := range tx.Items {
			itemCounts[item]++
		}
	}

	// Frequent single items ranked by count descending, ID ascending.
	// Ranks order tree paths, so the tiebreak pins the tree shape.
	type rankedItem struct {
		id    string
		count int
	}
	ranked := make([]rankedItem, 0, len(itemCounts))
	for id, c := range itemCounts {
		if c >= minCount {
			ranked = append(ranked, rankedItem{id: id, count: c})
		}
	}
	if len(ranked) == 0 {
		return nil
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].id < ranked[j].id
	})

	rankOf := make(map[string]int, len(ranked))
	for r, ri := range ranked {
		rankOf[ri.id] = r
	}

	tree := newFPTree()
	path := make([]int, 0, 16)
	for _, tx := range txs {
		path = path[:0]
		for _, item := range tx.Items {
			if r, ok := rankOf[item]; ok {
				path = append(path, r)
			}
		}
		if len(path) == 0 {
			continue
		}
		sort.Ints(path)
		tree.insert(path, 1)
	}

	var out []FrequentItemset
	emit := func(ranks []int, count int) {
		items := make([]string, len(ranks))
		for i, r := range ranks {
			items[i] = ranked[r].id
		}
		sort.Strings(items)
		out = append(out, FrequentItemset{
			Items:   items,
			Support: float64(count) / float64(n),
		})
	}
	mineTree(tree, nil, minCount, maxLen, emit)

	sort.Slice(out, func(i, j int) bool {
		return compareStringSlices(out[i].Items, out[j].Items) < 0
	})

	return out
}

// supportCount converts a fractional support threshold into the smallest
// transaction count satisfying it. The epsilon absorbs float error in
// minSupport * n so a count sitting exactly on the threshold survives.
func supportCount(minSupport float64, n int) int {
	c := int(math.Ceil(minSupport*float64(n) - 1e-9))
	if c < 1 {
		c = 1
	}
	return c
}

// ========== FP-Tree ==========

// fpNode is one node of an FP-tree. item is a rank index, -1 for the root.
type fpNode struct {
	item     int
	count    int
	parent   *fpNode
	children map[int]*fpNode
}

// fpTree is a prefix tree of rank-ordered transaction paths with per-rank
// header lists and total counts.
type fpTree struct {
	root    *fpNode
	headers map[int][]*fpNode
	counts  map[int]int
}

func newFPTree() *fpTree {
	return &fpTree{
		root:    &fpNode{item: -1, children: make(map[int]*fpNode)},
		headers: make(map[int][]*fpNode),
		counts:  make(map[int]int),
	}
}

// insert adds one rank-ascending path with the given count.
func (t *fpTree) insert(path []int, count int) {
	node := t.root
	for _, r := range path {
		child, ok := node.children[r]
		if !ok {
			child = &fpNode{item: r, parent: node, children: make(map[int]*fpNode)}
			node.children[r] = child
			t.headers[r] = append(t.headers[r], child)
		}
		child.count += count
		t.counts[r] += count
		node = child
	}
}

// mineTree emits every frequent itemset of the tree extended from suffix.
// Ranks are processed least frequent first; recursion stops when an
// itemset reaches maxLen members.
func mineTree(tree *fpTree, suffix []int, minCount, maxLen int, emit func(ranks []int, count int)) {
	ranks := make([]int, 0, len(tree.counts))
	for r := range tree.counts {
		ranks = append(ranks, r)
	}
	sort.Ints(ranks)

	for i := len(ranks) - 1; i >= 0; i-- {
		r := ranks[i]
		count := tree.counts[r]
		if count < minCount {
			continue
		}

		itemset := make([]int, 0, len(suffix)+1)
		itemset = append(itemset, suffix...)
		itemset = append(itemset, r)
		emit(itemset, count)

		if len(itemset) >= maxLen {
			continue
		}

		cond := buildConditional(tree, r, minCount)
		if len(cond.counts) > 0 {
			mineTree(cond, itemset, minCount, maxLen, emit)
		}
	}
}

// buildConditional builds the conditional FP-tree for one rank from its
// prefix paths, pruning path items whose conditional count falls below
// minCount.
func buildConditional(tree *fpTree, r, minCount int) *fpTree {
	condCounts := make(map[int]int)
	for _, node := range tree.headers[r] {
		for p := node.parent; p != nil && p.item >= 0; p = p.parent {
			condCounts[p.item] += node.count
		}
	}

	cond := newFPTree()
	for _, node := range tree.headers[r] {
		var path []int
		for p := node.parent; p != nil && p.item >= 0; p = p.parent {
			if condCounts[p.item] >= minCount {
				path = append(path, p.item)
			}
		}
		if len(path) == 0 {
			continue
		}
		// Collected leaf to root; restore rank order.
		for a, b := 0, len(path)-1; a < b; a, b = a+1, b-1 {
			path[a], path[b] = path[b], path[a]
		}
		cond.insert(path, node.count)
	}

	return cond
}
