// Affinity - Batch Item Recommendation Engine
// Copyright 2026 The Affinity Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/commercekit/affinity

package recommend

import (
	"sort"
)

// Assemble merges per-model record slices into one canonically ordered
// batch: source entity ascending, then recommended item ascending, then
// model type ascending. The same fitted inputs always produce the same
// byte-for-byte output.
func Assemble(recordSets ...[]Recommendation) []Recommendation {
	total := 0
	for _, set := range recordSets {
		total += len(set)
	}

	merged := make([]Recommendation, 0, total)
	for _, set := range recordSets {
		merged = append(merged, set...)
	}

	sort.Slice(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if a.SourceEntityID != b.SourceEntityID {
			return a.SourceEntityID < b.SourceEntityID
		}
		if a.RecommendedItemID != b.RecommendedItemID {
			return a.RecommendedItemID < b.RecommendedItemID
		}
		return a.ModelType < b.ModelType
	})

	return merged
}
