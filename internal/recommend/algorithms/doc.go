// Affinity - Batch Item Recommendation Engine
// Copyright 2026 The Affinity Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/commercekit/affinity

// Package algorithms implements the recommendation models for the batch
// engine.
//
// This package provides the two model paths that can be registered with
// the engine. Each model implements the recommend.Model interface: it is
// fitted once per batch on the full event stream and then queried
// entity by entity.
//
// # Pairwise
//
// Item-based collaborative filtering. Fit aggregates events into an
// item-by-user count matrix, applies sparsity reduction, and computes
// the full symmetric item-item similarity table using cosine or Jaccard
// similarity. For each user, the model ranks the user's own items by
// interaction count into at most TopN seeds and recommends each seed's
// single most similar other item, carrying the similarity score rounded
// to five decimal places.
//
// # Itemset
//
// Frequent itemset mining. Fit collapses order events into distinct-item
// transactions, drops baskets below the minimum size, and mines frequent
// itemsets with FP-Growth under a fractional support threshold and a
// length cap. Itemsets at or below the length filter are discarded. For
// each item appearing in a kept itemset, the model recommends the union
// of its best itemsets' other members, unscored.
//
// # Determinism
//
// Both models are fully deterministic: iteration is over sorted keys,
// ranking ties break by ID ascending, and FP-tree construction uses a
// pinned global item rank (count descending, ID ascending). Running a
// model twice on the same events yields identical records.
//
// # Usage Example
//
//	pairwise := algorithms.NewPairwise(algorithms.PairwiseConfig{
//	    SimilarityMetric: recommend.MetricCosine,
//	    TopN:             6,
//	})
//	if err := pairwise.Fit(events); err != nil {
//	    return err
//	}
//	for _, userID := range pairwise.Entities() {
//	    recs, err := pairwise.RecommendFor(userID)
//	    ...
//	}
//
// # Thread Safety
//
// All models embed BaseModel: fitting acquires an exclusive lock,
// recommendation a shared lock. Concurrent RecommendFor calls are safe
// once fitted.
//
// # See Also
//
//   - internal/recommend: engine, matrix and transaction builders
package algorithms
