// Affinity - Batch Item Recommendation Engine
// Copyright 2026 The Affinity Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/commercekit/affinity

// Package recommend implements a deterministic batch recommendation engine
// for commerce catalogs.
//
// # Architecture
//
// The engine runs two independent model paths over the same interaction
// event stream and assembles their records into one canonical batch:
//
//   - Pairwise similarity: item-based collaborative filtering over an
//     item-by-user count matrix (cosine or Jaccard), recommending one
//     item per top seed item of each user
//   - Frequent itemsets: FP-Growth mining over per-order transactions,
//     recommending co-purchased items for each catalog item
//
// # Design Principles
//
//   - Deterministic: the same input events always produce byte-identical
//     output; all iteration is over sorted keys and ties break
//     lexicographically
//   - Synchronous: Fit and RecommendFor run single-threaded with no
//     context plumbing; cancellation belongs to the I/O layers around
//     the engine
//   - Isolated: a failing entity is recorded and skipped, never fatal;
//     a failing model path is recorded and the other paths still run
//   - Auditable: every phase logs structured counts and durations
//
// # Sparsity Pruning
//
// The pairwise path prunes the matrix before computing similarities: an
// item row survives only when it has three or more cells with an
// interaction count of one or less. Because absent cells do not count,
// the rule keeps items with at least three single-interaction users and
// drops everything else, including items whose every user interacted two
// or more times. The rule is intentionally kept bit-for-bit compatible
// with the batch jobs it replaced.
//
// # Usage
//
//	cfg := recommend.DefaultConfig()
//	engine, err := recommend.NewEngine(cfg, logger)
//	if err != nil {
//	    return err
//	}
//
//	engine.RegisterModel(algorithms.NewPairwise(algorithms.PairwiseConfig{
//	    SimilarityMetric: cfg.SimilarityMetric,
//	    TopN:             cfg.TopNRecommendations,
//	}))
//
//	result, err := engine.Run(events)
//	if err != nil {
//	    return err
//	}
//	for _, rec := range result.Recommendations {
//	    // persist or export
//	}
//
// # Thread Safety
//
// Model registration is safe for concurrent use. Run executes the batch
// on the calling goroutine; concurrent Run calls on one engine are not
// supported.
package recommend
