// Affinity - Batch Item Recommendation Engine
// Copyright 2026 The Affinity Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/commercekit/affinity

package recommend

import (
	"fmt"
)

// Similarity metric names accepted by the pairwise path.
const (
	// MetricCosine selects cosine similarity over count vectors.
	MetricCosine = "cosine"
	// MetricJaccard selects Jaccard similarity over supporting user sets.
	MetricJaccard = "jaccard"
)

// SupportedSimilarityMetrics is the closed set of pairwise metrics.
var SupportedSimilarityMetrics = []string{MetricCosine, MetricJaccard}

// Config contains all configuration for the recommendation engine.
type Config struct {
	// SimilarityMetric selects the pairwise similarity measure.
	// One of "cosine" or "jaccard"; any other value is rejected before
	// computation starts.
	// Default: "cosine".
	SimilarityMetric string `json:"similarity_metric"`

	// TopNRecommendations is the number of seed items ranked per user on
	// the pairwise path. Each seed yields at most one recommendation.
	// Default: 6.
	TopNRecommendations int `json:"top_n_recommendations"`

	// MinSupport is the minimum support for mined itemsets, as a fraction
	// of transactions.
	// Default: 0.0001.
	MinSupport float64 `json:"min_support"`

	// MaxItemsetLength bounds the size of mined itemsets.
	// Default: 10.
	MaxItemsetLength int `json:"max_itemset_length"`

	// MinItemsetLengthFilter keeps only itemsets strictly longer than this
	// value after mining. The default keeps itemsets of three or more items.
	// Default: 2.
	MinItemsetLengthFilter int `json:"min_itemset_length_filter"`

	// MinBasketSize is the minimum distinct item count for an order to
	// qualify as a transaction.
	// Default: 4.
	MinBasketSize int `json:"min_basket_size"`

	// TopItemsetsPerCandidate is the number of best itemsets unioned into
	// each candidate item's recommendation list.
	// Default: 3.
	TopItemsetsPerCandidate int `json:"top_itemsets_per_candidate"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		SimilarityMetric:        MetricCosine,
		TopNRecommendations:     6,
		MinSupport:              0.0001,
		MaxItemsetLength:        10,
		MinItemsetLengthFilter:  2,
		MinBasketSize:           4,
		TopItemsetsPerCandidate: 3,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if !metricSupported(c.SimilarityMetric) {
		return fmt.Errorf("similarity_metric %q: %w", c.SimilarityMetric, ErrUnsupportedSimilarityMetric)
	}
	if c.TopNRecommendations < 1 {
		return fmt.Errorf("top_n_recommendations must be positive, got %d", c.TopNRecommendations)
	}
	if c.MinSupport <= 0 || c.MinSupport > 1 {
		return fmt.Errorf("min_support must be in (0, 1], got %f", c.MinSupport)
	}
	if c.MaxItemsetLength < 1 {
		return fmt.Errorf("max_itemset_length must be positive, got %d", c.MaxItemsetLength)
	}
	if c.MinItemsetLengthFilter < 0 {
		return fmt.Errorf("min_itemset_length_filter must be non-negative, got %d", c.MinItemsetLengthFilter)
	}
	if c.MinItemsetLengthFilter >= c.MaxItemsetLength {
		return fmt.Errorf("min_itemset_length_filter must be below max_itemset_length, got %d >= %d",
			c.MinItemsetLengthFilter, c.MaxItemsetLength)
	}
	if c.MinBasketSize < 1 {
		return fmt.Errorf("min_basket_size must be positive, got %d", c.MinBasketSize)
	}
	if c.TopItemsetsPerCandidate < 1 {
		return fmt.Errorf("top_itemsets_per_candidate must be positive, got %d", c.TopItemsetsPerCandidate)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// Direct field copy - the struct contains only value types
	clone := *c
	return &clone
}

// metricSupported reports whether the metric is in the supported set.
func metricSupported(metric string) bool {
	for _, m := range SupportedSimilarityMetrics {
		if metric == m {
			return true
		}
	}
	return false
}
