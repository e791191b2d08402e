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

// PairwiseConfig configures the pairwise similarity model.
type PairwiseConfig struct {
	// SimilarityMetric selects the similarity measure, one of
	// recommend.MetricCosine or recommend.MetricJaccard.
	// Default: cosine.
	SimilarityMetric string

	// TopN is the number of seed items ranked per user. Each seed
	// contributes at most one recommendation. Default: 6.
	TopN int
}

// DefaultPairwiseConfig returns the default pairwise configuration.
func DefaultPairwiseConfig() PairwiseConfig {
	return PairwiseConfig{
		SimilarityMetric: recommend.MetricCosine,
		TopN:             6,
	}
}

// Pairwise implements item-based collaborative filtering over the
// item-by-user interaction count matrix.
//
// Fit builds the matrix, applies sparsity reduction, and computes the
// full symmetric item-item similarity table. RecommendFor then ranks a
// user's own items into seeds and pairs every seed with its single most
// similar other item.
type Pairwise struct {
	BaseModel
	config PairwiseConfig

	matrix     *recommend.InteractionMatrix
	similarity map[string]map[string]float64 // item -> item -> score, diagonal absent
}

// NewPairwise creates a new pairwise similarity model.
func NewPairwise(config PairwiseConfig) *Pairwise {
	if config.SimilarityMetric == "" {
		config.SimilarityMetric = recommend.MetricCosine
	}
	if config.TopN <= 0 {
		config.TopN = 6
	}

	return &Pairwise{
		BaseModel: NewBaseModel("pairwise", recommend.ModelTypePairwise),
		config:    config,
	}
}

// Fit builds the reduced interaction matrix and the similarity table.
//
// The metric is checked before any computation starts; an unsupported
// value fails immediately with recommend.ErrUnsupportedSimilarityMetric.
func (p *Pairwise) Fit(events []recommend.InteractionEvent) error {
	p.acquireFitLock()
	defer p.releaseFitLock()

	switch p.config.SimilarityMetric {
	case recommend.MetricCosine, recommend.MetricJaccard:
	default:
		return fmt.Errorf("similarity_metric %q: %w",
			p.config.SimilarityMetric, recommend.ErrUnsupportedSimilarityMetric)
	}

	matrix, err := recommend.BuildInteractionMatrix(events)
	if err != nil {
		return err
	}

	if err := matrix.Reduce(); err != nil {
		return err
	}

	p.matrix = matrix
	p.similarity = p.computeSimilarities(matrix)
	p.markFitted()

	return nil
}

// computeSimilarities fills the symmetric item-item similarity table for
// all distinct item pairs. The diagonal stays absent; an item is never a
// candidate for itself.
func (p *Pairwise) computeSimilarities(m *recommend.InteractionMatrix) map[string]map[string]float64 {
	items := m.Items()

	sim := make(map[string]map[string]float64, len(items))
	for _, item := range items {
		sim[item] = make(map[string]float64, len(items)-1)
	}

	switch p.config.SimilarityMetric {
	case recommend.MetricJaccard:
		supports := make([][]string, len(items))
		for i, item := range items {
			supports[i] = m.Supports(item)
		}
		for i := 0; i < len(items); i++ {
			for j := i + 1; j < len(items); j++ {
				s := jaccardSimilarity(supports[i], supports[j])
				sim[items[i]][items[j]] = s
				sim[items[j]][items[i]] = s
			}
		}
	default:
		vectors := make([][]float64, len(items))
		for i, item := range items {
			vectors[i] = m.Vector(item)
		}
		for i := 0; i < len(items); i++ {
			for j := i + 1; j < len(items); j++ {
				s := cosineSimilarity(vectors[i], vectors[j])
				sim[items[i]][items[j]] = s
				sim[items[j]][items[i]] = s
			}
		}
	}

	return sim
}

// Entities returns the users retained by the reduced matrix.
func (p *Pairwise) Entities() []string {
	p.acquireRecommendLock()
	defer p.releaseRecommendLock()

	if !p.fitted {
		return nil
	}
	return p.matrix.Users()
}

// Similarity returns the fitted similarity between two distinct items.
// Returns 0 for the diagonal and for unknown items.
func (p *Pairwise) Similarity(a, b string) float64 {
	p.acquireRecommendLock()
	defer p.releaseRecommendLock()

	return p.similarity[a][b]
}

// RecommendFor generates at most TopN recommendations for one user.
//
// The user's non-zero matrix cells are ranked by count descending, item
// ID ascending, and the first TopN become seeds. Each seed contributes
// its most similar other item; when two seeds pick the same item the
// later seed's score wins. Output is sorted by recommended item ID.
func (p *Pairwise) RecommendFor(entityID string) ([]recommend.Recommendation, error) {
	p.acquireRecommendLock()
	defer p.releaseRecommendLock()

	if !p.fitted {
		return nil, recommend.ErrNotFitted
	}
	if !p.matrix.HasUser(entityID) {
		return nil, fmt.Errorf("user %q: %w", entityID, recommend.ErrUnknownEntity)
	}

	chosen := make(map[string]float64)
	for _, seed := range p.topSeeds(entityID) {
		match, score, ok := p.bestMatch(seed.ItemID)
		if !ok {
			continue
		}
		chosen[match] = score
	}

	items := make([]string, 0, len(chosen))
	for item := range chosen {
		items = append(items, item)
	}
	sort.Strings(items)

	recs := make([]recommend.Recommendation, 0, len(items))
	for _, item := range items {
		recs = append(recs, recommend.Recommendation{
			SourceEntityID:    entityID,
			RecommendedItemID: item,
			Score:             recommend.Float64(roundScore(chosen[item])),
			ModelType:         recommend.ModelTypePairwise,
		})
	}

	return recs, nil
}

// topSeeds ranks the user's non-zero cells by count descending, item ID
// ascending, and keeps the first TopN.
func (p *Pairwise) topSeeds(userID string) []recommend.ItemCount {
	cells := p.matrix.NonZeroCounts(userID)

	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Count != cells[j].Count {
			return cells[i].Count > cells[j].Count
		}
		return cells[i].ItemID < cells[j].ItemID
	})

	if len(cells) > p.config.TopN {
		cells = cells[:p.config.TopN]
	}
	return cells
}

// bestMatch returns the item most similar to the seed, excluding the seed
// itself. Candidates are scanned in sorted order with a strictly-greater
// comparison, so ties and all-zero similarity rows resolve to the
// lexicographically first candidate. A zero-score match is still a match.
// Returns ok=false only when the seed has no other item to pair with.
func (p *Pairwise) bestMatch(seedID string) (string, float64, bool) {
	row := p.similarity[seedID]
	if len(row) == 0 {
		return "", 0, false
	}

	var (
		best      string
		bestScore float64
		found     bool
	)
	for _, item := range p.matrix.Items() {
		if item == seedID {
			continue
		}
		if score := row[item]; !found || score > bestScore {
			best = item
			bestScore = score
			found = true
		}
	}

	if !found {
		return "", 0, false
	}
	return best, bestScore, true
}
