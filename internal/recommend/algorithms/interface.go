// Affinity - Batch Item Recommendation Engine
// Copyright 2026 The Affinity Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/commercekit/affinity

package algorithms

import (
	"math"
	"sync"
	"time"

	"github.com/commercekit/affinity/internal/recommend"
)

// BaseModel provides common functionality for all models.
type BaseModel struct {
	name      string
	modelType recommend.ModelType
	fitted    bool
	fittedAt  time.Time
	mu        sync.RWMutex
}

// NewBaseModel creates a new base model with the given name and type.
func NewBaseModel(name string, modelType recommend.ModelType) BaseModel {
	return BaseModel{
		name:      name,
		modelType: modelType,
	}
}

// Name returns the model identifier.
func (b *BaseModel) Name() string {
	return b.name
}

// ModelType returns the type stamped on generated records.
func (b *BaseModel) ModelType() recommend.ModelType {
	return b.modelType
}

// IsFitted returns whether the model has been fitted.
func (b *BaseModel) IsFitted() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.fitted
}

// FittedAt returns when the model was last fitted.
func (b *BaseModel) FittedAt() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.fittedAt
}

// markFitted updates the fitted state.
// Must be called while holding the fit lock (acquireFitLock).
func (b *BaseModel) markFitted() {
	// Lock is already held by caller via acquireFitLock()
	b.fitted = true
	b.fittedAt = time.Now()
}

// acquireFitLock acquires the exclusive fit lock.
func (b *BaseModel) acquireFitLock() {
	b.mu.Lock()
}

// releaseFitLock releases the exclusive fit lock.
func (b *BaseModel) releaseFitLock() {
	b.mu.Unlock()
}

// acquireRecommendLock acquires the shared recommendation lock.
func (b *BaseModel) acquireRecommendLock() {
	b.mu.RLock()
}

// releaseRecommendLock releases the shared recommendation lock.
func (b *BaseModel) releaseRecommendLock() {
	b.mu.RUnlock()
}

// roundScore rounds a score to five decimal places. Output records carry
// rounded scores so reruns compare byte-for-byte.
func roundScore(x float64) float64 {
	return math.Round(x*1e5) / 1e5
}

// cosineSimilarity computes cosine similarity between two vectors.
// Returns 0 when either vector has zero norm.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// jaccardSimilarity computes Jaccard similarity between two sorted,
// duplicate-free ID sets. Returns 0 when the union is empty.
func jaccardSimilarity(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	intersection := 0
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			intersection++
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}

	return float64(intersection) / float64(union)
}

// compareStringSlices orders two string slices lexicographically element
// by element, with a shorter prefix ordering first.
func compareStringSlices(a, b []string) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// Ensure all models implement the interface.
var (
	_ recommend.Model = (*Pairwise)(nil)
	_ recommend.Model = (*Itemset)(nil)
)
