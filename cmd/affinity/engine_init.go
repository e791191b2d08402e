// Affinity - Batch Item Recommendation Engine
// Copyright 2026 The Affinity Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/commercekit/affinity

package main

import (
	"fmt"

	"github.com/commercekit/affinity/internal/config"
	"github.com/commercekit/affinity/internal/logging"
	"github.com/commercekit/affinity/internal/recommend"
	"github.com/commercekit/affinity/internal/recommend/algorithms"
)

// initEngine creates the batch engine and registers one model per
// configured path.
func initEngine(cfg *config.EngineConfig) (*recommend.Engine, error) {
	engine, err := recommend.NewEngine(buildEngineConfig(cfg), logging.Logger())
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	registerModels(engine, cfg)

	return engine, nil
}

// buildEngineConfig maps the application configuration onto the engine's
// own config type.
func buildEngineConfig(cfg *config.EngineConfig) *recommend.Config {
	return &recommend.Config{
		SimilarityMetric:        cfg.SimilarityMetric,
		TopNRecommendations:     cfg.TopNRecommendations,
		MinSupport:              cfg.MinSupport,
		MaxItemsetLength:        cfg.MaxItemsetLength,
		MinItemsetLengthFilter:  cfg.MinItemsetLengthFilter,
		MinBasketSize:           cfg.MinBasketSize,
		TopItemsetsPerCandidate: cfg.TopItemsetsPerCandidate,
	}
}

// registerModels registers the models selected by engine.paths.
// Path names are validated during config loading, so an unknown path
// cannot reach this point.
func registerModels(engine *recommend.Engine, cfg *config.EngineConfig) {
	if cfg.PairwiseEnabled() {
		engine.RegisterModel(algorithms.NewPairwise(algorithms.PairwiseConfig{
			SimilarityMetric: cfg.SimilarityMetric,
			TopN:             cfg.TopNRecommendations,
		}))
	}

	if cfg.ItemsetEnabled() {
		engine.RegisterModel(algorithms.NewItemset(algorithms.ItemsetConfig{
			MinSupport:              cfg.MinSupport,
			MaxItemsetLength:        cfg.MaxItemsetLength,
			MinItemsetLengthFilter:  cfg.MinItemsetLengthFilter,
			MinBasketSize:           cfg.MinBasketSize,
			TopItemsetsPerCandidate: cfg.TopItemsetsPerCandidate,
		}))
	}
}
