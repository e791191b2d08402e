// Affinity - Batch Item Recommendation Engine
// Copyright 2026 The Affinity Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/commercekit/affinity

package main

import (
	"testing"

	"github.com/commercekit/affinity/internal/config"
	"github.com/commercekit/affinity/internal/recommend"
)

func testEngineConfig() *config.EngineConfig {
	return &config.EngineConfig{
		Paths:                   []string{"pairwise", "itemset"},
		SimilarityMetric:        "cosine",
		TopNRecommendations:     6,
		MinSupport:              0.1,
		MaxItemsetLength:        10,
		MinItemsetLengthFilter:  1,
		MinBasketSize:           2,
		TopItemsetsPerCandidate: 3,
	}
}

// TestBuildEngineConfig verifies the application config maps onto the
// engine config field by field.
func TestBuildEngineConfig(t *testing.T) {
	cfg := testEngineConfig()

	got := buildEngineConfig(cfg)

	if got.SimilarityMetric != cfg.SimilarityMetric {
		t.Errorf("SimilarityMetric = %q, want %q", got.SimilarityMetric, cfg.SimilarityMetric)
	}
	if got.TopNRecommendations != cfg.TopNRecommendations {
		t.Errorf("TopNRecommendations = %d, want %d", got.TopNRecommendations, cfg.TopNRecommendations)
	}
	if got.MinSupport != cfg.MinSupport {
		t.Errorf("MinSupport = %v, want %v", got.MinSupport, cfg.MinSupport)
	}
	if got.MaxItemsetLength != cfg.MaxItemsetLength {
		t.Errorf("MaxItemsetLength = %d, want %d", got.MaxItemsetLength, cfg.MaxItemsetLength)
	}
	if got.MinItemsetLengthFilter != cfg.MinItemsetLengthFilter {
		t.Errorf("MinItemsetLengthFilter = %d, want %d", got.MinItemsetLengthFilter, cfg.MinItemsetLengthFilter)
	}
	if got.MinBasketSize != cfg.MinBasketSize {
		t.Errorf("MinBasketSize = %d, want %d", got.MinBasketSize, cfg.MinBasketSize)
	}
	if got.TopItemsetsPerCandidate != cfg.TopItemsetsPerCandidate {
		t.Errorf("TopItemsetsPerCandidate = %d, want %d", got.TopItemsetsPerCandidate, cfg.TopItemsetsPerCandidate)
	}
}

// TestInitEngine_BothPaths runs a small batch through an engine built
// from config and checks both model paths produce records.
func TestInitEngine_BothPaths(t *testing.T) {
	engine, err := initEngine(testEngineConfig())
	if err != nil {
		t.Fatalf("initEngine() error = %v", err)
	}

	// Every item is interacted with once by at least three users, so
	// sparsity reduction keeps all of them.
	events := []recommend.InteractionEvent{
		{UserID: "u1", ItemID: "sku-a"},
		{UserID: "u2", ItemID: "sku-a"},
		{UserID: "u3", ItemID: "sku-a"},
		{UserID: "u2", ItemID: "sku-b"},
		{UserID: "u3", ItemID: "sku-b"},
		{UserID: "u4", ItemID: "sku-b"},
		{UserID: "u1", ItemID: "sku-c"},
		{UserID: "u2", ItemID: "sku-c"},
		{UserID: "u3", ItemID: "sku-c"},
		{UserID: "u4", ItemID: "sku-c"},
		{OrderID: "ord-1", ItemID: "sku-a"},
		{OrderID: "ord-1", ItemID: "sku-b"},
		{OrderID: "ord-2", ItemID: "sku-a"},
		{OrderID: "ord-2", ItemID: "sku-b"},
		{OrderID: "ord-3", ItemID: "sku-b"},
		{OrderID: "ord-3", ItemID: "sku-c"},
	}

	result, err := engine.Run(events)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Stats.ModelsRun != 2 {
		t.Errorf("ModelsRun = %d, want 2", result.Stats.ModelsRun)
	}
	if result.Failed() {
		t.Fatalf("Run() failed with path errors: %v", result.PathErrors)
	}

	seen := make(map[recommend.ModelType]bool)
	for _, rec := range result.Recommendations {
		seen[rec.ModelType] = true
	}
	if !seen[recommend.ModelTypePairwise] {
		t.Error("no pairwise records generated")
	}
	if !seen[recommend.ModelTypeItemset] {
		t.Error("no itemset records generated")
	}
}

// TestInitEngine_SinglePath checks that disabling a path keeps its model
// out of the run.
func TestInitEngine_SinglePath(t *testing.T) {
	cfg := testEngineConfig()
	cfg.Paths = []string{"pairwise"}

	engine, err := initEngine(cfg)
	if err != nil {
		t.Fatalf("initEngine() error = %v", err)
	}

	result, err := engine.Run([]recommend.InteractionEvent{
		{UserID: "u1", ItemID: "sku-a"},
		{UserID: "u2", ItemID: "sku-a"},
		{UserID: "u3", ItemID: "sku-a"},
		{UserID: "u1", ItemID: "sku-b"},
		{UserID: "u2", ItemID: "sku-b"},
		{UserID: "u4", ItemID: "sku-b"},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Stats.ModelsRun != 1 {
		t.Errorf("ModelsRun = %d, want 1", result.Stats.ModelsRun)
	}
	for _, rec := range result.Recommendations {
		if rec.ModelType != recommend.ModelTypePairwise {
			t.Errorf("unexpected model type %q in single-path run", rec.ModelType)
		}
	}
}

// TestRecordEngineMetrics ensures metric derivation tolerates results
// with failures and with models that produced no records.
func TestRecordEngineMetrics(t *testing.T) {
	// Must not panic on an empty result.
	recordEngineMetrics(&recommend.Result{})

	recordEngineMetrics(&recommend.Result{
		Recommendations: []recommend.Recommendation{
			{SourceEntityID: "u1", RecommendedItemID: "sku-b", ModelType: recommend.ModelTypePairwise},
		},
		EntityFailures: []recommend.EntityFailure{
			{EntityID: "u2", Model: "pairwise"},
			{EntityID: "sku-x", Model: "itemset"},
		},
		PathErrors: []recommend.PathError{
			{Model: "itemset"},
		},
	})
}
