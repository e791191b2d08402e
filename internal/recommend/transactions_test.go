// Affinity - Batch Item Recommendation Engine
// Copyright 2026 The Affinity Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/commercekit/affinity

package recommend

import (
	"errors"
	"reflect"
	"testing"
)

func TestBuildTransactions(t *testing.T) {
	events := []InteractionEvent{
		{OrderID: "ord-2", ItemID: "sku-c"},
		{OrderID: "ord-1", ItemID: "sku-b"},
		{OrderID: "ord-1", ItemID: "sku-a"},
		{OrderID: "ord-1", ItemID: "sku-b"}, // duplicate collapses
		{OrderID: "", ItemID: "sku-d"},      // no order, discarded
		{OrderID: "ord-3", ItemID: ""},      // no item, discarded
	}

	txs, err := BuildTransactions(events)
	if err != nil {
		t.Fatalf("BuildTransactions() error = %v", err)
	}

	want := []Transaction{
		{OrderID: "ord-1", Items: []string{"sku-a", "sku-b"}},
		{OrderID: "ord-2", Items: []string{"sku-c"}},
	}
	if !reflect.DeepEqual(txs, want) {
		t.Errorf("BuildTransactions() = %v, want %v", txs, want)
	}
}

func TestBuildTransactions_Empty(t *testing.T) {
	tests := []struct {
		name   string
		events []InteractionEvent
	}{
		{name: "nil events", events: nil},
		{
			name: "all events filtered",
			events: []InteractionEvent{
				{OrderID: "", ItemID: "sku-a"},
				{OrderID: "ord-1", ItemID: ""},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildTransactions(tt.events)
			if !errors.Is(err, ErrEmptyInteractionData) {
				t.Errorf("BuildTransactions() error = %v, want ErrEmptyInteractionData", err)
			}
		})
	}
}

func TestFilterTransactions(t *testing.T) {
	txs := []Transaction{
		{OrderID: "ord-1", Items: []string{"a", "b", "c", "d"}},
		{OrderID: "ord-2", Items: []string{"a", "b"}},
		{OrderID: "ord-3", Items: []string{"a", "b", "c", "d", "e"}},
	}

	kept, err := FilterTransactions(txs, 4)
	if err != nil {
		t.Fatalf("FilterTransactions() error = %v", err)
	}

	if len(kept) != 2 {
		t.Fatalf("FilterTransactions() kept %d transactions, want 2", len(kept))
	}
	if kept[0].OrderID != "ord-1" || kept[1].OrderID != "ord-3" {
		t.Errorf("FilterTransactions() kept %v, want ord-1 and ord-3", kept)
	}
}

func TestFilterTransactions_NoneSurvive(t *testing.T) {
	txs := []Transaction{
		{OrderID: "ord-1", Items: []string{"a"}},
		{OrderID: "ord-2", Items: []string{"a", "b"}},
	}

	_, err := FilterTransactions(txs, 4)
	if !errors.Is(err, ErrEmptyInteractionData) {
		t.Errorf("FilterTransactions() error = %v, want ErrEmptyInteractionData", err)
	}
}

func TestTransaction_Contains(t *testing.T) {
	tx := Transaction{OrderID: "ord-1", Items: []string{"a", "c", "e"}}

	for _, item := range []string{"a", "c", "e"} {
		if !tx.Contains(item) {
			t.Errorf("Contains(%q) = false, want true", item)
		}
	}
	for _, item := range []string{"b", "d", "f", ""} {
		if tx.Contains(item) {
			t.Errorf("Contains(%q) = true, want false", item)
		}
	}

	if tx.Size() != 3 {
		t.Errorf("Size() = %d, want 3", tx.Size())
	}
}
