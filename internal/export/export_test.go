// Affinity - Batch Item Recommendation Engine
// Copyright 2026 The Affinity Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/commercekit/affinity

package export

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/commercekit/affinity/internal/recommend"
)

func exportFixture() []recommend.Recommendation {
	return []recommend.Recommendation{
		{SourceEntityID: "u1", RecommendedItemID: "sku-b", Score: recommend.Float64(0.89443), Rank: recommend.Int(1), ModelType: recommend.ModelTypePairwise},
		{SourceEntityID: "u1", RecommendedItemID: "sku-c", Score: recommend.Float64(0.7746), Rank: recommend.Int(2), ModelType: recommend.ModelTypePairwise},
		{SourceEntityID: "sku-a", RecommendedItemID: "sku-b", ModelType: recommend.ModelTypeItemset},
	}
}

func TestWriteJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recs.jsonl")
	generatedAt := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

	count, err := WriteJSONL(path, "run-1", exportFixture(), generatedAt)
	if err != nil {
		t.Fatalf("WriteJSONL() error = %v", err)
	}
	if count != 3 {
		t.Errorf("WriteJSONL() = %d lines, want 3", count)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open export file: %v", err)
	}
	defer f.Close()

	var lines []Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("unmarshal line %d: %v", len(lines), err)
		}
		lines = append(lines, rec)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan export file: %v", err)
	}

	if len(lines) != 3 {
		t.Fatalf("export file has %d lines, want 3", len(lines))
	}

	first := lines[0]
	if first.RunID != "run-1" {
		t.Errorf("run_id = %q, want %q", first.RunID, "run-1")
	}
	if first.SourceEntityID != "u1" || first.RecommendedItemID != "sku-b" {
		t.Errorf("first line = %s -> %s, want u1 -> sku-b", first.SourceEntityID, first.RecommendedItemID)
	}
	if first.Score == nil || *first.Score != 0.89443 {
		t.Errorf("first line score = %v, want 0.89443", first.Score)
	}
	if first.ModelType != recommend.ModelTypePairwise {
		t.Errorf("first line model_type = %q, want pairwise", first.ModelType)
	}
	if !first.GeneratedAt.Equal(generatedAt) {
		t.Errorf("generated_at = %v, want %v", first.GeneratedAt, generatedAt)
	}

	last := lines[2]
	if last.Score != nil || last.Rank != nil {
		t.Errorf("itemset line carries score=%v rank=%v, want both omitted", last.Score, last.Rank)
	}
}

func TestWriteJSONL_OmitsNullFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recs.jsonl")
	recs := []recommend.Recommendation{
		{SourceEntityID: "sku-a", RecommendedItemID: "sku-b", ModelType: recommend.ModelTypeItemset},
	}

	if _, err := WriteJSONL(path, "run-1", recs, time.Now().UTC()); err != nil {
		t.Fatalf("WriteJSONL() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export file: %v", err)
	}
	if bytes.Contains(data, []byte(`"score"`)) {
		t.Errorf("line contains score key for scoreless record: %s", data)
	}
	if bytes.Contains(data, []byte(`"rank"`)) {
		t.Errorf("line contains rank key for rankless record: %s", data)
	}
}

func TestWriteJSONL_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recs.jsonl")

	count, err := WriteJSONL(path, "run-1", nil, time.Now().UTC())
	if err != nil {
		t.Fatalf("WriteJSONL() error = %v", err)
	}
	if count != 0 {
		t.Errorf("WriteJSONL() = %d lines, want 0", count)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat export file: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("empty export file has size %d, want 0", info.Size())
	}
}

func TestWriteJSONL_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "recs.jsonl")

	if _, err := WriteJSONL(path, "run-1", exportFixture(), time.Now().UTC()); err != nil {
		t.Fatalf("WriteJSONL() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("export file missing: %v", err)
	}
}

func TestWriteJSONL_EmptyPath(t *testing.T) {
	if _, err := WriteJSONL("", "run-1", exportFixture(), time.Now().UTC()); err == nil {
		t.Fatal("WriteJSONL() with empty path succeeded, want error")
	}
}

func TestWriteJSONL_PathIsDirectory(t *testing.T) {
	dir := t.TempDir()

	if _, err := WriteJSONL(dir, "run-1", exportFixture(), time.Now().UTC()); err == nil {
		t.Fatal("WriteJSONL() to a directory succeeded, want error")
	}
}

func TestWriteJSONL_Deterministic(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.jsonl")
	pathB := filepath.Join(dir, "b.jsonl")
	generatedAt := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

	if _, err := WriteJSONL(pathA, "run-1", exportFixture(), generatedAt); err != nil {
		t.Fatalf("WriteJSONL() error = %v", err)
	}
	if _, err := WriteJSONL(pathB, "run-1", exportFixture(), generatedAt); err != nil {
		t.Fatalf("WriteJSONL() error = %v", err)
	}

	a, err := os.ReadFile(pathA)
	if err != nil {
		t.Fatalf("read first export: %v", err)
	}
	b, err := os.ReadFile(pathB)
	if err != nil {
		t.Fatalf("read second export: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("identical batches produced different export bytes")
	}
}
