// Affinity - Batch Item Recommendation Engine
// Copyright 2026 The Affinity Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/commercekit/affinity

package export

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"

	"github.com/commercekit/affinity/internal/logging"
	"github.com/commercekit/affinity/internal/recommend"
)

// Record is one exported line. Embedding promotes the recommendation
// fields so the line layout matches a sink row.
type Record struct {
	RunID string `json:"run_id"`
	recommend.Recommendation
	GeneratedAt time.Time `json:"generated_at"`
}

// WriteJSONL writes recs to path, one JSON object per line, stamping every
// line with runID and generatedAt. The parent directory is created if it
// does not exist. An empty batch still produces the file, with zero lines.
// Returns the number of lines written.
func WriteJSONL(path, runID string, recs []recommend.Recommendation, generatedAt time.Time) (count int, err error) {
	if path == "" {
		return 0, fmt.Errorf("export path is empty")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return 0, fmt.Errorf("create export directory: %w", err)
		}
	}

	f, err := os.Create(path) //nolint:gosec // path comes from validated configuration
	if err != nil {
		return 0, fmt.Errorf("create export file: %w", err)
	}
	defer func() {
		closeErr := f.Close()
		if err == nil && closeErr != nil {
			err = fmt.Errorf("close export file: %w", closeErr)
		}
	}()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)

	for i := range recs {
		line := Record{
			RunID:          runID,
			Recommendation: recs[i],
			GeneratedAt:    generatedAt,
		}
		if encErr := enc.Encode(line); encErr != nil {
			return 0, fmt.Errorf("encode record %d: %w", i, encErr)
		}
	}

	if flushErr := w.Flush(); flushErr != nil {
		return 0, fmt.Errorf("flush export file: %w", flushErr)
	}

	logging.Info().
		Str("path", path).
		Str("run_id", runID).
		Int("rows", len(recs)).
		Msg("JSONL export complete")

	return len(recs), nil
}
