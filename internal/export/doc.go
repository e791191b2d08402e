// Affinity - Batch Item Recommendation Engine
// Copyright 2026 The Affinity Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/commercekit/affinity

/*
Package export writes recommendation batches to JSONL files.

The exporter is an optional output alongside the PostgreSQL sink, intended
for debugging runs and for handing batches to downstream systems that
consume files rather than database rows. Each line is one JSON object
mirroring a sink row: run_id, entity_id, recommended_item_id, score, rank,
model_type, generated_at.

# Format

	{"run_id":"4a9c...","entity_id":"u1","recommended_item_id":"sku-b","score":0.89443,"rank":1,"model_type":"pairwise","generated_at":"2026-01-05T10:00:00Z"}

Lines appear in the order the engine assembled them, so identical input and
configuration produce byte-identical files given the same run metadata.
Score and rank are omitted on lines where the generating model does not
produce them.
*/
package export
