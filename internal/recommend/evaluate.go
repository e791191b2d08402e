// Affinity - Batch Item Recommendation Engine
// Copyright 2026 The Affinity Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/commercekit/affinity

package recommend

// SplitLeaveOneOut prepares an offline evaluation split from ordered
// user events: each user's most recent item moves into the holdout and
// every event for that user-item pair leaves the training slice, so the
// model cannot train on what it is asked to predict.
//
// Users with fewer than two distinct items are left untouched; holding
// out their only item would remove them from training entirely. Events
// must be ordered by occurrence time, oldest first.
func SplitLeaveOneOut(events []InteractionEvent) ([]InteractionEvent, map[string][]string) {
	lastItem := make(map[string]string)
	distinct := make(map[string]map[string]struct{})

	for _, ev := range events {
		if ev.UserID == "" || ev.ItemID == "" {
			continue
		}
		lastItem[ev.UserID] = ev.ItemID
		if distinct[ev.UserID] == nil {
			distinct[ev.UserID] = make(map[string]struct{})
		}
		distinct[ev.UserID][ev.ItemID] = struct{}{}
	}

	holdout := make(map[string][]string)
	for userID, itemID := range lastItem {
		if len(distinct[userID]) < 2 {
			continue
		}
		holdout[userID] = []string{itemID}
	}

	train := make([]InteractionEvent, 0, len(events))
	for _, ev := range events {
		if held, ok := holdout[ev.UserID]; ok && held[0] == ev.ItemID {
			continue
		}
		train = append(train, ev)
	}

	return train, holdout
}

// HitRate measures offline recommendation quality: the fraction of
// evaluated entities whose recommendation list contains at least one item
// from their holdout set.
//
// An entity is evaluated only when it has both recommendations and a
// non-empty holdout set; entities missing either side are skipped rather
// than counted as misses. Returns 0 when no entity qualifies.
func HitRate(recs []Recommendation, holdout map[string][]string) float64 {
	recommended := make(map[string]map[string]struct{})
	for _, r := range recs {
		if recommended[r.SourceEntityID] == nil {
			recommended[r.SourceEntityID] = make(map[string]struct{})
		}
		recommended[r.SourceEntityID][r.RecommendedItemID] = struct{}{}
	}

	evaluated := 0
	hits := 0
	for entityID, items := range recommended {
		held := holdout[entityID]
		if len(held) == 0 {
			continue
		}
		evaluated++
		for _, itemID := range held {
			if _, ok := items[itemID]; ok {
				hits++
				break
			}
		}
	}

	if evaluated == 0 {
		return 0
	}
	return float64(hits) / float64(evaluated)
}
