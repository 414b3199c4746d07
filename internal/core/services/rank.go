package services

import (
	"sort"

	"github.com/ewilliams-labs/segue/internal/core/domain"
)

// Rank sorts candidates descending by score and truncates to limit. Ties
// break on strategy priority (lower wins), then candidate ID, which makes
// the ordering a total order: repeated runs over the same input always
// produce the same output.
func Rank(candidates []domain.ScoredCandidate, limit int) []domain.ScoredCandidate {
	ranked := make([]domain.ScoredCandidate, len(candidates))
	copy(ranked, candidates)

	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.StrategyPriority != b.StrategyPriority {
			return a.StrategyPriority < b.StrategyPriority
		}
		return a.ID < b.ID
	})

	if limit > 0 && limit < len(ranked) {
		ranked = ranked[:limit]
	}
	return ranked
}
