// Package leaderboard orders scored submissions deterministically and serves
// the read-only leaderboard surface.
package leaderboard

import (
	"sort"

	"tekfest/internal/judging/models"
)

// Rank orders scored submissions by overall score descending and assigns
// dense ranks starting at 1: equal scores share a rank and the next distinct
// score takes the next integer ([90, 90, 70] ranks as 1, 1, 2).
//
// Equal scores are tie-broken by ascending submission UUID string. The key is
// arbitrary but total, so repeated runs over the same set produce the same
// order.
func Rank(scored []models.ScoredSubmission) []models.RankedSubmission {
	ordered := make([]models.ScoredSubmission, len(scored))
	copy(ordered, scored)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Overall != ordered[j].Overall {
			return ordered[i].Overall > ordered[j].Overall
		}
		return ordered[i].Submission.ID.String() < ordered[j].Submission.ID.String()
	})

	ranked := make([]models.RankedSubmission, 0, len(ordered))
	rank := 0
	var prev float64
	for i, s := range ordered {
		if i == 0 || s.Overall != prev {
			rank++
			prev = s.Overall
		}
		ranked = append(ranked, models.RankedSubmission{ScoredSubmission: s, Rank: rank})
	}
	return ranked
}
