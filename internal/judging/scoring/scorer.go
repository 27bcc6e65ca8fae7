// Package scoring aggregates per-judge evaluations into per-criterion and
// overall scores. The scorer is pure and re-runnable: it always recomputes
// from the full evaluation set, so adding or removing an evaluation and
// re-aggregating reproduces the same result with no retained state.
package scoring

import (
	"tekfest/internal/judging/models"
	"tekfest/internal/judging/rubric"
)

// Aggregate computes the criteria averages and weighted overall score for one
// submission's evaluations. Returns nil when the evaluation list is empty:
// with zero evaluations the score is undefined, never zero.
func Aggregate(r rubric.Rubric, submission models.Submission, evaluations []models.Evaluation) *models.ScoredSubmission {
	if len(evaluations) == 0 {
		return nil
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, evaluation := range evaluations {
		for key, score := range evaluation.Scores {
			if !r.HasCriterion(key) {
				continue
			}
			sums[key] += score
			counts[key]++
		}
	}

	averages := make(models.CriteriaAverages, len(sums))
	for key, sum := range sums {
		averages[key] = sum / float64(counts[key])
	}

	// Weighted sum over the criteria that were actually scored. An unscored
	// criterion contributes nothing rather than dragging the total to zero.
	overall := 0.0
	for _, c := range r.Criteria {
		if avg, ok := averages[c.Key]; ok {
			overall += c.Weight * avg
		}
	}

	return &models.ScoredSubmission{
		Submission:  submission,
		Averages:    averages,
		Overall:     overall,
		Evaluations: len(evaluations),
	}
}
