// Package models defines the judging aggregate: a team's submission, the
// per-judge evaluations it receives, and the derived scoring types.
package models

import (
	"time"

	"tekfest/internal/judging/rubric"
	id "tekfest/pkg/domain"
	dErrors "tekfest/pkg/domain-errors"
)

// Submission is a team's project entry, 1:1 with the team. TeamName is
// denormalized at creation so leaderboard reads need no registration join.
type Submission struct {
	ID            id.SubmissionID
	TeamID        id.TeamID
	EventID       id.EventID
	TeamName      string
	Title         string
	Description   string
	ResourceLinks []string
	CreatedAt     time.Time
}

// CriterionScores maps rubric criterion key to a 0-100 score.
type CriterionScores map[string]float64

// Evaluation is one judge's scoring of a submission. A submission accumulates
// one evaluation per judge.
type Evaluation struct {
	ID           id.EvaluationID
	SubmissionID id.SubmissionID
	JudgeID      id.JudgeID
	Scores       CriterionScores
	Comment      string
	CreatedAt    time.Time
}

// ValidateScores checks an evaluation against the event's rubric: every
// criterion scored exactly once, no unknown keys, values on the 0-100 scale.
func (e Evaluation) ValidateScores(r rubric.Rubric) error {
	for key := range e.Scores {
		if !r.HasCriterion(key) {
			return dErrors.Newf(dErrors.CodeInvalidInput, "unknown criterion %q for rubric %s", key, r.Version)
		}
	}
	for _, c := range r.Criteria {
		score, ok := e.Scores[c.Key]
		if !ok {
			return dErrors.Newf(dErrors.CodeInvalidInput, "criterion %q is missing a score", c.Key)
		}
		if score < 0 || score > 100 {
			return dErrors.Newf(dErrors.CodeInvalidInput, "criterion %q score %v outside 0-100", c.Key, score)
		}
	}
	return nil
}

// CriteriaAverages maps criterion key to the arithmetic mean across all
// evaluations of one submission. A criterion nobody scored has no entry.
type CriteriaAverages map[string]float64

// ScoredSubmission pairs a submission with its aggregate. A submission with
// zero evaluations never becomes a ScoredSubmission; its score is undefined,
// not zero.
type ScoredSubmission struct {
	Submission  Submission
	Averages    CriteriaAverages
	Overall     float64
	Evaluations int
}

// CategoryScore derives the suggested score for an award category. The
// overall category uses the weighted overall score; other categories sum the
// averages of their source criteria. Returns false when the rubric defines no
// sources for the category or none of them were scored.
func (s ScoredSubmission) CategoryScore(r rubric.Rubric, category id.WinnerCategory) (float64, bool) {
	if category == id.WinnerOverall {
		return s.Overall, true
	}
	keys, ok := r.CategorySources[category]
	if !ok {
		return 0, false
	}
	total := 0.0
	scored := false
	for _, key := range keys {
		if avg, ok := s.Averages[key]; ok {
			total += avg
			scored = true
		}
	}
	return total, scored
}

// RankedSubmission is a scored submission with its dense rank assigned.
type RankedSubmission struct {
	ScoredSubmission
	Rank int
}

// WinnerAssignment is the live award for one (event, category) pair. At most
// one exists per pair at any time; assigning a new winner supersedes the old
// row atomically.
type WinnerAssignment struct {
	EventID      id.EventID
	Category     id.WinnerCategory
	SubmissionID id.SubmissionID
	AssignedBy   id.AccountID
	AssignedAt   time.Time
}
