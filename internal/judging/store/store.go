// Package store persists submissions, evaluations, and winner assignments.
// Stores are interface-driven to keep the judging services testable against
// the in-memory implementations; sentinel errors carry infrastructure facts.
package store

import (
	"context"

	"tekfest/internal/judging/models"
	id "tekfest/pkg/domain"
)

// SubmissionStore persists project submissions (1:1 with a team).
type SubmissionStore interface {
	// Create inserts the submission, returning sentinel.ErrAlreadyExists when
	// the team already has one.
	Create(ctx context.Context, submission *models.Submission) error
	FindByID(ctx context.Context, submissionID id.SubmissionID) (*models.Submission, error)
	ListByEvent(ctx context.Context, eventID id.EventID) ([]*models.Submission, error)
}

// EvaluationStore persists per-judge evaluations.
type EvaluationStore interface {
	// Append inserts an evaluation, returning sentinel.ErrAlreadyExists when
	// the judge has already evaluated the submission.
	Append(ctx context.Context, evaluation *models.Evaluation) error
	ListBySubmission(ctx context.Context, submissionID id.SubmissionID) ([]models.Evaluation, error)
}

// WinnerStore holds at most one live assignment per (event, category).
type WinnerStore interface {
	Find(ctx context.Context, eventID id.EventID, category id.WinnerCategory) (*models.WinnerAssignment, error)
	ListByEvent(ctx context.Context, eventID id.EventID) ([]models.WinnerAssignment, error)
	// CompareAndSwap atomically installs the assignment for its
	// (event, category) pair, superseding whichever row is live. expected is
	// the submission the caller last observed holding the award (nil for
	// none); when the live row no longer matches, the swap fails with
	// sentinel.ErrConflict and nothing changes. Exclusivity is never
	// observably violated, including under concurrent callers.
	CompareAndSwap(ctx context.Context, expected *id.SubmissionID, assignment models.WinnerAssignment) error
	// Clear removes the assignment only if submissionID currently holds it.
	// Reports whether a row was removed; clearing a non-held assignment is a
	// no-op, not an error.
	Clear(ctx context.Context, eventID id.EventID, category id.WinnerCategory, submissionID id.SubmissionID) (bool, error)
}
