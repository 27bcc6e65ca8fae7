// Package winner assigns award categories to submissions. Assignment is an
// administrative override: the leaderboard's top entry per category is only a
// suggestion, and any submission of the event may be chosen.
package winner

import (
	"context"
	"errors"
	"log/slog"

	judgingmetrics "tekfest/internal/judging/metrics"
	"tekfest/internal/judging/models"
	"tekfest/internal/judging/store"
	id "tekfest/pkg/domain"
	dErrors "tekfest/pkg/domain-errors"
	"tekfest/pkg/platform/audit"
	"tekfest/pkg/platform/sentinel"
	"tekfest/pkg/requestcontext"
)

type Service struct {
	winners     store.WinnerStore
	submissions store.SubmissionStore
	audit       audit.Publisher
	metrics     *judgingmetrics.Metrics
	logger      *slog.Logger
}

func New(
	winners store.WinnerStore,
	submissions store.SubmissionStore,
	auditPublisher audit.Publisher,
	metrics *judgingmetrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		winners:     winners,
		submissions: submissions,
		audit:       auditPublisher,
		metrics:     metrics,
		logger:      logger,
	}
}

// SetWinner assigns (value=true) or removes (value=false) a submission as the
// winner of a category. Assigning supersedes any previous holder atomically;
// exactly zero or one live assignment exists per (event, category) at every
// observable moment. Removing a non-held assignment is a no-op.
func (s *Service) SetWinner(ctx context.Context, submissionID id.SubmissionID, category id.WinnerCategory, value bool) error {
	if !category.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "unknown winner category")
	}

	submission, err := s.submissions.FindByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "submission not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load submission")
	}

	if value {
		return s.assign(ctx, submission, category)
	}
	return s.clear(ctx, submission, category)
}

func (s *Service) assign(ctx context.Context, submission *models.Submission, category id.WinnerCategory) error {
	// Read the live holder, then swap against exactly what was read. A second
	// admin landing in between makes the swap fail instead of silently
	// overwriting an assignment nobody saw.
	var expected *id.SubmissionID
	current, err := s.winners.Find(ctx, submission.EventID, category)
	switch {
	case err == nil:
		if current.SubmissionID == submission.ID {
			return nil // already the holder; idempotent
		}
		expected = &current.SubmissionID
	case errors.Is(err, sentinel.ErrNotFound):
		expected = nil
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read winner assignment")
	}

	assignment := models.WinnerAssignment{
		EventID:      submission.EventID,
		Category:     category,
		SubmissionID: submission.ID,
		AssignedBy:   requestcontext.ActorID(ctx),
		AssignedAt:   requestcontext.Now(ctx),
	}
	if err := s.winners.CompareAndSwap(ctx, expected, assignment); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			s.metrics.WinnerConflicts.Inc()
			return dErrors.New(dErrors.CodeConflict,
				"winner assignment changed concurrently; re-read current state before retrying")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to assign winner")
	}

	// Fail-closed: an award that cannot be audited is reported as a failure
	// even though the swap is durable.
	if err := s.audit.Emit(ctx, audit.Event{
		Action:     audit.ActionWinnerAssigned,
		EventID:    submission.EventID,
		ActorID:    assignment.AssignedBy,
		OccurredAt: assignment.AssignedAt,
		Details: map[string]string{
			"category":      category.String(),
			"submission_id": submission.ID.String(),
		},
	}); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "winner assigned but audit trail write failed")
	}

	s.metrics.WinnersAssigned.WithLabelValues(category.String()).Inc()
	s.logger.InfoContext(ctx, "winner assigned",
		"event_id", submission.EventID, "category", category, "submission_id", submission.ID)
	return nil
}

func (s *Service) clear(ctx context.Context, submission *models.Submission, category id.WinnerCategory) error {
	removed, err := s.winners.Clear(ctx, submission.EventID, category, submission.ID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear winner assignment")
	}
	if !removed {
		return nil
	}

	if err := s.audit.Emit(ctx, audit.Event{
		Action:     audit.ActionWinnerCleared,
		EventID:    submission.EventID,
		ActorID:    requestcontext.ActorID(ctx),
		OccurredAt: requestcontext.Now(ctx),
		Details: map[string]string{
			"category":      category.String(),
			"submission_id": submission.ID.String(),
		},
	}); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "winner cleared but audit trail write failed")
	}

	s.metrics.WinnersCleared.WithLabelValues(category.String()).Inc()
	s.logger.InfoContext(ctx, "winner cleared",
		"event_id", submission.EventID, "category", category, "submission_id", submission.ID)
	return nil
}

// Winners lists the live assignments for an event.
func (s *Service) Winners(ctx context.Context, eventID id.EventID) ([]models.WinnerAssignment, error) {
	assignments, err := s.winners.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list winner assignments")
	}
	return assignments, nil
}
