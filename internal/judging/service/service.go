// Package service orchestrates submission intake and judge evaluations.
package service

import (
	"context"
	"errors"
	"log/slog"

	eventservice "tekfest/internal/event/service"
	judgingmetrics "tekfest/internal/judging/metrics"
	"tekfest/internal/judging/models"
	"tekfest/internal/judging/store"
	id "tekfest/pkg/domain"
	dErrors "tekfest/pkg/domain-errors"
	"tekfest/pkg/platform/sentinel"
	"tekfest/pkg/requestcontext"
)

// Invalidator drops derived leaderboard state after a write that changes
// scores. The leaderboard service provides the implementation.
type Invalidator interface {
	Invalidate(ctx context.Context, eventID id.EventID)
}

type JudgingService struct {
	submissions store.SubmissionStore
	evaluations store.EvaluationStore
	events      *eventservice.EventService
	invalidator Invalidator
	metrics     *judgingmetrics.Metrics
	logger      *slog.Logger
}

func New(
	submissions store.SubmissionStore,
	evaluations store.EvaluationStore,
	events *eventservice.EventService,
	invalidator Invalidator,
	metrics *judgingmetrics.Metrics,
	logger *slog.Logger,
) *JudgingService {
	return &JudgingService{
		submissions: submissions,
		evaluations: evaluations,
		events:      events,
		invalidator: invalidator,
		metrics:     metrics,
		logger:      logger,
	}
}

// CreateSubmission registers a team's project entry. A team submits exactly
// once; the second attempt conflicts.
func (s *JudgingService) CreateSubmission(ctx context.Context, submission *models.Submission) (*models.Submission, error) {
	if submission.Title == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "submission title cannot be empty")
	}
	if _, err := s.events.GetEvent(ctx, submission.EventID); err != nil {
		return nil, err
	}

	submission.ID = id.NewSubmissionID()
	submission.CreatedAt = requestcontext.Now(ctx)
	if err := s.submissions.Create(ctx, submission); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyExists) {
			return nil, dErrors.New(dErrors.CodeConflict, "team already has a submission")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create submission")
	}
	s.logger.InfoContext(ctx, "submission created",
		"submission_id", submission.ID, "team_id", submission.TeamID)
	return submission, nil
}

// RecordEvaluation stores one judge's scores for a submission after checking
// them against the event's rubric. Each judge evaluates a submission once.
func (s *JudgingService) RecordEvaluation(ctx context.Context, submissionID id.SubmissionID, judgeID id.JudgeID, scores models.CriterionScores, comment string) (*models.Evaluation, error) {
	if judgeID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "judge_id is required")
	}

	submission, err := s.submissions.FindByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "submission not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load submission")
	}

	r, err := s.events.Rubric(ctx, submission.EventID)
	if err != nil {
		return nil, err
	}

	evaluation := &models.Evaluation{
		ID:           id.NewEvaluationID(),
		SubmissionID: submissionID,
		JudgeID:      judgeID,
		Scores:       scores,
		Comment:      comment,
		CreatedAt:    requestcontext.Now(ctx),
	}
	if err := evaluation.ValidateScores(r); err != nil {
		return nil, err
	}

	if err := s.evaluations.Append(ctx, evaluation); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyExists) {
			return nil, dErrors.New(dErrors.CodeConflict, "judge has already evaluated this submission")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record evaluation")
	}

	s.metrics.EvaluationsRecorded.Inc()
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, submission.EventID)
	}
	s.logger.InfoContext(ctx, "evaluation recorded",
		"submission_id", submissionID, "judge_id", judgeID)
	return evaluation, nil
}

// GetSubmission loads a submission by ID.
func (s *JudgingService) GetSubmission(ctx context.Context, submissionID id.SubmissionID) (*models.Submission, error) {
	submission, err := s.submissions.FindByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "submission not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load submission")
	}
	return submission, nil
}
