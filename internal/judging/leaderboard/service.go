package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	eventservice "tekfest/internal/event/service"
	judgingmetrics "tekfest/internal/judging/metrics"
	"tekfest/internal/judging/models"
	"tekfest/internal/judging/scoring"
	"tekfest/internal/judging/store"
	platformredis "tekfest/internal/platform/redis"
	id "tekfest/pkg/domain"
	dErrors "tekfest/pkg/domain-errors"
)

// scoreWorkers bounds the per-submission aggregation fan-out.
const scoreWorkers = 8

// Entry is one leaderboard row, shaped for the reporting surface.
type Entry struct {
	Rank             int                     `json:"rank"`
	SubmissionID     id.SubmissionID         `json:"-"`
	TeamName         string                  `json:"team_name"`
	ProjectTitle     string                  `json:"project_title"`
	AverageScore     float64                 `json:"average_score"`
	EvaluationsCount int                     `json:"evaluations_count"`
	CriteriaScores   models.CriteriaAverages `json:"criteria_scores"`
}

// Service computes, caches, and serves leaderboards. The scorer is stateless,
// so submissions aggregate in parallel.
type Service struct {
	submissions store.SubmissionStore
	evaluations store.EvaluationStore
	events      *eventservice.EventService
	cache       *platformredis.Client
	cacheTTL    time.Duration
	metrics     *judgingmetrics.Metrics
	logger      *slog.Logger
}

func NewService(
	submissions store.SubmissionStore,
	evaluations store.EvaluationStore,
	events *eventservice.EventService,
	cache *platformredis.Client,
	cacheTTL time.Duration,
	metrics *judgingmetrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		submissions: submissions,
		evaluations: evaluations,
		events:      events,
		cache:       cache,
		cacheTTL:    cacheTTL,
		metrics:     metrics,
		logger:      logger,
	}
}

// Leaderboard returns the ranked entries for an event, serving the Redis
// snapshot when fresh.
func (s *Service) Leaderboard(ctx context.Context, eventID id.EventID) ([]Entry, error) {
	if s.cache != nil {
		var cached []Entry
		raw, err := s.cache.Get(ctx, s.cacheKey(eventID)).Bytes()
		if err == nil && json.Unmarshal(raw, &cached) == nil {
			s.metrics.LeaderboardCacheHits.Inc()
			return cached, nil
		}
		s.metrics.LeaderboardCacheMiss.Inc()
	}

	start := time.Now()
	scored, _, err := s.scoreEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	s.metrics.LeaderboardBuildSecs.Observe(time.Since(start).Seconds())

	entries := make([]Entry, 0, len(scored))
	for _, ranked := range Rank(scored) {
		entries = append(entries, Entry{
			Rank:             ranked.Rank,
			SubmissionID:     ranked.Submission.ID,
			TeamName:         ranked.Submission.TeamName,
			ProjectTitle:     ranked.Submission.Title,
			AverageScore:     ranked.Overall,
			EvaluationsCount: ranked.Evaluations,
			CriteriaScores:   ranked.Averages,
		})
	}

	if s.cache != nil {
		if raw, err := json.Marshal(entries); err == nil {
			if err := s.cache.Set(ctx, s.cacheKey(eventID), raw, s.cacheTTL).Err(); err != nil {
				s.logger.WarnContext(ctx, "cache leaderboard snapshot", "error", err)
			}
		}
	}
	return entries, nil
}

// Pending lists submissions with zero evaluations. They cannot be ranked (an
// undefined score cannot be ordered) but must stay enumerable for reporting.
func (s *Service) Pending(ctx context.Context, eventID id.EventID) ([]*models.Submission, error) {
	_, pending, err := s.scoreEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return pending, nil
}

// Suggest derives the top-scoring submission per award category. These are
// suggestions only; winner assignment is an administrative override.
func (s *Service) Suggest(ctx context.Context, eventID id.EventID) (map[id.WinnerCategory]id.SubmissionID, error) {
	r, err := s.events.Rubric(ctx, eventID)
	if err != nil {
		return nil, err
	}
	scored, _, err := s.scoreEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	suggestions := make(map[id.WinnerCategory]id.SubmissionID)
	for _, category := range id.WinnerCategories {
		best := -1.0
		var bestID id.SubmissionID
		found := false
		for _, sub := range scored {
			score, ok := sub.CategoryScore(r, category)
			if !ok {
				continue
			}
			// Tie-break matches the ranker: ascending submission id.
			if score > best || (score == best && sub.Submission.ID.String() < bestID.String()) {
				best = score
				bestID = sub.Submission.ID
				found = true
			}
		}
		if found {
			suggestions[category] = bestID
		}
	}
	return suggestions, nil
}

// Invalidate drops the cached snapshot for an event. Called after writes that
// change scores.
func (s *Service) Invalidate(ctx context.Context, eventID id.EventID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, s.cacheKey(eventID)).Err(); err != nil {
		s.logger.WarnContext(ctx, "invalidate leaderboard snapshot", "error", err)
	}
}

// scoreEvent aggregates every submission of the event in parallel, splitting
// the result into scored and pending (zero evaluations) sets.
func (s *Service) scoreEvent(ctx context.Context, eventID id.EventID) ([]models.ScoredSubmission, []*models.Submission, error) {
	r, err := s.events.Rubric(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	submissions, err := s.submissions.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list submissions")
	}

	results := make([]*models.ScoredSubmission, len(submissions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(scoreWorkers)
	for i, submission := range submissions {
		g.Go(func() error {
			evaluations, err := s.evaluations.ListBySubmission(gctx, submission.ID)
			if err != nil {
				return fmt.Errorf("list evaluations for %s: %w", submission.ID, err)
			}
			results[i] = scoring.Aggregate(r, *submission, evaluations)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to score submissions")
	}

	var (
		scored  []models.ScoredSubmission
		pending []*models.Submission
	)
	for i, result := range results {
		if result == nil {
			pending = append(pending, submissions[i])
			continue
		}
		scored = append(scored, *result)
	}
	return scored, pending, nil
}

func (s *Service) cacheKey(eventID id.EventID) string {
	return "leaderboard:" + eventID.String()
}
