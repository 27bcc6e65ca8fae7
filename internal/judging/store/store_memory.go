package store

import (
	"context"
	"sort"
	"sync"

	"tekfest/internal/judging/models"
	id "tekfest/pkg/domain"
	"tekfest/pkg/platform/sentinel"
)

// InMemorySubmissionStore is the test and local-development implementation.
type InMemorySubmissionStore struct {
	mu          sync.RWMutex
	submissions map[id.SubmissionID]models.Submission
	byTeam      map[id.TeamID]id.SubmissionID
}

func NewInMemorySubmissionStore() *InMemorySubmissionStore {
	return &InMemorySubmissionStore{
		submissions: make(map[id.SubmissionID]models.Submission),
		byTeam:      make(map[id.TeamID]id.SubmissionID),
	}
}

func (s *InMemorySubmissionStore) Create(_ context.Context, submission *models.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byTeam[submission.TeamID]; ok {
		return sentinel.ErrAlreadyExists
	}
	s.submissions[submission.ID] = *submission
	s.byTeam[submission.TeamID] = submission.ID
	return nil
}

func (s *InMemorySubmissionStore) FindByID(_ context.Context, submissionID id.SubmissionID) (*models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	submission, ok := s.submissions[submissionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &submission, nil
}

func (s *InMemorySubmissionStore) ListByEvent(_ context.Context, eventID id.EventID) ([]*models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Submission
	for _, submission := range s.submissions {
		if submission.EventID == eventID {
			sub := submission
			out = append(out, &sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

type evaluationKey struct {
	submission id.SubmissionID
	judge      id.JudgeID
}

// InMemoryEvaluationStore keeps evaluations keyed by (submission, judge).
type InMemoryEvaluationStore struct {
	mu    sync.RWMutex
	evals map[evaluationKey]models.Evaluation
}

func NewInMemoryEvaluationStore() *InMemoryEvaluationStore {
	return &InMemoryEvaluationStore{evals: make(map[evaluationKey]models.Evaluation)}
}

func (s *InMemoryEvaluationStore) Append(_ context.Context, evaluation *models.Evaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := evaluationKey{submission: evaluation.SubmissionID, judge: evaluation.JudgeID}
	if _, ok := s.evals[key]; ok {
		return sentinel.ErrAlreadyExists
	}
	s.evals[key] = *evaluation
	return nil
}

func (s *InMemoryEvaluationStore) ListBySubmission(_ context.Context, submissionID id.SubmissionID) ([]models.Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Evaluation
	for key, evaluation := range s.evals {
		if key.submission == submissionID {
			out = append(out, evaluation)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type winnerKey struct {
	event    id.EventID
	category id.WinnerCategory
}

// InMemoryWinnerStore enforces the one-live-row-per-(event, category)
// invariant under a single mutex.
type InMemoryWinnerStore struct {
	mu      sync.Mutex
	winners map[winnerKey]models.WinnerAssignment
}

func NewInMemoryWinnerStore() *InMemoryWinnerStore {
	return &InMemoryWinnerStore{winners: make(map[winnerKey]models.WinnerAssignment)}
}

func (s *InMemoryWinnerStore) Find(_ context.Context, eventID id.EventID, category id.WinnerCategory) (*models.WinnerAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	assignment, ok := s.winners[winnerKey{event: eventID, category: category}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &assignment, nil
}

func (s *InMemoryWinnerStore) ListByEvent(_ context.Context, eventID id.EventID) ([]models.WinnerAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.WinnerAssignment
	for key, assignment := range s.winners {
		if key.event == eventID {
			out = append(out, assignment)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func (s *InMemoryWinnerStore) CompareAndSwap(_ context.Context, expected *id.SubmissionID, assignment models.WinnerAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := winnerKey{event: assignment.EventID, category: assignment.Category}
	current, held := s.winners[key]
	switch {
	case expected == nil && held:
		return sentinel.ErrConflict
	case expected != nil && (!held || current.SubmissionID != *expected):
		return sentinel.ErrConflict
	}
	s.winners[key] = assignment
	return nil
}

func (s *InMemoryWinnerStore) Clear(_ context.Context, eventID id.EventID, category id.WinnerCategory, submissionID id.SubmissionID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := winnerKey{event: eventID, category: category}
	current, held := s.winners[key]
	if !held || current.SubmissionID != submissionID {
		return false, nil
	}
	delete(s.winners, key)
	return true, nil
}
