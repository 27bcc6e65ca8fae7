package store

import (
	"context"
	"sync"

	"tekfest/internal/registration/models"
	id "tekfest/pkg/domain"
	"tekfest/pkg/platform/sentinel"
	"tekfest/pkg/requestcontext"
)

// InMemoryTeamStore keeps teams in a map guarded by a mutex. Suitable for
// tests and single-instance development runs.
type InMemoryTeamStore struct {
	mu       sync.RWMutex
	teams    map[id.TeamID]*models.Team
	byLeader map[leaderKey]id.TeamID
}

type leaderKey struct {
	eventID   id.EventID
	accountID id.AccountID
}

func NewInMemoryTeamStore() *InMemoryTeamStore {
	return &InMemoryTeamStore{
		teams:    make(map[id.TeamID]*models.Team),
		byLeader: make(map[leaderKey]id.TeamID),
	}
}

func (s *InMemoryTeamStore) Submit(ctx context.Context, team *models.Team) (*models.Team, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := leaderKey{eventID: team.EventID, accountID: team.LeaderAccountID}
	if existingID, ok := s.byLeader[key]; ok {
		return copyTeam(s.teams[existingID]), false, nil
	}

	stored := copyTeam(team)
	stored.Status = id.TeamSubmitted
	if stored.SubmittedAt.IsZero() {
		stored.SubmittedAt = requestcontext.Now(ctx).UTC()
	}
	s.teams[stored.ID] = stored
	s.byLeader[key] = stored.ID
	return copyTeam(stored), true, nil
}

func (s *InMemoryTeamStore) FindByID(_ context.Context, teamID id.TeamID) (*models.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	team, ok := s.teams[teamID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copyTeam(team), nil
}

func (s *InMemoryTeamStore) FindByLeader(_ context.Context, eventID id.EventID, leaderID id.AccountID) (*models.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	teamID, ok := s.byLeader[leaderKey{eventID: eventID, accountID: leaderID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copyTeam(s.teams[teamID]), nil
}

func (s *InMemoryTeamStore) ListByEvent(_ context.Context, eventID id.EventID) ([]*models.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Team
	for _, team := range s.teams {
		if team.EventID == eventID {
			out = append(out, copyTeam(team))
		}
	}
	return out, nil
}

func (s *InMemoryTeamStore) IsMember(_ context.Context, eventID id.EventID, accountID id.AccountID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, team := range s.teams {
		if team.EventID != eventID {
			continue
		}
		for _, member := range team.AllMembers() {
			if member.AccountID == accountID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (s *InMemoryTeamStore) NikInUse(_ context.Context, eventID id.EventID, nik string, excludeTeamID id.TeamID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, team := range s.teams {
		if team.EventID != eventID || team.ID == excludeTeamID {
			continue
		}
		for _, member := range team.AllMembers() {
			if member.NIK == nik {
				return true, nil
			}
		}
	}
	return false, nil
}

func (s *InMemoryTeamStore) UpdateMemberPayment(_ context.Context, teamID id.TeamID, slot int, status id.PaymentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	team, ok := s.teams[teamID]
	if !ok {
		return sentinel.ErrNotFound
	}
	member, err := team.MemberBySlot(slot)
	if err != nil {
		return err
	}
	member.PaymentStatus = status
	return nil
}

func copyTeam(team *models.Team) *models.Team {
	clone := *team
	clone.TwibbonLinks = append([]string(nil), team.TwibbonLinks...)
	return &clone
}
