package store

import (
	"context"
	"sort"
	"sync"

	"tekfest/internal/event/models"
	id "tekfest/pkg/domain"
	"tekfest/pkg/platform/sentinel"
)

// InMemoryEventStore is the test and local-development implementation.
type InMemoryEventStore struct {
	mu     sync.RWMutex
	events map[id.EventID]models.Event
}

func NewInMemoryEventStore() *InMemoryEventStore {
	return &InMemoryEventStore{events: make(map[id.EventID]models.Event)}
}

func (s *InMemoryEventStore) CreateIfNameAvailable(_ context.Context, event *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.events {
		if existing.Name == event.Name || existing.Slug == event.Slug {
			return sentinel.ErrAlreadyExists
		}
	}
	s.events[event.ID] = *event
	return nil
}

func (s *InMemoryEventStore) FindByID(_ context.Context, eventID id.EventID) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	event, ok := s.events[eventID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &event, nil
}

func (s *InMemoryEventStore) FindBySlug(_ context.Context, slug string) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, event := range s.events {
		if event.Slug == slug {
			e := event
			return &e, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryEventStore) List(_ context.Context) ([]*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Event, 0, len(s.events))
	for _, event := range s.events {
		e := event
		out = append(out, &e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
