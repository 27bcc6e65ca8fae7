// Package service orchestrates competition-event lifecycle management.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"tekfest/internal/event/models"
	"tekfest/internal/event/store"
	"tekfest/internal/judging/rubric"
	id "tekfest/pkg/domain"
	dErrors "tekfest/pkg/domain-errors"
	"tekfest/pkg/platform/sentinel"
	"tekfest/pkg/requestcontext"
)

type EventService struct {
	events  store.EventStore
	rubrics *rubric.Registry
	logger  *slog.Logger
}

func New(events store.EventStore, rubrics *rubric.Registry, logger *slog.Logger) *EventService {
	return &EventService{events: events, rubrics: rubrics, logger: logger}
}

// CreateEvent registers a new competition edition. The rubric version must be
// known to the registry before any event may reference it.
func (s *EventService) CreateEvent(ctx context.Context, name, slug, rubricVersion string, startsAt, endsAt time.Time) (*models.Event, error) {
	if _, err := s.rubrics.Get(rubricVersion); err != nil {
		return nil, err
	}

	event, err := models.NewEvent(id.NewEventID(), name, slug, rubricVersion, startsAt, endsAt, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	if err := s.events.CreateIfNameAvailable(ctx, event); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyExists) {
			return nil, dErrors.New(dErrors.CodeConflict, "event name must be unique")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create event")
	}

	s.logger.InfoContext(ctx, "event created", "event_id", event.ID, "slug", event.Slug)
	return event, nil
}

// GetEvent loads one event by ID.
func (s *EventService) GetEvent(ctx context.Context, eventID id.EventID) (*models.Event, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "event not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load event")
	}
	return event, nil
}

// Rubric resolves the scoring rubric configured for an event.
func (s *EventService) Rubric(ctx context.Context, eventID id.EventID) (rubric.Rubric, error) {
	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return rubric.Rubric{}, err
	}
	return s.rubrics.Get(event.RubricVersion)
}

// ListEvents returns all editions, oldest first.
func (s *EventService) ListEvents(ctx context.Context) ([]*models.Event, error) {
	events, err := s.events.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list events")
	}
	return events, nil
}
