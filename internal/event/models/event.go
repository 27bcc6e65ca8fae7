// Package models defines the competition-event entity. An Event is one
// edition of the festival; teams, submissions, and winner assignments are all
// keyed by it.
package models

import (
	"strings"
	"time"

	id "tekfest/pkg/domain"
	dErrors "tekfest/pkg/domain-errors"
)

// Event is one competition edition.
type Event struct {
	ID   id.EventID
	Name string
	Slug string
	// RubricVersion selects the scoring rubric used for this edition.
	RubricVersion string
	StartsAt      time.Time
	EndsAt        time.Time
	CreatedAt     time.Time
}

// NewEvent validates invariants at construction time.
func NewEvent(eventID id.EventID, name, slug, rubricVersion string, startsAt, endsAt, now time.Time) (*Event, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "event name cannot be empty")
	}
	if slug = strings.TrimSpace(strings.ToLower(slug)); slug == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "event slug cannot be empty")
	}
	if rubricVersion == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "rubric version cannot be empty")
	}
	if !endsAt.IsZero() && !startsAt.IsZero() && endsAt.Before(startsAt) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "event cannot end before it starts")
	}
	return &Event{
		ID:            eventID,
		Name:          name,
		Slug:          slug,
		RubricVersion: rubricVersion,
		StartsAt:      startsAt,
		EndsAt:        endsAt,
		CreatedAt:     now,
	}, nil
}
