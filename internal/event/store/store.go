// Package store persists competition events. Stores are interface-driven so
// services stay testable against the in-memory implementation.
package store

import (
	"context"

	"tekfest/internal/event/models"
	id "tekfest/pkg/domain"
)

// EventStore persists events. Implementations return sentinel errors for
// infrastructure facts; services translate them into domain errors.
type EventStore interface {
	// CreateIfNameAvailable inserts the event, returning
	// sentinel.ErrAlreadyExists when the name or slug is taken.
	CreateIfNameAvailable(ctx context.Context, event *models.Event) error
	FindByID(ctx context.Context, eventID id.EventID) (*models.Event, error)
	FindBySlug(ctx context.Context, slug string) (*models.Event, error)
	List(ctx context.Context) ([]*models.Event, error)
}
