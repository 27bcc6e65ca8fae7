// Package store persists platform accounts.
package store

import (
	"context"

	"tekfest/internal/identity/models"
	id "tekfest/pkg/domain"
)

// AccountStore looks up platform accounts. Lookups are read-only with respect
// to the registration flow; account creation belongs to the excluded auth
// surface and exists here for seeding and tests.
type AccountStore interface {
	// Create inserts an account, returning sentinel.ErrAlreadyExists when the
	// email is taken.
	Create(ctx context.Context, account *models.Account) error
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByID(ctx context.Context, accountID id.AccountID) (*models.Account, error)
}
