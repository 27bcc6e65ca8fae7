// Package store persists teams and their member slots. It also backs the two
// registry-wide lookups the validators need: account membership and NIK
// uniqueness across the event.
package store

import (
	"context"

	"tekfest/internal/registration/models"
	id "tekfest/pkg/domain"
)

// TeamStore persists the team aggregate.
type TeamStore interface {
	// Submit finalizes a team. The operation is idempotent on the
	// (event, leader account) pair: resubmitting returns the already-stored
	// team with created=false and never creates a duplicate row.
	Submit(ctx context.Context, team *models.Team) (stored *models.Team, created bool, err error)
	FindByID(ctx context.Context, teamID id.TeamID) (*models.Team, error)
	// FindByLeader returns the team the account leads in the event, or
	// sentinel.ErrNotFound.
	FindByLeader(ctx context.Context, eventID id.EventID, leaderID id.AccountID) (*models.Team, error)
	ListByEvent(ctx context.Context, eventID id.EventID) ([]*models.Team, error)
	// IsMember reports whether the account occupies any slot (leader
	// included) on any team of the event.
	IsMember(ctx context.Context, eventID id.EventID, accountID id.AccountID) (bool, error)
	// NikInUse reports whether the NIK is recorded on any team of the event
	// other than excludeTeamID.
	NikInUse(ctx context.Context, eventID id.EventID, nik string, excludeTeamID id.TeamID) (bool, error)
	// UpdateMemberPayment records an admin's verification decision for one
	// slot. Membership stays immutable after submission; payment status is
	// the one exception.
	UpdateMemberPayment(ctx context.Context, teamID id.TeamID, slot int, status id.PaymentStatus) error
}
