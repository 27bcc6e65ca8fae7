// Package models defines the platform account and the profile snapshot handed
// to the registration wizard when an email resolves.
package models

import (
	"time"

	id "tekfest/pkg/domain"
)

// Account is a platform account. NIK may be empty when the holder has not
// completed their profile.
type Account struct {
	ID        id.AccountID
	Email     string
	Name      string
	NIK       string
	Category  id.MemberCategory
	Domicile  string
	CreatedAt time.Time
}

// ProfileSnapshot is what the resolver returns on success: enough to
// pre-populate a member slot. The caller decides whether to persist it.
type ProfileSnapshot struct {
	AccountID id.AccountID `json:"account_id"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	// NIK is the identity number on file at resolution time. The NIK
	// validator uses it as the fast-path reference (original_nik).
	NIK      string            `json:"nik,omitempty"`
	Category id.MemberCategory `json:"category,omitempty"`
	Domicile string            `json:"domicile,omitempty"`
}

// Snapshot derives the wizard-facing view of an account.
func (a Account) Snapshot() ProfileSnapshot {
	return ProfileSnapshot{
		AccountID: a.ID,
		Name:      a.Name,
		Email:     a.Email,
		NIK:       a.NIK,
		Category:  a.Category,
		Domicile:  a.Domicile,
	}
}
