// Package models defines the team aggregate built by the registration wizard:
// a leader plus exactly two member slots, each carrying validated identity,
// NIK, category, domicile, and an independent payment status.
package models

import (
	"crypto/rand"
	"time"

	id "tekfest/pkg/domain"
	dErrors "tekfest/pkg/domain-errors"
)

// Leader occupies slot 0; the two additional members fill slots 1 and 2.
const (
	SlotLeader  = 0
	SlotMember1 = 1
	SlotMember2 = 2
)

// Member is one occupied slot. The fixed-shape struct replaces string-keyed
// per-slot field names (member1_email, member2_nik, ...), so a slot is
// addressed by index and a field by name.
type Member struct {
	Slot      int
	AccountID id.AccountID
	Name      string
	Email     string
	NIK       string
	// OriginalNIK is the NIK on the account profile at resolution time, kept
	// so an unchanged value skips redundant re-validation.
	OriginalNIK   string
	Category      id.MemberCategory
	Domicile      string
	PaymentStatus id.PaymentStatus
	// PaymentInitiated is the member's manual acknowledgment that payment
	// proof was sent. Verification is an external admin action.
	PaymentInitiated bool
}

// Team is the persisted aggregate. Code is unique per event. Once Status is
// submitted the membership is immutable; only payment status still changes.
type Team struct {
	ID              id.TeamID
	EventID         id.EventID
	Name            string
	Code            string
	LeaderAccountID id.AccountID
	Status          id.TeamStatus
	Leader          Member
	Members         [2]Member
	TwibbonLinks    []string
	CreatedAt       time.Time
	SubmittedAt     time.Time
}

// MemberBySlot returns the member occupying a slot (0 = leader).
func (t *Team) MemberBySlot(slot int) (*Member, error) {
	switch slot {
	case SlotLeader:
		return &t.Leader, nil
	case SlotMember1:
		return &t.Members[0], nil
	case SlotMember2:
		return &t.Members[1], nil
	default:
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "slot %d does not exist", slot)
	}
}

// AllMembers lists the leader and both members, leader first.
func (t *Team) AllMembers() []*Member {
	return []*Member{&t.Leader, &t.Members[0], &t.Members[1]}
}

// Niks collects every slot's NIK, leader first.
func (t *Team) Niks() []string {
	return []string{t.Leader.NIK, t.Members[0].NIK, t.Members[1].NIK}
}

// ReadyForSubmission checks the final-submission precondition: every slot has
// category, domicile, and NIK set, and every member has acknowledged payment.
func (t *Team) ReadyForSubmission() error {
	if t.Name == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "team name cannot be empty")
	}
	if t.LeaderAccountID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "team has no leader account")
	}
	for _, member := range t.AllMembers() {
		if member.NIK == "" {
			return dErrors.Newf(dErrors.CodeInvalidInput, "slot %d has no NIK", member.Slot)
		}
		if !member.Category.IsValid() {
			return dErrors.Newf(dErrors.CodeInvalidInput, "slot %d has no category", member.Slot)
		}
		if member.Domicile == "" {
			return dErrors.Newf(dErrors.CodeInvalidInput, "slot %d has no domicile", member.Slot)
		}
		if !member.PaymentInitiated {
			return dErrors.Newf(dErrors.CodeInvalidInput, "slot %d has not initiated payment", member.Slot)
		}
	}
	return nil
}

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewTeamCode generates an 8-character team code. Ambiguous characters
// (0/O, 1/I) are excluded.
func NewTeamCode() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform's entropy source is broken.
		panic(err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf)
}
