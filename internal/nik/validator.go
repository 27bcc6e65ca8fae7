// Package nik validates Indonesian national identity numbers for team
// registration: format, internal plausibility, and uniqueness across the
// event's population.
//
// The plausibility check follows the NIK convention: the six leading digits
// are a region code, followed by a DDMMYY birth-date block in which a
// registrant recorded as female carries a +40 day offset. The day-count table
// uses a fixed non-leap reference year, which keeps this a best-effort
// plausibility filter rather than a legal validity guarantee.
package nik

import (
	"context"
	"strconv"

	id "tekfest/pkg/domain"
	dErrors "tekfest/pkg/domain-errors"
)

// UniquenessChecker answers whether a NIK is already validated on any team of
// the event. The registration store provides the implementation.
type UniquenessChecker interface {
	// NikInUse checks the event's population, excluding excludeTeamID so a
	// team editing its own members does not collide with itself.
	NikInUse(ctx context.Context, eventID id.EventID, nik string, excludeTeamID id.TeamID) (bool, error)
}

// Input carries one validation attempt for a member slot.
type Input struct {
	NIK string
	// OriginalNIK is the value on the resolved account profile. A candidate
	// equal to it was vetted when the profile was stored, so uniqueness is
	// not re-checked.
	OriginalNIK string
	// OtherNiksInTeam holds the NIKs already entered for the other slots
	// (leader included), collected client-side.
	OtherNiksInTeam []string
	EventID         id.EventID
	// ExcludeTeamID is the team under edit; zero for a team still in draft
	// client state.
	ExcludeTeamID id.TeamID
	// EmailResolved gates the check: a NIK may only be validated after the
	// slot's email has resolved to an account.
	EmailResolved bool
}

// Validator checks NIKs against format, plausibility, and uniqueness rules.
type Validator struct {
	uniqueness UniquenessChecker
}

func New(uniqueness UniquenessChecker) *Validator {
	return &Validator{uniqueness: uniqueness}
}

// Validate runs the full rule chain. Errors are terminal for the attempt and
// surfaced per field; the user corrects and retries.
func (v *Validator) Validate(ctx context.Context, in Input) error {
	if !in.EmailResolved {
		return dErrors.New(dErrors.CodePrerequisite, "resolve the member's email before validating the NIK")
	}

	// Fast path: the NIK on the resolved profile was vetted when it was
	// stored, so an unchanged value skips the uniqueness round-trip.
	if in.OriginalNIK != "" && in.NIK == in.OriginalNIK && isDigits16(in.NIK) {
		return nil
	}

	if err := CheckFormat(in.NIK); err != nil {
		return err
	}

	for _, other := range in.OtherNiksInTeam {
		if other == in.NIK {
			return dErrors.New(dErrors.CodeDuplicate, "NIK is already used by another member of this team")
		}
	}

	inUse, err := v.uniqueness.NikInUse(ctx, in.EventID, in.NIK, in.ExcludeTeamID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check NIK uniqueness")
	}
	if inUse {
		return dErrors.New(dErrors.CodeDuplicate, "NIK is already registered to another team in this event")
	}
	return nil
}

// daysInMonth is the fixed non-leap reference table (February = 28). Kept
// imprecise on purpose: strengthening it would change accept/reject behavior
// for real registrants.
var daysInMonth = [13]int{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// CheckFormat validates the 16-digit shape and the embedded birth-date block.
// Pure; the wizard reuses it for the auto-populated fast path.
func CheckFormat(nik string) error {
	if !isDigits16(nik) {
		return dErrors.New(dErrors.CodeInvalidFormat, "NIK must be exactly 16 digits")
	}

	day, _ := strconv.Atoi(nik[6:8])
	month, _ := strconv.Atoi(nik[8:10])
	// nik[10:12] is a two-digit birth year; the century is ambiguous, so it
	// is not validated further.

	if day > 40 {
		// Female registrants are recorded with the calendar day plus 40.
		day -= 40
	}
	if month < 1 || month > 12 {
		return dErrors.New(dErrors.CodeInvalidFormat, "NIK birth month must be between 01 and 12")
	}
	if day < 1 || day > daysInMonth[month] {
		return dErrors.Newf(dErrors.CodeInvalidFormat, "NIK birth day is not plausible for month %02d", month)
	}
	return nil
}

func isDigits16(s string) bool {
	if len(s) != 16 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
