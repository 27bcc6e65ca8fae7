package domain

import dErrors "tekfest/pkg/domain-errors"

// MemberCategory classifies a participant's background. Every team member
// (including the leader) carries one.
//
// Usage: construct via ParseMemberCategory at trust boundaries to enforce the
// allowlist; direct casting bypasses validation.
type MemberCategory string

const (
	CategoryHighSchool  MemberCategory = "high_school"
	CategoryUniversity  MemberCategory = "university"
	CategoryNonAcademic MemberCategory = "non_academic"
)

var validMemberCategories = map[MemberCategory]bool{
	CategoryHighSchool:  true,
	CategoryUniversity:  true,
	CategoryNonAcademic: true,
}

// ParseMemberCategory constructs a MemberCategory from external input.
func ParseMemberCategory(s string) (MemberCategory, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "category cannot be empty")
	}
	c := MemberCategory(s)
	if !validMemberCategories[c] {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown category %q", s)
	}
	return c, nil
}

func (c MemberCategory) IsValid() bool { return validMemberCategories[c] }
func (c MemberCategory) String() string { return string(c) }

// PaymentStatus tracks the manual payment-proof workflow per member. Verification
// is an external admin action; this core only records the transitions.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentVerified PaymentStatus = "verified"
	PaymentRejected PaymentStatus = "rejected"
)

var validPaymentStatuses = map[PaymentStatus]bool{
	PaymentPending:  true,
	PaymentVerified: true,
	PaymentRejected: true,
}

// ParsePaymentStatus constructs a PaymentStatus from external input.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "payment status cannot be empty")
	}
	p := PaymentStatus(s)
	if !validPaymentStatuses[p] {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown payment status %q", s)
	}
	return p, nil
}

func (p PaymentStatus) IsValid() bool { return validPaymentStatuses[p] }
func (p PaymentStatus) String() string { return string(p) }

// TeamStatus is the team lifecycle: draft while the wizard is in progress,
// submitted once finalized. Submitted teams are immutable in this core.
type TeamStatus string

const (
	TeamDraft     TeamStatus = "draft"
	TeamSubmitted TeamStatus = "submitted"
)

var validTeamStatuses = map[TeamStatus]bool{
	TeamDraft:     true,
	TeamSubmitted: true,
}

// ParseTeamStatus constructs a TeamStatus from external input.
func ParseTeamStatus(s string) (TeamStatus, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "team status cannot be empty")
	}
	t := TeamStatus(s)
	if !validTeamStatuses[t] {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown team status %q", s)
	}
	return t, nil
}

func (s TeamStatus) IsValid() bool { return validTeamStatuses[s] }
func (s TeamStatus) String() string { return string(s) }
