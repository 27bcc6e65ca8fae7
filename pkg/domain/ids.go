// Package domain holds identifier and enum types shared across features.
//
// IDs are distinct named UUID types so the compiler rejects cross-type
// assignment (passing a TeamID where an AccountID is expected). Construct via
// the Parse functions at trust boundaries; direct casting bypasses validation.
package domain

import (
	"github.com/google/uuid"

	dErrors "tekfest/pkg/domain-errors"
)

type (
	// EventID identifies one competition edition of the festival.
	EventID uuid.UUID
	// AccountID identifies a platform account.
	AccountID uuid.UUID
	// TeamID identifies a competing team within an event.
	TeamID uuid.UUID
	// SubmissionID identifies a team's project submission (1:1 with TeamID).
	SubmissionID uuid.UUID
	// EvaluationID identifies a single judge's evaluation of a submission.
	EvaluationID uuid.UUID
	// JudgeID identifies a judge account.
	JudgeID uuid.UUID
)

func (id EventID) String() string      { return uuid.UUID(id).String() }
func (id AccountID) String() string    { return uuid.UUID(id).String() }
func (id TeamID) String() string       { return uuid.UUID(id).String() }
func (id SubmissionID) String() string { return uuid.UUID(id).String() }
func (id EvaluationID) String() string { return uuid.UUID(id).String() }
func (id JudgeID) String() string      { return uuid.UUID(id).String() }

func (id EventID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id AccountID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id TeamID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id SubmissionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id EvaluationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id JudgeID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }

func NewEventID() EventID           { return EventID(uuid.New()) }
func NewAccountID() AccountID       { return AccountID(uuid.New()) }
func NewTeamID() TeamID             { return TeamID(uuid.New()) }
func NewSubmissionID() SubmissionID { return SubmissionID(uuid.New()) }
func NewEvaluationID() EvaluationID { return EvaluationID(uuid.New()) }
func NewJudgeID() JudgeID           { return JudgeID(uuid.New()) }

// ParseEventID constructs an EventID from external input.
func ParseEventID(s string) (EventID, error) {
	u, err := parseUUID(s, "event_id")
	return EventID(u), err
}

// ParseAccountID constructs an AccountID from external input.
func ParseAccountID(s string) (AccountID, error) {
	u, err := parseUUID(s, "account_id")
	return AccountID(u), err
}

// ParseTeamID constructs a TeamID from external input.
func ParseTeamID(s string) (TeamID, error) {
	u, err := parseUUID(s, "team_id")
	return TeamID(u), err
}

// ParseSubmissionID constructs a SubmissionID from external input.
func ParseSubmissionID(s string) (SubmissionID, error) {
	u, err := parseUUID(s, "submission_id")
	return SubmissionID(u), err
}

// ParseEvaluationID constructs an EvaluationID from external input.
func ParseEvaluationID(s string) (EvaluationID, error) {
	u, err := parseUUID(s, "evaluation_id")
	return EvaluationID(u), err
}

// ParseJudgeID constructs a JudgeID from external input.
func ParseJudgeID(s string) (JudgeID, error) {
	u, err := parseUUID(s, "judge_id")
	return JudgeID(u), err
}

// parseUUID enforces the shared invariant: IDs must be valid, non-nil UUIDs.
func parseUUID(s, field string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be empty", field)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s is not a valid UUID", field)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be the nil UUID", field)
	}
	return u, nil
}
