// Package audit records the administrative trail of the competition core:
// team submissions, payment-status changes, winner assignments.
//
// Two emission modes mirror how consequential each event is:
//   - Emit is synchronous and fail-closed; winner assignments use it so an
//     unrecorded award can never take effect.
//   - EmitAsync is fire-and-forget; registration milestones use it so a slow
//     broker never blocks a participant.
package audit

import (
	"time"

	id "tekfest/pkg/domain"
)

// Action names an auditable occurrence. Values are stable strings consumed by
// downstream reporting.
type Action string

const (
	ActionTeamSubmitted        Action = "team_submitted"
	ActionPaymentStatusChanged Action = "payment_status_changed"
	ActionWinnerAssigned       Action = "winner_assigned"
	ActionWinnerCleared        Action = "winner_cleared"
)

// Event is one audit record. Details carries action-specific fields; keep it
// small and string-valued so serialization stays stable.
type Event struct {
	Action     Action            `json:"action"`
	EventID    id.EventID        `json:"event_id"`
	ActorID    id.AccountID      `json:"actor_id"`
	OccurredAt time.Time         `json:"occurred_at"`
	Details    map[string]string `json:"details,omitempty"`
}
