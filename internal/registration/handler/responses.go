package handler

import (
	"time"

	identitymodels "tekfest/internal/identity/models"
	"tekfest/internal/registration/models"
)

type validateResponse struct {
	Valid   bool                            `json:"valid"`
	User    *identitymodels.ProfileSnapshot `json:"user,omitempty"`
	Code    string                          `json:"code,omitempty"`
	Message string                          `json:"message,omitempty"`
}

type memberResponse struct {
	Slot          int    `json:"slot"`
	AccountID     string `json:"account_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Category      string `json:"category"`
	Domicile      string `json:"domicile"`
	PaymentStatus string `json:"payment_status"`
}

type teamResponse struct {
	ID           string           `json:"id"`
	EventID      string           `json:"event_id"`
	Name         string           `json:"name"`
	Code         string           `json:"code"`
	Status       string           `json:"status"`
	Members      []memberResponse `json:"members"`
	TwibbonLinks []string         `json:"twibbon_links,omitempty"`
	SubmittedAt  time.Time        `json:"submitted_at"`
}

// fromTeam maps the aggregate to its API shape. NIKs are deliberately absent:
// they are validated server-side and never echoed back.
func fromTeam(team *models.Team) teamResponse {
	resp := teamResponse{
		ID:           team.ID.String(),
		EventID:      team.EventID.String(),
		Name:         team.Name,
		Code:         team.Code,
		Status:       team.Status.String(),
		TwibbonLinks: team.TwibbonLinks,
		SubmittedAt:  team.SubmittedAt,
	}
	for _, member := range team.AllMembers() {
		resp.Members = append(resp.Members, memberResponse{
			Slot:          member.Slot,
			AccountID:     member.AccountID.String(),
			Name:          member.Name,
			Email:         member.Email,
			Category:      member.Category.String(),
			Domicile:      member.Domicile,
			PaymentStatus: member.PaymentStatus.String(),
		})
	}
	return resp
}
