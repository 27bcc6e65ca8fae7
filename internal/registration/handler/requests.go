package handler

import (
	"tekfest/internal/registration/service"
	id "tekfest/pkg/domain"
	dErrors "tekfest/pkg/domain-errors"
)

type validateEmailRequest struct {
	Email           string `json:"email"`
	LeaderAccountID string `json:"leader_account_id"`
	EventID         string `json:"event_id"`
}

func (r validateEmailRequest) parse() (id.EventID, id.AccountID, error) {
	eventID, err := id.ParseEventID(r.EventID)
	if err != nil {
		return id.EventID{}, id.AccountID{}, dErrors.New(dErrors.CodeBadRequest, "event_id is not a valid UUID")
	}
	leaderID, err := id.ParseAccountID(r.LeaderAccountID)
	if err != nil {
		return id.EventID{}, id.AccountID{}, dErrors.New(dErrors.CodeBadRequest, "leader_account_id is not a valid UUID")
	}
	return eventID, leaderID, nil
}

type validateNikRequest struct {
	NIK                string   `json:"nik"`
	CurrentMemberEmail string   `json:"current_member_email"`
	OtherNiks          []string `json:"other_niks"`
	TeamID             string   `json:"team_id"`
	EventID            string   `json:"event_id"`
}

func (r validateNikRequest) parse() (service.NikRequest, error) {
	eventID, err := id.ParseEventID(r.EventID)
	if err != nil {
		return service.NikRequest{}, dErrors.New(dErrors.CodeBadRequest, "event_id is not a valid UUID")
	}
	req := service.NikRequest{
		EventID:       eventID,
		MemberEmail:   r.CurrentMemberEmail,
		NIK:           r.NIK,
		OtherTeamNiks: r.OtherNiks,
	}
	if r.TeamID != "" {
		if req.TeamID, err = id.ParseTeamID(r.TeamID); err != nil {
			return service.NikRequest{}, dErrors.New(dErrors.CodeBadRequest, "team_id is not a valid UUID")
		}
	}
	return req, nil
}

type memberPayload struct {
	Email            string `json:"email"`
	NIK              string `json:"nik"`
	PaymentInitiated bool   `json:"payment_initiated"`
}

type submitTeamRequest struct {
	EventID         string          `json:"event_id"`
	Name            string          `json:"name"`
	LeaderAccountID string          `json:"leader_account_id"`
	Leader          memberPayload   `json:"leader"`
	Members         []memberPayload `json:"members"`
	TwibbonLinks    []string        `json:"twibbon_links"`
}

func (r submitTeamRequest) parse() (service.SubmitTeamInput, error) {
	eventID, err := id.ParseEventID(r.EventID)
	if err != nil {
		return service.SubmitTeamInput{}, dErrors.New(dErrors.CodeBadRequest, "event_id is not a valid UUID")
	}
	leaderID, err := id.ParseAccountID(r.LeaderAccountID)
	if err != nil {
		return service.SubmitTeamInput{}, dErrors.New(dErrors.CodeBadRequest, "leader_account_id is not a valid UUID")
	}
	if len(r.Members) != 2 {
		return service.SubmitTeamInput{}, dErrors.New(dErrors.CodeBadRequest, "a team needs exactly two members besides the leader")
	}

	in := service.SubmitTeamInput{
		EventID:         eventID,
		Name:            r.Name,
		LeaderAccountID: leaderID,
		Leader: service.MemberInput{
			NIK:              r.Leader.NIK,
			PaymentInitiated: r.Leader.PaymentInitiated,
		},
		TwibbonLinks: r.TwibbonLinks,
	}
	for i, m := range r.Members {
		in.Members[i] = service.MemberInput{
			Email:            m.Email,
			NIK:              m.NIK,
			PaymentInitiated: m.PaymentInitiated,
		}
	}
	return in, nil
}

type updatePaymentRequest struct {
	Status string `json:"status"`
}
