package handler

import (
	"tekfest/internal/judging/models"
	id "tekfest/pkg/domain"
	dErrors "tekfest/pkg/domain-errors"
)

type createSubmissionRequest struct {
	EventID       string   `json:"event_id"`
	TeamID        string   `json:"team_id"`
	TeamName      string   `json:"team_name"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	ResourceLinks []string `json:"resource_links"`
}

func (r createSubmissionRequest) parse() (*models.Submission, error) {
	eventID, err := id.ParseEventID(r.EventID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "event_id is not a valid UUID")
	}
	teamID, err := id.ParseTeamID(r.TeamID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "team_id is not a valid UUID")
	}
	if r.Title == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "title is required")
	}
	return &models.Submission{
		EventID:       eventID,
		TeamID:        teamID,
		TeamName:      r.TeamName,
		Title:         r.Title,
		Description:   r.Description,
		ResourceLinks: r.ResourceLinks,
	}, nil
}

type recordEvaluationRequest struct {
	JudgeID string                 `json:"judge_id"`
	Scores  models.CriterionScores `json:"scores"`
	Comment string                 `json:"comment"`
}

type setWinnerRequest struct {
	Category string `json:"category"`
	Value    bool   `json:"value"`
}
