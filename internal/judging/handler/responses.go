package handler

import (
	"time"

	"tekfest/internal/judging/leaderboard"
	"tekfest/internal/judging/models"
)

type submissionResponse struct {
	ID            string    `json:"id"`
	EventID       string    `json:"event_id"`
	TeamID        string    `json:"team_id"`
	TeamName      string    `json:"team_name"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	ResourceLinks []string  `json:"resource_links,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func fromSubmission(s *models.Submission) submissionResponse {
	return submissionResponse{
		ID:            s.ID.String(),
		EventID:       s.EventID.String(),
		TeamID:        s.TeamID.String(),
		TeamName:      s.TeamName,
		Title:         s.Title,
		Description:   s.Description,
		ResourceLinks: s.ResourceLinks,
		CreatedAt:     s.CreatedAt,
	}
}

type evaluationResponse struct {
	ID           string                 `json:"id"`
	SubmissionID string                 `json:"submission_id"`
	JudgeID      string                 `json:"judge_id"`
	Scores       models.CriterionScores `json:"scores"`
	Comment      string                 `json:"comment,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}

func fromEvaluation(e *models.Evaluation) evaluationResponse {
	return evaluationResponse{
		ID:           e.ID.String(),
		SubmissionID: e.SubmissionID.String(),
		JudgeID:      e.JudgeID.String(),
		Scores:       e.Scores,
		Comment:      e.Comment,
		CreatedAt:    e.CreatedAt,
	}
}

type leaderboardResponse struct {
	Entries []leaderboard.Entry `json:"entries"`
}

type pendingResponse struct {
	Submissions []submissionResponse `json:"submissions"`
}

type winnerResponse struct {
	Category     string    `json:"category"`
	SubmissionID string    `json:"submission_id"`
	AssignedBy   string    `json:"assigned_by"`
	AssignedAt   time.Time `json:"assigned_at"`
}

type winnersResponse struct {
	Winners []winnerResponse `json:"winners"`
}
