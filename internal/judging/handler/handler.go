// Package handler wires the judging HTTP endpoints: submissions, evaluations,
// the leaderboard, pending submissions, and winner assignment.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tekfest/internal/judging/leaderboard"
	"tekfest/internal/judging/service"
	"tekfest/internal/judging/winner"
	id "tekfest/pkg/domain"
	dErrors "tekfest/pkg/domain-errors"
	"tekfest/pkg/platform/httputil"
)

type Handler struct {
	judging     *service.JudgingService
	leaderboard *leaderboard.Service
	winners     *winner.Service
	logger      *slog.Logger
}

func New(judging *service.JudgingService, lb *leaderboard.Service, winners *winner.Service, logger *slog.Logger) *Handler {
	return &Handler{judging: judging, leaderboard: lb, winners: winners, logger: logger}
}

// Register mounts judging endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/judging/submissions", h.HandleCreateSubmission)
	r.Get("/judging/submissions/{submissionID}", h.HandleGetSubmission)
	r.Post("/judging/submissions/{submissionID}/evaluations", h.HandleRecordEvaluation)
	r.Post("/judging/submissions/{submissionID}/winner", h.HandleSetWinner)
	r.Get("/judging/leaderboard", h.HandleLeaderboard)
	r.Get("/judging/pending", h.HandlePending)
	r.Get("/judging/winners", h.HandleWinners)
}

// HandleCreateSubmission handles POST /judging/submissions.
func (h *Handler) HandleCreateSubmission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[createSubmissionRequest](w, r, h.logger)
	if !ok {
		return
	}
	submission, err := req.parse()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	stored, err := h.judging.CreateSubmission(ctx, submission)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "submission created",
		"submission_id", stored.ID, "event_id", stored.EventID, "team_id", stored.TeamID)
	httputil.WriteJSON(w, http.StatusCreated, fromSubmission(stored))
}

// HandleGetSubmission handles GET /judging/submissions/{submissionID}.
func (h *Handler) HandleGetSubmission(w http.ResponseWriter, r *http.Request) {
	submissionID, err := id.ParseSubmissionID(chi.URLParam(r, "submissionID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "submission id is not a valid UUID"))
		return
	}

	submission, err := h.judging.GetSubmission(r.Context(), submissionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromSubmission(submission))
}

// HandleRecordEvaluation handles POST /judging/submissions/{id}/evaluations.
func (h *Handler) HandleRecordEvaluation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	submissionID, err := id.ParseSubmissionID(chi.URLParam(r, "submissionID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "submission id is not a valid UUID"))
		return
	}

	req, ok := httputil.Decode[recordEvaluationRequest](w, r, h.logger)
	if !ok {
		return
	}
	judgeID, err := id.ParseJudgeID(req.JudgeID)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "judge_id is not a valid UUID"))
		return
	}

	evaluation, err := h.judging.RecordEvaluation(ctx, submissionID, judgeID, req.Scores, req.Comment)
	if err != nil {
		h.logger.ErrorContext(ctx, "evaluation rejected",
			"submission_id", submissionID, "judge_id", judgeID, "error", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, fromEvaluation(evaluation))
}

// HandleSetWinner handles POST /judging/submissions/{id}/winner. The body
// carries {category, value}: value=true assigns, value=false clears.
func (h *Handler) HandleSetWinner(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	submissionID, err := id.ParseSubmissionID(chi.URLParam(r, "submissionID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "submission id is not a valid UUID"))
		return
	}

	req, ok := httputil.Decode[setWinnerRequest](w, r, h.logger)
	if !ok {
		return
	}
	category, err := id.ParseWinnerCategory(req.Category)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "unknown winner category"))
		return
	}

	if err := h.winners.SetWinner(ctx, submissionID, category, req.Value); err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "winner flag updated",
		"submission_id", submissionID, "category", category, "value", req.Value)
	w.WriteHeader(http.StatusNoContent)
}

// HandleLeaderboard handles GET /judging/leaderboard?event_id=.
func (h *Handler) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	eventID, err := id.ParseEventID(r.URL.Query().Get("event_id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "event_id is not a valid UUID"))
		return
	}

	entries, err := h.leaderboard.Leaderboard(r.Context(), eventID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, leaderboardResponse{Entries: entries})
}

// HandlePending handles GET /judging/pending?event_id=.
func (h *Handler) HandlePending(w http.ResponseWriter, r *http.Request) {
	eventID, err := id.ParseEventID(r.URL.Query().Get("event_id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "event_id is not a valid UUID"))
		return
	}

	pending, err := h.leaderboard.Pending(r.Context(), eventID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	resp := pendingResponse{Submissions: []submissionResponse{}}
	for _, submission := range pending {
		resp.Submissions = append(resp.Submissions, fromSubmission(submission))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleWinners handles GET /judging/winners?event_id=.
func (h *Handler) HandleWinners(w http.ResponseWriter, r *http.Request) {
	eventID, err := id.ParseEventID(r.URL.Query().Get("event_id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "event_id is not a valid UUID"))
		return
	}

	assignments, err := h.winners.Winners(r.Context(), eventID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	resp := winnersResponse{Winners: []winnerResponse{}}
	for _, a := range assignments {
		resp.Winners = append(resp.Winners, winnerResponse{
			Category:     a.Category.String(),
			SubmissionID: a.SubmissionID.String(),
			AssignedBy:   a.AssignedBy.String(),
			AssignedAt:   a.AssignedAt,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
