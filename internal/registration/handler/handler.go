// Package handler wires the registration HTTP endpoints: the per-field
// validation calls the wizard makes while a draft is open, team submission,
// and admin payment verification.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	identitymodels "tekfest/internal/identity/models"
	"tekfest/internal/registration/models"
	"tekfest/internal/registration/service"
	id "tekfest/pkg/domain"
	dErrors "tekfest/pkg/domain-errors"
	"tekfest/pkg/platform/httputil"
)

// Service defines the registration operations the handler depends on.
type Service interface {
	ValidateMemberEmail(ctx context.Context, eventID id.EventID, leaderID id.AccountID, email string) (*identitymodels.ProfileSnapshot, error)
	ValidateMemberNik(ctx context.Context, req service.NikRequest) error
	SubmitTeam(ctx context.Context, in service.SubmitTeamInput) (*models.Team, error)
	UpdatePaymentStatus(ctx context.Context, teamID id.TeamID, slot int, status id.PaymentStatus) error
	GetTeam(ctx context.Context, teamID id.TeamID) (*models.Team, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts registration endpoints on the router. validationMW wraps
// only the per-field validation endpoints, which take the wizard's
// per-keystroke traffic.
func (h *Handler) Register(r chi.Router, validationMW ...func(http.Handler) http.Handler) {
	r.With(validationMW...).Post("/registration/validate-email", h.HandleValidateEmail)
	r.With(validationMW...).Post("/registration/validate-nik", h.HandleValidateNik)
	r.Post("/registration/teams", h.HandleSubmitTeam)
	r.Get("/registration/teams/{teamID}", h.HandleGetTeam)
	r.Patch("/registration/teams/{teamID}/members/{slot}/payment", h.HandleUpdatePayment)
}

// HandleValidateEmail handles POST /registration/validate-email. The response
// always carries the valid flag; rejections add a stable code the wizard
// branches on.
func (h *Handler) HandleValidateEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[validateEmailRequest](w, r, h.logger)
	if !ok {
		return
	}
	eventID, leaderID, err := req.parse()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	snapshot, err := h.service.ValidateMemberEmail(ctx, eventID, leaderID, req.Email)
	if err != nil {
		writeVerdict(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, validateResponse{Valid: true, User: snapshot})
}

// HandleValidateNik handles POST /registration/validate-nik.
func (h *Handler) HandleValidateNik(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[validateNikRequest](w, r, h.logger)
	if !ok {
		return
	}
	nikReq, err := req.parse()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.ValidateMemberNik(ctx, nikReq); err != nil {
		writeVerdict(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, validateResponse{Valid: true})
}

// HandleSubmitTeam handles POST /registration/teams.
func (h *Handler) HandleSubmitTeam(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[submitTeamRequest](w, r, h.logger)
	if !ok {
		return
	}
	in, err := req.parse()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	team, err := h.service.SubmitTeam(ctx, in)
	if err != nil {
		h.logger.ErrorContext(ctx, "team submission failed",
			"event_id", req.EventID, "error", err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "team submitted",
		"team_id", team.ID, "event_id", team.EventID)
	httputil.WriteJSON(w, http.StatusCreated, fromTeam(team))
}

// HandleGetTeam handles GET /registration/teams/{teamID}.
func (h *Handler) HandleGetTeam(w http.ResponseWriter, r *http.Request) {
	teamID, err := id.ParseTeamID(chi.URLParam(r, "teamID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "team id is not a valid UUID"))
		return
	}

	team, err := h.service.GetTeam(r.Context(), teamID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromTeam(team))
}

// HandleUpdatePayment handles PATCH /registration/teams/{teamID}/members/{slot}/payment.
func (h *Handler) HandleUpdatePayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	teamID, err := id.ParseTeamID(chi.URLParam(r, "teamID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "team id is not a valid UUID"))
		return
	}
	slot, err := strconv.Atoi(chi.URLParam(r, "slot"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "slot must be a number"))
		return
	}

	req, ok := httputil.Decode[updatePaymentRequest](w, r, h.logger)
	if !ok {
		return
	}
	status, err := id.ParsePaymentStatus(req.Status)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "unknown payment status"))
		return
	}

	if err := h.service.UpdatePaymentStatus(ctx, teamID, slot, status); err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "payment status updated",
		"team_id", teamID, "slot", slot, "status", status)
	w.WriteHeader(http.StatusNoContent)
}

// writeVerdict reports a validation outcome in the wizard's response shape.
// The status still follows the error code so plain HTTP clients behave.
func writeVerdict(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	resp := validateResponse{Valid: false, Code: string(code)}
	var de *dErrors.Error
	if errors.As(err, &de) && code != dErrors.CodeInternal {
		resp.Message = de.Message
	}
	httputil.WriteJSON(w, dErrors.ToHTTPStatus(code), resp)
}
