// Package service orchestrates team registration: the per-field validation
// endpoints the wizard calls while a draft is being filled, the final team
// submission, and admin payment verification.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	identitymodels "tekfest/internal/identity/models"
	identityservice "tekfest/internal/identity/service"
	identitystore "tekfest/internal/identity/store"
	"tekfest/internal/nik"
	regmetrics "tekfest/internal/registration/metrics"
	"tekfest/internal/registration/models"
	"tekfest/internal/registration/store"
	id "tekfest/pkg/domain"
	dErrors "tekfest/pkg/domain-errors"
	"tekfest/pkg/platform/audit"
	"tekfest/pkg/platform/sentinel"
	"tekfest/pkg/requestcontext"
)

type Service struct {
	teams    store.TeamStore
	accounts identitystore.AccountStore
	resolver *identityservice.Resolver
	niks     *nik.Validator
	audit    audit.Publisher
	metrics  *regmetrics.Metrics
	logger   *slog.Logger
}

func New(
	teams store.TeamStore,
	accounts identitystore.AccountStore,
	resolver *identityservice.Resolver,
	niks *nik.Validator,
	publisher audit.Publisher,
	metrics *regmetrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		teams:    teams,
		accounts: accounts,
		resolver: resolver,
		niks:     niks,
		audit:    publisher,
		metrics:  metrics,
		logger:   logger,
	}
}

// ValidateMemberEmail resolves a candidate member's email for the wizard. The
// returned snapshot pre-populates the slot's NIK, category, and domicile.
func (s *Service) ValidateMemberEmail(ctx context.Context, eventID id.EventID, leaderID id.AccountID, email string) (*identitymodels.ProfileSnapshot, error) {
	snapshot, err := s.resolver.Resolve(ctx, email, leaderID, eventID)
	if err != nil {
		s.metrics.EmailValidations.WithLabelValues(outcomeLabel(err)).Inc()
		return nil, err
	}
	s.metrics.EmailValidations.WithLabelValues("ok").Inc()
	return snapshot, nil
}

// NikRequest is one NIK validation attempt from the wizard. MemberEmail ties
// the attempt to a resolved slot; an unresolvable email is a prerequisite
// failure, not a NIK failure.
type NikRequest struct {
	EventID       id.EventID
	TeamID        id.TeamID
	MemberEmail   string
	NIK           string
	OtherTeamNiks []string
}

// ValidateMemberNik checks a slot's NIK against format, plausibility, and
// uniqueness. The email-resolved prerequisite is re-established server-side
// rather than trusted from the client.
func (s *Service) ValidateMemberNik(ctx context.Context, req NikRequest) error {
	account, err := s.accounts.FindByEmail(ctx, req.MemberEmail)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.NikValidations.WithLabelValues("prerequisite").Inc()
			return dErrors.New(dErrors.CodePrerequisite, "resolve the member's email before validating the NIK")
		}
		s.metrics.NikValidations.WithLabelValues("error").Inc()
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up account")
	}

	err = s.niks.Validate(ctx, nik.Input{
		NIK:             req.NIK,
		OriginalNIK:     account.NIK,
		OtherNiksInTeam: req.OtherTeamNiks,
		EventID:         req.EventID,
		ExcludeTeamID:   req.TeamID,
		EmailResolved:   true,
	})
	if err != nil {
		s.metrics.NikValidations.WithLabelValues(outcomeLabel(err)).Inc()
		return err
	}
	s.metrics.NikValidations.WithLabelValues("ok").Inc()
	return nil
}

// MemberInput is one slot of a team submission. Name, category, and domicile
// come from the resolved account, not from the client.
type MemberInput struct {
	Email            string
	NIK              string
	PaymentInitiated bool
}

// SubmitTeamInput is the final wizard payload.
type SubmitTeamInput struct {
	EventID         id.EventID
	Name            string
	LeaderAccountID id.AccountID
	Leader          MemberInput
	Members         [2]MemberInput
	TwibbonLinks    []string
}

// SubmitTeam finalizes a team. Every slot is re-validated server-side before
// anything is stored; client-side wizard state is advisory only. Resubmission
// by the same leader returns the already-stored team unchanged.
func (s *Service) SubmitTeam(ctx context.Context, in SubmitTeamInput) (*models.Team, error) {
	if existing, err := s.teams.FindByLeader(ctx, in.EventID, in.LeaderAccountID); err == nil {
		s.metrics.TeamResubmissions.Inc()
		s.logger.InfoContext(ctx, "team resubmission ignored",
			"team_id", existing.ID, "event_id", in.EventID)
		return existing, nil
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check for existing team")
	}

	team, err := s.buildTeam(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := team.ReadyForSubmission(); err != nil {
		return nil, err
	}

	stored, created, err := s.teams.Submit(ctx, team)
	if err != nil {
		if errors.Is(err, sentinel.ErrAlreadyExists) {
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, "a conflicting team was submitted concurrently")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store team")
	}

	if created {
		s.metrics.TeamsSubmitted.Inc()
		s.audit.EmitAsync(ctx, audit.Event{
			Action:     audit.ActionTeamSubmitted,
			EventID:    stored.EventID,
			ActorID:    stored.LeaderAccountID,
			OccurredAt: requestcontext.Now(ctx).UTC(),
			Details: map[string]string{
				"team_id":   stored.ID.String(),
				"team_code": stored.Code,
			},
		})
		s.logger.InfoContext(ctx, "team submitted",
			"team_id", stored.ID, "event_id", stored.EventID, "team_code", stored.Code)
	} else {
		s.metrics.TeamResubmissions.Inc()
	}
	return stored, nil
}

// buildTeam re-resolves every slot and assembles the aggregate. Validation
// failures are attributed to the failing slot.
func (s *Service) buildTeam(ctx context.Context, in SubmitTeamInput) (*models.Team, error) {
	if in.Name == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "team name cannot be empty")
	}

	leaderAccount, err := s.accounts.FindByID(ctx, in.LeaderAccountID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNoAccount, "leader account does not exist")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up leader account")
	}

	team := &models.Team{
		ID:              id.NewTeamID(),
		EventID:         in.EventID,
		Name:            in.Name,
		Code:            models.NewTeamCode(),
		LeaderAccountID: in.LeaderAccountID,
		Status:          id.TeamDraft,
		TwibbonLinks:    in.TwibbonLinks,
		CreatedAt:       requestcontext.Now(ctx).UTC(),
	}
	team.Leader = models.Member{
		Slot:             models.SlotLeader,
		AccountID:        leaderAccount.ID,
		Name:             leaderAccount.Name,
		Email:            leaderAccount.Email,
		NIK:              in.Leader.NIK,
		OriginalNIK:      leaderAccount.NIK,
		Category:         leaderAccount.Category,
		Domicile:         leaderAccount.Domicile,
		PaymentStatus:    id.PaymentPending,
		PaymentInitiated: in.Leader.PaymentInitiated,
	}

	for i, input := range in.Members {
		snapshot, err := s.resolver.Resolve(ctx, input.Email, in.LeaderAccountID, in.EventID)
		if err != nil {
			return nil, wrapSlotError(err, i+1)
		}
		team.Members[i] = models.Member{
			Slot:             i + 1,
			AccountID:        snapshot.AccountID,
			Name:             snapshot.Name,
			Email:            snapshot.Email,
			NIK:              input.NIK,
			OriginalNIK:      snapshot.NIK,
			Category:         snapshot.Category,
			Domicile:         snapshot.Domicile,
			PaymentStatus:    id.PaymentPending,
			PaymentInitiated: input.PaymentInitiated,
		}
	}

	niks := team.Niks()
	for _, member := range team.AllMembers() {
		others := make([]string, 0, 2)
		for i, n := range niks {
			if i != member.Slot {
				others = append(others, n)
			}
		}
		err := s.niks.Validate(ctx, nik.Input{
			NIK:             member.NIK,
			OriginalNIK:     member.OriginalNIK,
			OtherNiksInTeam: others,
			EventID:         in.EventID,
			EmailResolved:   true,
		})
		if err != nil {
			return nil, wrapSlotError(err, member.Slot)
		}
	}
	return team, nil
}

// UpdatePaymentStatus records an admin's verification decision for one member
// slot. It is the only mutation allowed on a submitted team.
func (s *Service) UpdatePaymentStatus(ctx context.Context, teamID id.TeamID, slot int, status id.PaymentStatus) error {
	if !status.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "unknown payment status")
	}

	if err := s.teams.UpdateMemberPayment(ctx, teamID, slot, status); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "team or member slot not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update payment status")
	}

	s.metrics.PaymentTransitions.WithLabelValues(status.String()).Inc()
	team, err := s.teams.FindByID(ctx, teamID)
	if err != nil {
		s.logger.WarnContext(ctx, "load team for payment audit", "team_id", teamID, "error", err)
		return nil
	}
	s.audit.EmitAsync(ctx, audit.Event{
		Action:     audit.ActionPaymentStatusChanged,
		EventID:    team.EventID,
		ActorID:    requestcontext.ActorID(ctx),
		OccurredAt: requestcontext.Now(ctx).UTC(),
		Details: map[string]string{
			"team_id": teamID.String(),
			"slot":    strconv.Itoa(slot),
			"status":  status.String(),
		},
	})
	return nil
}

// GetTeam returns a stored team.
func (s *Service) GetTeam(ctx context.Context, teamID id.TeamID) (*models.Team, error) {
	team, err := s.teams.FindByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "team not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load team")
	}
	return team, nil
}

func wrapSlotError(err error, slot int) error {
	return dErrors.Wrap(err, dErrors.CodeOf(err), "member slot "+strconv.Itoa(slot)+" failed validation")
}

func outcomeLabel(err error) string {
	switch code := dErrors.CodeOf(err); code {
	case dErrors.CodeInternal, dErrors.CodeUnavailable:
		return "error"
	default:
		return string(code)
	}
}

