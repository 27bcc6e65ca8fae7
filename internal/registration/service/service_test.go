package service

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	identitymetrics "tekfest/internal/identity/metrics"
	identitymodels "tekfest/internal/identity/models"
	identityservice "tekfest/internal/identity/service"
	identitystore "tekfest/internal/identity/store"
	"tekfest/internal/nik"
	regmetrics "tekfest/internal/registration/metrics"
	"tekfest/internal/registration/store"
	id "tekfest/pkg/domain"
	dErrors "tekfest/pkg/domain-errors"
	"tekfest/pkg/platform/audit"
	"tekfest/pkg/requestcontext"
)

var (
	testMetrics         = regmetrics.New()
	testIdentityMetrics = identitymetrics.New()
)

// capturingPublisher records emitted audit events for assertions.
type capturingPublisher struct {
	mu     sync.Mutex
	events []audit.Event
}

func (p *capturingPublisher) Emit(_ context.Context, event audit.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) EmitAsync(ctx context.Context, event audit.Event) {
	_ = p.Emit(ctx, event)
}

func (p *capturingPublisher) byAction(action audit.Action) []audit.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []audit.Event
	for _, e := range p.events {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

type ServiceSuite struct {
	suite.Suite
	teams    *store.InMemoryTeamStore
	accounts *identitystore.InMemoryAccountStore
	audit    *capturingPublisher
	service  *Service

	eventID  id.EventID
	leaderID id.AccountID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.teams = store.NewInMemoryTeamStore()
	s.accounts = identitystore.NewInMemoryAccountStore()
	s.audit = &capturingPublisher{}
	s.eventID = id.NewEventID()

	resolver := identityservice.New(s.accounts, s.teams, testIdentityMetrics, slog.Default())
	validator := nik.New(s.teams)
	s.service = New(s.teams, s.accounts, resolver, validator, s.audit, testMetrics, slog.Default())

	s.leaderID = s.seedAccount("leader@example.com", "3201012505990001")
}

func (s *ServiceSuite) seedAccount(email, accountNIK string) id.AccountID {
	account := &identitymodels.Account{
		ID:       id.NewAccountID(),
		Email:    email,
		Name:     "Account " + email,
		NIK:      accountNIK,
		Category: id.CategoryUniversity,
		Domicile: "Bandung",
	}
	s.Require().NoError(s.accounts.Create(context.Background(), account))
	return account.ID
}

func (s *ServiceSuite) validInput() SubmitTeamInput {
	s.seedAccount("one@example.com", "3201012505990002")
	s.seedAccount("two@example.com", "3201012505990003")
	return SubmitTeamInput{
		EventID:         s.eventID,
		Name:            "Garuda",
		LeaderAccountID: s.leaderID,
		Leader:          MemberInput{NIK: "3201012505990001", PaymentInitiated: true},
		Members: [2]MemberInput{
			{Email: "one@example.com", NIK: "3201012505990002", PaymentInitiated: true},
			{Email: "two@example.com", NIK: "3201012505990003", PaymentInitiated: true},
		},
		TwibbonLinks: []string{"https://instagram.com/p/abc"},
	}
}

func (s *ServiceSuite) TestSubmitTeamStoresResolvedProfiles() {
	team, err := s.service.SubmitTeam(context.Background(), s.validInput())
	s.Require().NoError(err)

	s.Equal(id.TeamSubmitted, team.Status)
	s.Len(team.Code, 8)
	s.Equal("Account leader@example.com", team.Leader.Name)
	s.Equal("one@example.com", team.Members[0].Email)
	s.Equal(id.CategoryUniversity, team.Members[1].Category)
	s.Equal(id.PaymentPending, team.Members[0].PaymentStatus)

	events := s.audit.byAction(audit.ActionTeamSubmitted)
	s.Require().Len(events, 1)
	s.Equal(team.ID.String(), events[0].Details["team_id"])
}

func (s *ServiceSuite) TestSubmitTeamStampsPinnedClock() {
	pinned := time.Date(2026, 4, 12, 9, 30, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), pinned)

	team, err := s.service.SubmitTeam(ctx, s.validInput())
	s.Require().NoError(err)

	s.True(team.CreatedAt.Equal(pinned))
	s.True(team.SubmittedAt.Equal(pinned), "stores fall back to the request clock, not the wall clock")
}

func (s *ServiceSuite) TestSubmitTeamIsIdempotentPerLeader() {
	in := s.validInput()

	first, err := s.service.SubmitTeam(context.Background(), in)
	s.Require().NoError(err)

	second, err := s.service.SubmitTeam(context.Background(), in)
	s.Require().NoError(err)

	s.Equal(first.ID, second.ID)
	s.Len(s.audit.byAction(audit.ActionTeamSubmitted), 1, "resubmission must not re-audit")
}

func (s *ServiceSuite) TestSubmitTeamRejectsMemberOnAnotherTeam() {
	_, err := s.service.SubmitTeam(context.Background(), s.validInput())
	s.Require().NoError(err)

	rivalLeader := s.seedAccount("rival@example.com", "3201012505990004")
	s.seedAccount("three@example.com", "3201012505990005")
	_, err = s.service.SubmitTeam(context.Background(), SubmitTeamInput{
		EventID:         s.eventID,
		Name:            "Rajawali",
		LeaderAccountID: rivalLeader,
		Leader:          MemberInput{NIK: "3201012505990004", PaymentInitiated: true},
		Members: [2]MemberInput{
			{Email: "three@example.com", NIK: "3201012505990005", PaymentInitiated: true},
			{Email: "one@example.com", NIK: "3201012505990002", PaymentInitiated: true},
		},
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeAlreadyRegistered))
}

func (s *ServiceSuite) TestSubmitTeamRejectsDuplicateNikWithinTeam() {
	in := s.validInput()
	in.Members[1].NIK = in.Members[0].NIK

	_, err := s.service.SubmitTeam(context.Background(), in)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeDuplicate))
}

func (s *ServiceSuite) TestSubmitTeamRequiresPaymentInitiation() {
	in := s.validInput()
	in.Members[1].PaymentInitiated = false

	_, err := s.service.SubmitTeam(context.Background(), in)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func (s *ServiceSuite) TestUpdatePaymentStatus() {
	team, err := s.service.SubmitTeam(context.Background(), s.validInput())
	s.Require().NoError(err)

	err = s.service.UpdatePaymentStatus(context.Background(), team.ID, 1, id.PaymentVerified)
	s.Require().NoError(err)

	stored, err := s.service.GetTeam(context.Background(), team.ID)
	s.Require().NoError(err)
	s.Equal(id.PaymentVerified, stored.Members[0].PaymentStatus)
	s.Equal(id.PaymentPending, stored.Leader.PaymentStatus, "other slots untouched")

	s.Len(s.audit.byAction(audit.ActionPaymentStatusChanged), 1)
}

func (s *ServiceSuite) TestValidateMemberNikRequiresResolvedEmail() {
	err := s.service.ValidateMemberNik(context.Background(), NikRequest{
		EventID:     s.eventID,
		MemberEmail: "ghost@example.com",
		NIK:         "3201012505990009",
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodePrerequisite))
}

func (s *ServiceSuite) TestValidateMemberNikUnchangedValueFastPath() {
	s.seedAccount("fast@example.com", "3201012505990006")

	err := s.service.ValidateMemberNik(context.Background(), NikRequest{
		EventID:     s.eventID,
		MemberEmail: "fast@example.com",
		NIK:         "3201012505990006",
	})
	s.NoError(err)
}

func (s *ServiceSuite) TestValidateMemberEmailDelegatesEligibilityRules() {
	_, err := s.service.ValidateMemberEmail(context.Background(), s.eventID, s.leaderID, "leader@example.com")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeSelfReference))
}
