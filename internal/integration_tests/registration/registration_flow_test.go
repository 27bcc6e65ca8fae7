package registration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	identitymetrics "tekfest/internal/identity/metrics"
	identitymodels "tekfest/internal/identity/models"
	identityservice "tekfest/internal/identity/service"
	identitystore "tekfest/internal/identity/store"
	"tekfest/internal/nik"
	registrationhandler "tekfest/internal/registration/handler"
	regmetrics "tekfest/internal/registration/metrics"
	registrationservice "tekfest/internal/registration/service"
	registrationstore "tekfest/internal/registration/store"
	id "tekfest/pkg/domain"
	"tekfest/pkg/platform/audit"
)

var (
	testRegMetrics      = regmetrics.New()
	testIdentityMetrics = identitymetrics.New()
)

type fixture struct {
	router   chi.Router
	accounts *identitystore.InMemoryAccountStore
	eventID  id.EventID
	leaderID id.AccountID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	accounts := identitystore.NewInMemoryAccountStore()
	teams := registrationstore.NewInMemoryTeamStore()
	resolver := identityservice.New(accounts, teams, testIdentityMetrics, logger)
	svc := registrationservice.New(teams, accounts, resolver, nik.New(teams),
		&audit.LogPublisher{Logger: logger}, testRegMetrics, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	registrationhandler.New(svc, logger).Register(r)

	f := &fixture{router: r, accounts: accounts, eventID: id.NewEventID()}
	f.leaderID = f.seedAccount(t, "leader@example.com", "3201012505990001")
	return f
}

func (f *fixture) seedAccount(t *testing.T, email, accountNIK string) id.AccountID {
	t.Helper()
	account := &identitymodels.Account{
		ID:       id.NewAccountID(),
		Email:    email,
		Name:     "Account " + email,
		NIK:      accountNIK,
		Category: id.CategoryUniversity,
		Domicile: "Bandung",
	}
	require.NoError(t, f.accounts.Create(context.Background(), account))
	return account.ID
}

func (f *fixture) post(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestRegistrationFlow_EndToEnd(t *testing.T) {
	f := newFixture(t)
	f.seedAccount(t, "one@example.com", "3201014505990002")
	f.seedAccount(t, "two@example.com", "3201014505990003")

	// The wizard resolves a member email and gets the profile back.
	w := f.post(t, "/registration/validate-email", map[string]string{
		"email":             "one@example.com",
		"leader_account_id": f.leaderID.String(),
		"event_id":          f.eventID.String(),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var verdict struct {
		Valid bool `json:"valid"`
		User  struct {
			NIK      string `json:"nik"`
			Domicile string `json:"domicile"`
		} `json:"user"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&verdict))
	assert.True(t, verdict.Valid)
	assert.Equal(t, "3201014505990002", verdict.User.NIK)

	// The pre-populated NIK passes validation.
	w = f.post(t, "/registration/validate-nik", map[string]any{
		"nik":                  "3201014505990002",
		"current_member_email": "one@example.com",
		"event_id":             f.eventID.String(),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Final submission.
	submit := map[string]any{
		"event_id":          f.eventID.String(),
		"name":              "Garuda",
		"leader_account_id": f.leaderID.String(),
		"leader":            map[string]any{"nik": "3201012505990001", "payment_initiated": true},
		"members": []map[string]any{
			{"email": "one@example.com", "nik": "3201014505990002", "payment_initiated": true},
			{"email": "two@example.com", "nik": "3201014505990003", "payment_initiated": true},
		},
	}
	w = f.post(t, "/registration/teams", submit)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var team struct {
		ID      string `json:"id"`
		Code    string `json:"code"`
		Status  string `json:"status"`
		Members []struct {
			Email string `json:"email"`
		} `json:"members"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&team))
	assert.Equal(t, "submitted", team.Status)
	assert.Len(t, team.Code, 8)
	require.Len(t, team.Members, 3)

	// Resubmission returns the same team instead of duplicating it.
	w = f.post(t, "/registration/teams", submit)
	require.Equal(t, http.StatusCreated, w.Code)
	var resubmitted struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resubmitted))
	assert.Equal(t, team.ID, resubmitted.ID)

	// The registered member is no longer eligible for other teams.
	w = f.post(t, "/registration/validate-email", map[string]string{
		"email":             "one@example.com",
		"leader_account_id": f.seedAccount(t, "rival@example.com", "3201012505990004").String(),
		"event_id":          f.eventID.String(),
	})
	require.Equal(t, http.StatusConflict, w.Code)

	var rejection struct {
		Valid bool   `json:"valid"`
		Code  string `json:"code"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&rejection))
	assert.False(t, rejection.Valid)
	assert.Equal(t, "already_registered", rejection.Code)
}

func TestRegistrationFlow_NikVerdicts(t *testing.T) {
	f := newFixture(t)
	f.seedAccount(t, "member@example.com", "3201014505990002")

	t.Run("unresolved email is a prerequisite failure", func(t *testing.T) {
		w := f.post(t, "/registration/validate-nik", map[string]any{
			"nik":                  "3201014505990002",
			"current_member_email": "ghost@example.com",
			"event_id":             f.eventID.String(),
		})
		require.Equal(t, http.StatusBadRequest, w.Code)

		var verdict struct {
			Code string `json:"code"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&verdict))
		assert.Equal(t, "prerequisite", verdict.Code)
	})

	t.Run("malformed NIK is rejected with invalid_format", func(t *testing.T) {
		w := f.post(t, "/registration/validate-nik", map[string]any{
			"nik":                  "3201013205990002", // day 32
			"current_member_email": "member@example.com",
			"event_id":             f.eventID.String(),
		})
		require.Equal(t, http.StatusBadRequest, w.Code)

		var verdict struct {
			Code string `json:"code"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&verdict))
		assert.Equal(t, "invalid_format", verdict.Code)
	})
}
