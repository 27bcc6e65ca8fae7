package wizard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	identitymodels "tekfest/internal/identity/models"
	id "tekfest/pkg/domain"
	dErrors "tekfest/pkg/domain-errors"
)

type fakeValidator struct {
	profile  *identitymodels.ProfileSnapshot
	emailErr error
	nikErr   error

	gotOtherNiks []string
}

func (f *fakeValidator) ValidateEmail(_ context.Context, _ id.EventID, _ id.AccountID, _ string) (*identitymodels.ProfileSnapshot, error) {
	return f.profile, f.emailErr
}

func (f *fakeValidator) ValidateNik(_ context.Context, _ id.EventID, _, _ string, otherNiks []string) error {
	f.gotOtherNiks = otherNiks
	return f.nikErr
}

// blockingValidator never answers before the deadline.
type blockingValidator struct{}

func (blockingValidator) ValidateEmail(ctx context.Context, _ id.EventID, _ id.AccountID, _ string) (*identitymodels.ProfileSnapshot, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingValidator) ValidateNik(ctx context.Context, _ id.EventID, _, _ string, _ []string) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestRunnerAppliesEmailResolution(t *testing.T) {
	w := New(id.NewEventID(), leaderProfile())
	validator := &fakeValidator{profile: memberProfile("m1@example.com", "3201016611000002")}
	runner := NewRunner(w, validator, id.NewAccountID(), time.Second)

	token, err := w.EditEmail(1, "m1@example.com")
	require.NoError(t, err)

	require.True(t, runner.ValidateEmail(context.Background(), token, "m1@example.com"))
	assert.Equal(t, FieldValid, w.EmailField(1).State)
	require.NotNil(t, w.Profile(1))
	assert.Equal(t, FieldValid, w.NikField(1).State, "profile NIK fast-paths")
}

func TestRunnerTimeoutLeavesFieldUnvalidated(t *testing.T) {
	w := New(id.NewEventID(), leaderProfile())
	runner := NewRunner(w, blockingValidator{}, id.NewAccountID(), 5*time.Millisecond)

	token, err := w.EditEmail(1, "slow@example.com")
	require.NoError(t, err)

	require.True(t, runner.ValidateEmail(context.Background(), token, "slow@example.com"))
	field := w.EmailField(1)
	assert.Equal(t, FieldUnvalidated, field.State, "a timeout is not a verdict")
	assert.True(t, dErrors.HasCode(field.Err, dErrors.CodeNetwork))
	assert.True(t, dErrors.Retryable(field.Err))
}

func TestRunnerPassesOtherTeamNiks(t *testing.T) {
	w := New(id.NewEventID(), leaderProfile())
	validator := &fakeValidator{}
	runner := NewRunner(w, validator, id.NewAccountID(), time.Second)

	token, err := w.EditNik(1, "3201016611000002")
	require.NoError(t, err)

	require.True(t, runner.ValidateNik(context.Background(), token, 1, "3201016611000002", "m1@example.com"))
	assert.Equal(t, FieldValid, w.NikField(1).State)
	assert.Equal(t, []string{leaderProfile().NIK}, validator.gotOtherNiks,
		"the leader's NIK feeds the duplicate check for member slots")
}

func TestClientMapsServerVerdicts(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/registration/validate-email", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"valid":false,"code":"no_account","message":"no account for that email"}`))
	})
	mux.HandleFunc("/api/v1/registration/validate-nik", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"valid":true}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	ctx := context.Background()

	_, err := client.ValidateEmail(ctx, id.NewEventID(), id.NewAccountID(), "ghost@example.com")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNoAccount))

	assert.NoError(t, client.ValidateNik(ctx, id.NewEventID(), "m1@example.com", "3201016611000002", nil))
}

func TestClientTreatsServerFailureAsNetwork(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	_, err := client.ValidateEmail(context.Background(), id.NewEventID(), id.NewAccountID(), "m1@example.com")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNetwork))
	assert.True(t, dErrors.Retryable(err))
}
