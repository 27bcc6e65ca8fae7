package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	identitymodels "tekfest/internal/identity/models"
	id "tekfest/pkg/domain"
	dErrors "tekfest/pkg/domain-errors"
)

func leaderProfile() identitymodels.ProfileSnapshot {
	return identitymodels.ProfileSnapshot{
		AccountID: id.NewAccountID(),
		Name:      "Leader",
		Email:     "leader@example.com",
		NIK:       "3201012505990001",
		Category:  id.CategoryUniversity,
		Domicile:  "Bandung",
	}
}

func memberProfile(email, nik string) *identitymodels.ProfileSnapshot {
	return &identitymodels.ProfileSnapshot{
		AccountID: id.NewAccountID(),
		Name:      "Member",
		Email:     email,
		NIK:       nik,
		Category:  id.CategoryUniversity,
		Domicile:  "Jakarta",
	}
}

func TestNewFastPathsLeaderNik(t *testing.T) {
	w := New(id.NewEventID(), leaderProfile())

	assert.Equal(t, FieldValid, w.EmailField(0).State)
	assert.Equal(t, FieldValid, w.NikField(0).State, "well-formed profile NIK needs no round-trip")

	badNik := leaderProfile()
	badNik.NIK = "123"
	w = New(id.NewEventID(), badNik)
	assert.Equal(t, FieldUnvalidated, w.NikField(0).State)
}

func TestApplyEmailResultPopulatesSlot(t *testing.T) {
	w := New(id.NewEventID(), leaderProfile())

	token, err := w.EditEmail(1, "member@example.com")
	require.NoError(t, err)

	applied := w.ApplyEmailResult(token, memberProfile("member@example.com", "3201014505990002"), nil)
	require.True(t, applied)

	assert.Equal(t, FieldValid, w.EmailField(1).State)
	assert.Equal(t, "3201014505990002", w.NikField(1).Value, "NIK auto-populated from profile")
	assert.Equal(t, FieldValid, w.NikField(1).State)
	require.NotNil(t, w.Profile(1))
	assert.Equal(t, "Jakarta", w.Profile(1).Domicile)
}

func TestStaleEmailResultIsDiscarded(t *testing.T) {
	w := New(id.NewEventID(), leaderProfile())

	oldToken, err := w.EditEmail(1, "first@example.com")
	require.NoError(t, err)
	newToken, err := w.EditEmail(1, "second@example.com")
	require.NoError(t, err)

	// The response for the first value arrives after the second edit.
	applied := w.ApplyEmailResult(oldToken, memberProfile("first@example.com", "3201014505990002"), nil)
	assert.False(t, applied)
	assert.Equal(t, FieldUnvalidated, w.EmailField(1).State)
	assert.Nil(t, w.Profile(1))

	applied = w.ApplyEmailResult(newToken, memberProfile("second@example.com", "3201014505990003"), nil)
	assert.True(t, applied)
	assert.Equal(t, "second@example.com", w.Profile(1).Email)
}

func TestEditingEmailStalesValidatedNik(t *testing.T) {
	w := New(id.NewEventID(), leaderProfile())

	token, _ := w.EditEmail(1, "member@example.com")
	w.ApplyEmailResult(token, memberProfile("member@example.com", "3201014505990002"), nil)
	require.Equal(t, FieldValid, w.NikField(1).State)

	nikToken, err := w.EditNik(1, "3201012505990009")
	require.NoError(t, err)

	// Email changes mid-flight: the pending NIK verdict belongs to the old
	// identity and must be dropped, and the flag must leave valid.
	_, err = w.EditEmail(1, "other@example.com")
	require.NoError(t, err)

	assert.False(t, w.ApplyNikResult(nikToken, nil))
	assert.NotEqual(t, FieldValid, w.NikField(1).State)
}

func TestRetryableFailureIsNotAVerdict(t *testing.T) {
	w := New(id.NewEventID(), leaderProfile())

	token, _ := w.EditEmail(1, "member@example.com")
	applied := w.ApplyEmailResult(token, nil, dErrors.New(dErrors.CodeNetwork, "timeout"))
	require.True(t, applied)

	assert.Equal(t, FieldUnvalidated, w.EmailField(1).State, "network failure must not mark the value invalid")
	assert.Error(t, w.EmailField(1).Err)

	applied = w.ApplyEmailResult(token, memberProfile("member@example.com", "3201014505990002"), nil)
	assert.True(t, applied, "same token may be retried after a transient failure")
	assert.Equal(t, FieldValid, w.EmailField(1).State)
}

func TestValidationFailureMarksInvalid(t *testing.T) {
	w := New(id.NewEventID(), leaderProfile())

	token, _ := w.EditEmail(1, "ghost@example.com")
	w.ApplyEmailResult(token, nil, dErrors.New(dErrors.CodeNoAccount, "no account"))

	assert.Equal(t, FieldInvalid, w.EmailField(1).State)
	assert.True(t, dErrors.HasCode(w.EmailField(1).Err, dErrors.CodeNoAccount))
}

func TestForwardGatingAndBack(t *testing.T) {
	w := New(id.NewEventID(), leaderProfile())

	require.Error(t, w.Next(), "team name gate")
	w.SetTeamName("Garuda")
	require.NoError(t, w.Next())
	assert.Equal(t, StepLeader, w.Current())

	require.NoError(t, w.Next(), "leader NIK fast-pathed")
	assert.Equal(t, StepMember1, w.Current())

	require.Error(t, w.Next(), "member 1 unvalidated")

	token, _ := w.EditEmail(1, "one@example.com")
	w.ApplyEmailResult(token, memberProfile("one@example.com", "3201014505990002"), nil)
	require.NoError(t, w.Next())

	token, _ = w.EditEmail(2, "two@example.com")
	w.ApplyEmailResult(token, memberProfile("two@example.com", "3201014505990003"), nil)
	require.NoError(t, w.Next())
	assert.Equal(t, StepTwibbon, w.Current())

	require.NoError(t, w.Next(), "twibbon step is optional")
	assert.Equal(t, StepPayment, w.Current())

	require.Error(t, w.Next(), "payment acknowledgments missing")
	for slot := 0; slot < 3; slot++ {
		require.NoError(t, w.InitiatePayment(slot))
	}
	require.NoError(t, w.Next())
	assert.Equal(t, StepSummary, w.Current())

	w.Back()
	assert.Equal(t, StepPayment, w.Current())
	assert.Equal(t, "Garuda", func() string { in, _ := w.SubmitInput(); return in.Name }(),
		"back navigation keeps entered data")
}

func TestSubmitInputCollectsDraft(t *testing.T) {
	w := New(id.NewEventID(), leaderProfile())
	w.SetTeamName("Garuda")
	w.SetTwibbonLinks([]string{"https://instagram.com/p/abc"})

	token, _ := w.EditEmail(1, "one@example.com")
	w.ApplyEmailResult(token, memberProfile("one@example.com", "3201014505990002"), nil)
	token, _ = w.EditEmail(2, "two@example.com")
	w.ApplyEmailResult(token, memberProfile("two@example.com", "3201014505990003"), nil)
	for slot := 0; slot < 3; slot++ {
		require.NoError(t, w.InitiatePayment(slot))
	}

	in, err := w.SubmitInput()
	require.NoError(t, err)
	assert.Equal(t, "Garuda", in.Name)
	assert.Equal(t, "3201012505990001", in.Leader.NIK)
	assert.Equal(t, "one@example.com", in.Members[0].Email)
	assert.Equal(t, "3201014505990003", in.Members[1].NIK)
	assert.Len(t, in.TwibbonLinks, 1)
}

func TestSubmitInputFailsWhenAnyGateFails(t *testing.T) {
	w := New(id.NewEventID(), leaderProfile())
	w.SetTeamName("Garuda")

	_, err := w.SubmitInput()
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestLeaderEmailIsNotEditable(t *testing.T) {
	w := New(id.NewEventID(), leaderProfile())
	_, err := w.EditEmail(0, "other@example.com")
	assert.Error(t, err)
}
