package nik

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "tekfest/pkg/domain"
	dErrors "tekfest/pkg/domain-errors"
)

// fakeUniqueness reports a fixed set of NIKs as taken event-wide.
type fakeUniqueness struct {
	taken map[string]bool
	calls int
}

func (f *fakeUniqueness) NikInUse(_ context.Context, _ id.EventID, nik string, _ id.TeamID) (bool, error) {
	f.calls++
	return f.taken[nik], nil
}

// buildNIK assembles region + DDMMYY + serial into a 16-digit NIK.
func buildNIK(dd, mm string) string {
	return "320101" + dd + mm + "99" + "0001"
}

func TestCheckFormat(t *testing.T) {
	t.Run("rejects anything but exactly 16 digits", func(t *testing.T) {
		for _, bad := range []string{
			"",
			"12345",
			"12345678901234567",  // 17 digits
			"3201012505x90001",   // letter
			"32010125 5990001",   // space
			"320101250599000",    // 15 digits
		} {
			err := CheckFormat(bad)
			require.Error(t, err, "input %q", bad)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidFormat), "input %q", bad)
		}
	})

	t.Run("accepts a plausible male-encoded date", func(t *testing.T) {
		assert.NoError(t, CheckFormat(buildNIK("25", "05")))
	})

	t.Run("day 41 in March decodes to day 1 via the female offset", func(t *testing.T) {
		assert.NoError(t, CheckFormat(buildNIK("41", "03")))
	})

	t.Run("day 32 in April exceeds the month's days", func(t *testing.T) {
		err := CheckFormat(buildNIK("32", "04"))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidFormat))
	})

	t.Run("month 13 is rejected", func(t *testing.T) {
		err := CheckFormat(buildNIK("15", "13"))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidFormat))
	})

	t.Run("month 00 is rejected", func(t *testing.T) {
		assert.Error(t, CheckFormat(buildNIK("15", "00")))
	})

	t.Run("day 00 is rejected", func(t *testing.T) {
		assert.Error(t, CheckFormat(buildNIK("00", "05")))
	})

	t.Run("February 29 is rejected by the non-leap reference table", func(t *testing.T) {
		assert.Error(t, CheckFormat(buildNIK("29", "02")))
		assert.NoError(t, CheckFormat(buildNIK("28", "02")))
	})

	t.Run("female offset applies to the month's last day", func(t *testing.T) {
		// 40+30=70 for a 30-day month.
		assert.NoError(t, CheckFormat(buildNIK("70", "04")))
		assert.Error(t, CheckFormat(buildNIK("71", "04")))
	})
}

func TestValidate(t *testing.T) {
	eventID := id.NewEventID()

	valid := buildNIK("25", "05")

	t.Run("email resolution is a precondition", func(t *testing.T) {
		v := New(&fakeUniqueness{})
		err := v.Validate(context.Background(), Input{
			NIK:           valid,
			EventID:       eventID,
			EmailResolved: false,
		})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodePrerequisite))
	})

	t.Run("fast path skips uniqueness when NIK matches the profile", func(t *testing.T) {
		unique := &fakeUniqueness{taken: map[string]bool{valid: true}}
		v := New(unique)
		err := v.Validate(context.Background(), Input{
			NIK:           valid,
			OriginalNIK:   valid,
			EventID:       eventID,
			EmailResolved: true,
		})
		assert.NoError(t, err)
		assert.Zero(t, unique.calls, "previously vetted NIK must not be re-checked")
	})

	t.Run("three distinct NIKs pass the team-level check", func(t *testing.T) {
		v := New(&fakeUniqueness{})
		err := v.Validate(context.Background(), Input{
			NIK:             valid,
			OtherNiksInTeam: []string{buildNIK("12", "01"), buildNIK("13", "02")},
			EventID:         eventID,
			EmailResolved:   true,
		})
		assert.NoError(t, err)
	})

	t.Run("duplicate within the team fails", func(t *testing.T) {
		v := New(&fakeUniqueness{})
		err := v.Validate(context.Background(), Input{
			NIK:             valid,
			OtherNiksInTeam: []string{buildNIK("12", "01"), valid},
			EventID:         eventID,
			EmailResolved:   true,
		})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeDuplicate))
	})

	t.Run("NIK held by another team fails", func(t *testing.T) {
		v := New(&fakeUniqueness{taken: map[string]bool{valid: true}})
		err := v.Validate(context.Background(), Input{
			NIK:           valid,
			EventID:       eventID,
			EmailResolved: true,
		})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeDuplicate))
	})

	t.Run("format failure precedes uniqueness", func(t *testing.T) {
		unique := &fakeUniqueness{}
		v := New(unique)
		err := v.Validate(context.Background(), Input{
			NIK:           "not-a-nik",
			EventID:       eventID,
			EmailResolved: true,
		})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidFormat))
		assert.Zero(t, unique.calls)
	})
}
