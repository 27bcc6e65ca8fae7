package rubric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "tekfest/pkg/domain"
	dErrors "tekfest/pkg/domain-errors"
)

func TestValidate(t *testing.T) {
	t.Run("shipped rubrics are valid", func(t *testing.T) {
		assert.NoError(t, HackfestV1().Validate())
		assert.NoError(t, AIFestV1().Validate())
	})

	t.Run("weights must sum to one", func(t *testing.T) {
		r := Rubric{
			Version: "broken",
			Criteria: []Criterion{
				{Key: "a", Weight: 0.5},
				{Key: "b", Weight: 0.4},
			},
		}
		err := r.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sum")
	})

	t.Run("duplicate keys rejected", func(t *testing.T) {
		r := Rubric{
			Version: "broken",
			Criteria: []Criterion{
				{Key: "a", Weight: 0.5},
				{Key: "a", Weight: 0.5},
			},
		}
		assert.Error(t, r.Validate())
	})

	t.Run("category sources must reference known criteria", func(t *testing.T) {
		r := Rubric{
			Version:  "broken",
			Criteria: []Criterion{{Key: "a", Weight: 1.0}},
			CategorySources: map[id.WinnerCategory][]string{
				id.WinnerPresentation: {"missing"},
			},
		}
		assert.Error(t, r.Validate())
	})

	t.Run("empty rubric rejected", func(t *testing.T) {
		assert.Error(t, Rubric{Version: "empty"}.Validate())
	})
}

func TestRegistry(t *testing.T) {
	reg := Builtin()

	t.Run("resolves shipped versions", func(t *testing.T) {
		r, err := reg.Get(VersionHackfestV1)
		require.NoError(t, err)
		assert.Len(t, r.Criteria, 6)

		r, err = reg.Get(VersionAIFestV1)
		require.NoError(t, err)
		assert.Len(t, r.Criteria, 5)
	})

	t.Run("unknown version is not found", func(t *testing.T) {
		_, err := reg.Get("hackfest-v99")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("duplicate versions rejected at construction", func(t *testing.T) {
		_, err := NewRegistry(HackfestV1(), HackfestV1())
		assert.Error(t, err)
	})
}
