package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "skillmint/pkg/domain-errors"
)

func TestParseHandles(t *testing.T) {
	t.Run("valid decimal handle", func(t *testing.T) {
		id, err := ParseChallengeID("42")
		require.NoError(t, err)
		assert.Equal(t, ChallengeID(42), id)
	})

	t.Run("zero parses but reports IsZero", func(t *testing.T) {
		id, err := ParseProofID("0")
		require.NoError(t, err)
		assert.True(t, id.IsZero())
	})

	t.Run("empty is invalid input", func(t *testing.T) {
		_, err := ParseTokenID("")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("non-numeric is invalid input", func(t *testing.T) {
		_, err := ParseChallengeID("abc")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("negative is invalid input", func(t *testing.T) {
		_, err := ParseProofID("-1")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestParseParticipantID(t *testing.T) {
	t.Run("opaque strings pass through", func(t *testing.T) {
		id, err := ParseParticipantID("alice")
		require.NoError(t, err)
		assert.Equal(t, ParticipantID("alice"), id)
	})

	t.Run("whitespace-only is rejected", func(t *testing.T) {
		_, err := ParseParticipantID("   ")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestParseSkillType(t *testing.T) {
	cases := []struct {
		raw  string
		want SkillType
	}{
		{"react", "react"},
		{"React ", "react"},
		{"  PYTHON", "python"},
		{"data   structures", "data-structures"},
	}
	for _, tc := range cases {
		got, err := ParseSkillType(tc.raw)
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.want, got, tc.raw)
	}

	t.Run("empty tag is rejected", func(t *testing.T) {
		_, err := ParseSkillType("  ")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}
