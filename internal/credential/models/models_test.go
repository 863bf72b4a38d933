package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreToLevel(t *testing.T) {
	cases := []struct {
		score int
		level int
	}{
		{100, 10},
		{90, 10},
		{89, 9},
		{85, 9},
		{80, 9},
		{70, 8},
		{65, 7},
		{60, 7},
		{55, 6},
		{50, 6},
		{40, 5},
		{30, 4},
		{20, 3},
		{10, 2},
		{9, 1},
		{5, 1},
		{0, 1},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.level, ScoreToLevel(tc.score), "score %d", tc.score)
	}
}

func TestCredentialClone(t *testing.T) {
	original := &Credential{
		TokenID:           3,
		Owner:             "alice",
		SkillType:         "react",
		ProficiencyLevel:  9,
		VerificationCount: 1,
		Digests:           []string{"sha256:a"},
	}
	clone := original.Clone()
	clone.Digests = append(clone.Digests, "sha256:b")
	clone.ProficiencyLevel = 8

	assert.Len(t, original.Digests, 1, "clone must not share the digest slice")
	assert.Equal(t, 9, original.ProficiencyLevel)
}
