package models

import (
	"time"

	id "skillmint/pkg/domain"
)

// Difficulty bounds for a challenge, inclusive.
const (
	MinDifficulty = 1
	MaxDifficulty = 10
)

// Challenge is a skill challenge with an escrowed reward. `Active` flips
// false exactly once via deactivation and never becomes true again.
type Challenge struct {
	ID            id.ChallengeID
	SkillType     id.SkillType
	Difficulty    int
	TimeLimit     time.Duration
	Reward        id.Amount
	Active        bool
	Creator       id.ParticipantID
	ContentDigest string
	CreatedAt     time.Time
}

// CreateParams carries validated-at-the-boundary input for challenge creation.
// SkillType and ContentDigest come from the challenge-content supplier and
// are stored opaquely.
type CreateParams struct {
	SkillType     id.SkillType
	Difficulty    int
	TimeLimit     time.Duration
	Reward        id.Amount
	Funds         id.Amount
	ContentDigest string
}

// SuggestTimeLimit mirrors the content supplier's sizing: 30 minutes base
// plus 10 minutes per difficulty point.
func SuggestTimeLimit(difficulty int) time.Duration {
	return time.Duration(30+10*difficulty) * time.Minute
}

// SuggestReward mirrors the content supplier's sizing: 100 units per
// difficulty point.
func SuggestReward(difficulty int) id.Amount {
	return id.Amount(100 * difficulty)
}
