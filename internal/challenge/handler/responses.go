package handler

import (
	"time"

	"skillmint/internal/challenge/models"
)

// ChallengeResponse is the wire representation of a challenge.
type ChallengeResponse struct {
	ID               uint64    `json:"id"`
	SkillType        string    `json:"skill_type"`
	Difficulty       int       `json:"difficulty"`
	TimeLimitMinutes int       `json:"time_limit_minutes"`
	Reward           uint64    `json:"reward"`
	Active           bool      `json:"active"`
	Creator          string    `json:"creator"`
	ContentDigest    string    `json:"content_digest,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// DeactivateResponse acknowledges a deactivation.
type DeactivateResponse struct {
	ID     uint64 `json:"id"`
	Active bool   `json:"active"`
}

// ChallengeListResponse wraps a creator's challenges.
type ChallengeListResponse struct {
	Challenges []ChallengeResponse `json:"challenges"`
}

func toChallengeResponse(challenge *models.Challenge) ChallengeResponse {
	return ChallengeResponse{
		ID:               uint64(challenge.ID),
		SkillType:        challenge.SkillType.String(),
		Difficulty:       challenge.Difficulty,
		TimeLimitMinutes: int(challenge.TimeLimit / time.Minute),
		Reward:           uint64(challenge.Reward),
		Active:           challenge.Active,
		Creator:          challenge.Creator.String(),
		ContentDigest:    challenge.ContentDigest,
		CreatedAt:        challenge.CreatedAt,
	}
}

func toChallengeListResponse(challenges []*models.Challenge) ChallengeListResponse {
	out := ChallengeListResponse{Challenges: make([]ChallengeResponse, 0, len(challenges))}
	for _, challenge := range challenges {
		out.Challenges = append(out.Challenges, toChallengeResponse(challenge))
	}
	return out
}
