package handler

import (
	"time"

	"skillmint/internal/challenge/models"
	id "skillmint/pkg/domain"
)

// CreateRequest carries the challenge definition. Reward and time limit are
// optional: omitted values fall back to the difficulty-based sizing the
// content supplier uses.
type CreateRequest struct {
	SkillType        string  `json:"skill_type"`
	Difficulty       int     `json:"difficulty"`
	TimeLimitMinutes int     `json:"time_limit_minutes,omitempty"`
	Reward           *uint64 `json:"reward,omitempty"`
	Funds            *uint64 `json:"funds,omitempty"`
	ContentDigest    string  `json:"content_digest,omitempty"`
}

// Normalize applies the sizing defaults. Funds default to one reward so an
// unfunded request still escrows a single payout.
func (r *CreateRequest) Normalize() {
	if r == nil {
		return
	}
	if r.TimeLimitMinutes == 0 {
		r.TimeLimitMinutes = int(models.SuggestTimeLimit(r.Difficulty) / time.Minute)
	}
	if r.Reward == nil {
		suggested := uint64(models.SuggestReward(r.Difficulty))
		r.Reward = &suggested
	}
	if r.Funds == nil {
		r.Funds = r.Reward
	}
}

// ToParams converts the normalized request into domain parameters.
func (r *CreateRequest) ToParams() (models.CreateParams, error) {
	skillType, err := id.ParseSkillType(r.SkillType)
	if err != nil {
		return models.CreateParams{}, err
	}
	return models.CreateParams{
		SkillType:     skillType,
		Difficulty:    r.Difficulty,
		TimeLimit:     time.Duration(r.TimeLimitMinutes) * time.Minute,
		Reward:        id.Amount(*r.Reward),
		Funds:         id.Amount(*r.Funds),
		ContentDigest: r.ContentDigest,
	}, nil
}
