package handler

import (
	"time"

	"skillmint/internal/proof/models"
	id "skillmint/pkg/domain"
	dErrors "skillmint/pkg/domain-errors"
)

// SubmitRequest carries a solver's submission against a challenge.
type SubmitRequest struct {
	ChallengeID           uint64 `json:"challenge_id"`
	CompletionTimeSeconds int64  `json:"completion_time_seconds"`
	Score                 int    `json:"score"`
	SolutionDigest        string `json:"solution_digest"`
	ExternalToken         string `json:"external_token"`
}

// ToParams converts the request into domain parameters.
func (r *SubmitRequest) ToParams() (models.SubmitParams, error) {
	if r.ChallengeID == 0 {
		return models.SubmitParams{}, dErrors.New(dErrors.CodeInvalidInput, "challenge_id is required")
	}
	if r.CompletionTimeSeconds < 0 {
		return models.SubmitParams{}, dErrors.New(dErrors.CodeInvalidInput, "completion_time_seconds cannot be negative")
	}
	return models.SubmitParams{
		ChallengeID:    id.ChallengeID(r.ChallengeID),
		CompletionTime: time.Duration(r.CompletionTimeSeconds) * time.Second,
		Score:          r.Score,
		SolutionDigest: r.SolutionDigest,
		ExternalToken:  r.ExternalToken,
	}, nil
}
