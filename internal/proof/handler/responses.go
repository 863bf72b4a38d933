package handler

import (
	"time"

	"skillmint/internal/proof/models"
)

// ProofResponse is the wire representation of a submission.
type ProofResponse struct {
	ID                    uint64    `json:"id"`
	ChallengeID           uint64    `json:"challenge_id"`
	Solver                string    `json:"solver"`
	CompletionTimeSeconds int64     `json:"completion_time_seconds"`
	Score                 int       `json:"score"`
	SolutionDigest        string    `json:"solution_digest,omitempty"`
	Verified              bool      `json:"verified"`
	SubmittedAt           time.Time `json:"submitted_at"`
}

// VerifyResponse reports a verification outcome. Token fields are only set
// when the oracle accepted.
type VerifyResponse struct {
	ProofID  uint64 `json:"proof_id"`
	Verified bool   `json:"verified"`
	TokenID  uint64 `json:"token_id,omitempty"`
	Level    int    `json:"level,omitempty"`
	Minted   bool   `json:"minted,omitempty"`
}

// ProofListResponse wraps a solver's submissions.
type ProofListResponse struct {
	Proofs []ProofResponse `json:"proofs"`
}

func toProofResponse(proof *models.Proof) ProofResponse {
	return ProofResponse{
		ID:                    uint64(proof.ID),
		ChallengeID:           uint64(proof.ChallengeID),
		Solver:                proof.Solver.String(),
		CompletionTimeSeconds: int64(proof.CompletionTime / time.Second),
		Score:                 proof.Score,
		SolutionDigest:        proof.SolutionDigest,
		Verified:              proof.Verified,
		SubmittedAt:           proof.SubmittedAt,
	}
}

func toVerifyResponse(result *models.VerifyResult) VerifyResponse {
	return VerifyResponse{
		ProofID:  uint64(result.ProofID),
		Verified: result.Verified,
		TokenID:  uint64(result.TokenID),
		Level:    result.Level,
		Minted:   result.Minted,
	}
}

func toProofListResponse(proofs []*models.Proof) ProofListResponse {
	out := ProofListResponse{Proofs: make([]ProofResponse, 0, len(proofs))}
	for _, proof := range proofs {
		out.Proofs = append(out.Proofs, toProofResponse(proof))
	}
	return out
}
