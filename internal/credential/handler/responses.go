package handler

import (
	"time"

	"skillmint/internal/credential/models"
)

// CredentialResponse is the wire representation of a credential.
type CredentialResponse struct {
	TokenID           uint64    `json:"token_id"`
	Owner             string    `json:"owner"`
	SkillType         string    `json:"skill_type"`
	ProficiencyLevel  int       `json:"proficiency_level"`
	VerificationCount int       `json:"verification_count"`
	CreatedAt         time.Time `json:"created_at"`
	Digests           []string  `json:"digests,omitempty"`
}

// CredentialListResponse wraps an owner's credentials in first-minted order.
type CredentialListResponse struct {
	Credentials []CredentialResponse `json:"credentials"`
}

// AccountResponse carries a derived deposit account reference.
type AccountResponse struct {
	TokenID uint64 `json:"token_id"`
	Account string `json:"account"`
}

func toCredentialResponse(credential *models.Credential) CredentialResponse {
	return CredentialResponse{
		TokenID:           uint64(credential.TokenID),
		Owner:             credential.Owner.String(),
		SkillType:         credential.SkillType.String(),
		ProficiencyLevel:  credential.ProficiencyLevel,
		VerificationCount: credential.VerificationCount,
		CreatedAt:         credential.CreatedAt,
		Digests:           credential.Digests,
	}
}
