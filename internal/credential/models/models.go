package models

import (
	"time"

	id "skillmint/pkg/domain"
)

// Proficiency bounds, inclusive.
const (
	MinLevel = 1
	MaxLevel = 10
)

// Credential is the non-fungible record of a verified skill. At most one
// exists per (owner, skill type); repeated verifications update it in place.
// VerificationCount is at least 1 and only ever grows; Digests holds the
// contributing solution digests in verification order.
type Credential struct {
	TokenID           id.TokenID
	Owner             id.ParticipantID
	SkillType         id.SkillType
	ProficiencyLevel  int
	VerificationCount int
	CreatedAt         time.Time
	Digests           []string
}

// Clone returns a deep copy so store snapshots cannot alias service state.
func (c *Credential) Clone() *Credential {
	copyCredential := *c
	copyCredential.Digests = append([]string(nil), c.Digests...)
	return &copyCredential
}

// Application records what a verified proof did to the ledger so the
// verification unit can be rolled back: a mint is reverted by deleting the
// token, an update by restoring the prior credential snapshot.
type Application struct {
	TokenID   id.TokenID
	Owner     id.ParticipantID
	SkillType id.SkillType
	Minted    bool
	Level     int
	Count     int
	Previous  *Credential // nil when Minted
}

// ScoreToLevel maps a 0-100 score onto the 1-10 proficiency scale.
func ScoreToLevel(score int) int {
	switch {
	case score >= 90:
		return 10
	case score >= 80:
		return 9
	case score >= 70:
		return 8
	case score >= 60:
		return 7
	case score >= 50:
		return 6
	case score >= 40:
		return 5
	case score >= 30:
		return 4
	case score >= 20:
		return 3
	case score >= 10:
		return 2
	default:
		return 1
	}
}
