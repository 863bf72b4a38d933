package audit

import (
	"time"

	id "skillmint/pkg/domain"
)

// Event is emitted from domain logic to capture key ledger actions. Keep it
// transport-agnostic so stores and sinks can fan out. Verification events
// carry the contributing solution digest; this is the append-only
// solution-digest audit log.
type Event struct {
	Timestamp   time.Time
	Participant id.ParticipantID
	Action      Action
	ChallengeID id.ChallengeID
	ProofID     id.ProofID
	TokenID     id.TokenID
	SkillType   id.SkillType
	Digest      string
	Decision    string
}

type Action string

const (
	ActionChallengeCreated     Action = "challenge_created"
	ActionChallengeDeactivated Action = "challenge_deactivated"
	ActionProofSubmitted       Action = "proof_submitted"
	ActionProofVerified        Action = "proof_verified"
	ActionVerificationFailed   Action = "verification_failed"
	ActionCredentialMinted     Action = "credential_minted"
	ActionCredentialUpdated    Action = "credential_updated"
	ActionCredentialReverted   Action = "credential_reverted"
	ActionRewardReleased       Action = "reward_released"
	ActionAccountDerived       Action = "account_derived"
)

const (
	DecisionAccepted = "accepted"
	DecisionRejected = "rejected"
)
