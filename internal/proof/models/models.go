package models

import (
	"time"

	id "skillmint/pkg/domain"
)

// MaxScore bounds submitted scores.
const MaxScore = 100

// Proof records a solver's submission against a challenge. Verified flips
// false to true at most once and never reverts once the verification unit
// has committed.
type Proof struct {
	ID             id.ProofID
	ChallengeID    id.ChallengeID
	Solver         id.ParticipantID
	CompletionTime time.Duration
	Score          int
	SolutionDigest string
	ExternalToken  string
	Verified       bool
	SubmittedAt    time.Time
}

// SubmitParams carries validated-at-the-boundary input for a submission.
// The external-proof token is opaque to the ledger; only the verifier oracle
// interprets it.
type SubmitParams struct {
	ChallengeID    id.ChallengeID
	CompletionTime time.Duration
	Score          int
	SolutionDigest string
	ExternalToken  string
}

// VerifyResult reports the outcome of a verification attempt. When the
// oracle rejects, Verified is false and TokenID is zero; a rejected proof
// stays unverified under its id.
type VerifyResult struct {
	ProofID  id.ProofID
	Verified bool
	TokenID  id.TokenID
	Level    int
	Minted   bool
}
