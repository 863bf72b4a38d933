package service

// Unit tests for the proof submission engine. The verification unit is
// exercised against the real in-memory stores and real credential/escrow
// services so that the compensation paths are tested end to end; only the
// verifier oracle is mocked.

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"skillmint/internal/audit"
	challengemodels "skillmint/internal/challenge/models"
	challengeservice "skillmint/internal/challenge/service"
	challengestore "skillmint/internal/challenge/store"
	credentialservice "skillmint/internal/credential/service"
	credentialstore "skillmint/internal/credential/store"
	escrowservice "skillmint/internal/escrow/service"
	escrowstore "skillmint/internal/escrow/store"
	"skillmint/internal/proof/models"
	"skillmint/internal/proof/service/mocks"
	"skillmint/internal/proof/store"
	id "skillmint/pkg/domain"
	dErrors "skillmint/pkg/domain-errors"
	"skillmint/pkg/platform/sentinel"
	"skillmint/pkg/testutil"
)

type ServiceSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	mockOracle  *mocks.MockVerifier
	proofStore  *store.InMemoryStore
	credStore   *credentialstore.InMemoryStore
	escrowStore *escrowstore.InMemoryStore
	challenges  *challengeservice.Service
	credentials *credentialservice.Service
	escrow      *escrowservice.Service
	service     *Service
	auditStore  *audit.InMemoryStore
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockOracle = mocks.NewMockVerifier(s.ctrl)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.auditStore = audit.NewInMemoryStore()
	auditor := audit.NewPublisher(s.auditStore)

	challengeStore := challengestore.New()
	s.proofStore = store.New()
	s.credStore = credentialstore.New()
	s.escrowStore = escrowstore.New()

	s.escrow = escrowservice.NewService(s.escrowStore, challengeStore, auditor, logger)
	s.challenges = challengeservice.NewService(challengeStore, s.escrow, auditor, logger)
	s.credentials = credentialservice.NewService(s.credStore, auditor, logger)
	s.service = NewService(
		s.proofStore,
		s.challenges,
		s.credentials,
		s.escrow,
		s.mockOracle,
		auditor,
		logger,
	)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

// createChallenge funds a challenge through the real challenge service so
// the escrow hold is booked the same way production does it.
func (s *ServiceSuite) createChallenge(funds, reward id.Amount) *challengemodels.Challenge {
	challenge, err := s.challenges.Create(context.Background(), testutil.TestParticipants.Creator, challengemodels.CreateParams{
		SkillType:  "go-profiling",
		Difficulty: 5,
		TimeLimit:  80 * time.Minute,
		Reward:     reward,
		Funds:      funds,
	})
	s.Require().NoError(err)
	return challenge
}

func (s *ServiceSuite) submitProof(challengeID id.ChallengeID, score int) *models.Proof {
	proof, err := s.service.Submit(context.Background(), testutil.TestParticipants.Alice, models.SubmitParams{
		ChallengeID:    challengeID,
		CompletionTime: 10 * time.Minute,
		Score:          score,
		SolutionDigest: testutil.SolutionDigest(score),
		ExternalToken:  testutil.ProofToken(),
	})
	s.Require().NoError(err)
	return proof
}

// =============================================================================
// Submit
// =============================================================================

func (s *ServiceSuite) TestSubmit_Validation() {
	challenge := s.createChallenge(500, 100)

	s.T().Run("missing solver returns CodeUnauthorized", func(t *testing.T) {
		_, err := s.service.Submit(context.Background(), "", models.SubmitParams{ChallengeID: challenge.ID, Score: 50})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.T().Run("score above 100 returns CodeValidation", func(t *testing.T) {
		_, err := s.service.Submit(context.Background(), testutil.TestParticipants.Alice, models.SubmitParams{
			ChallengeID: challenge.ID, CompletionTime: time.Minute, Score: 101,
		})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.T().Run("negative score returns CodeValidation", func(t *testing.T) {
		_, err := s.service.Submit(context.Background(), testutil.TestParticipants.Alice, models.SubmitParams{
			ChallengeID: challenge.ID, CompletionTime: time.Minute, Score: -1,
		})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.T().Run("unknown challenge returns not found", func(t *testing.T) {
		_, err := s.service.Submit(context.Background(), testutil.TestParticipants.Alice, models.SubmitParams{
			ChallengeID: 9999, CompletionTime: time.Minute, Score: 50,
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, sentinel.ErrNotFound))
	})

	s.T().Run("completion time over the limit returns CodeInvalidState", func(t *testing.T) {
		_, err := s.service.Submit(context.Background(), testutil.TestParticipants.Alice, models.SubmitParams{
			ChallengeID: challenge.ID, CompletionTime: challenge.TimeLimit + time.Second, Score: 50,
		})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
	})
}

func (s *ServiceSuite) TestSubmit_InactiveChallenge() {
	challenge := s.createChallenge(500, 100)
	err := s.challenges.Deactivate(context.Background(), challenge.ID, testutil.TestParticipants.Creator)
	s.Require().NoError(err)

	_, err = s.service.Submit(context.Background(), testutil.TestParticipants.Alice, models.SubmitParams{
		ChallengeID: challenge.ID, CompletionTime: time.Minute, Score: 50,
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
}

func (s *ServiceSuite) TestSubmit_StoresUnverifiedProof() {
	challenge := s.createChallenge(500, 100)
	proof := s.submitProof(challenge.ID, 72)

	s.False(proof.Verified)
	s.Equal(id.ProofID(1), proof.ID)

	stored, err := s.proofStore.FindByID(context.Background(), proof.ID)
	s.Require().NoError(err)
	s.False(stored.Verified)
	s.Equal(challenge.ID, stored.ChallengeID)
	s.Equal(testutil.TestParticipants.Alice, stored.Solver)
}

// =============================================================================
// Verify - acceptance
// =============================================================================

func (s *ServiceSuite) TestVerify_MintsCredentialAndReleasesReward() {
	challenge := s.createChallenge(500, 100)
	proof := s.submitProof(challenge.ID, 85)

	s.mockOracle.EXPECT().Verify(gomock.Any(), proof.ExternalToken).Return(true, nil)

	result, err := s.service.Verify(context.Background(), proof.ID)
	s.Require().NoError(err)
	s.True(result.Verified)
	s.True(result.Minted)
	s.Equal(9, result.Level)

	stored, err := s.proofStore.FindByID(context.Background(), proof.ID)
	s.Require().NoError(err)
	s.True(stored.Verified)

	credential, err := s.credentials.Get(context.Background(), result.TokenID)
	s.Require().NoError(err)
	s.Equal(testutil.TestParticipants.Alice, credential.Owner)
	s.Equal(9, credential.ProficiencyLevel)
	s.Equal(1, credential.VerificationCount)

	balance, err := s.escrow.BalanceOf(context.Background(), testutil.TestParticipants.Alice)
	s.Require().NoError(err)
	s.Equal(id.Amount(100), balance)

	held, err := s.escrow.HeldFor(context.Background(), challenge.ID)
	s.Require().NoError(err)
	s.Equal(id.Amount(400), held)
}

func (s *ServiceSuite) TestVerify_SecondProofUpdatesCredential() {
	challenge := s.createChallenge(500, 100)
	first := s.submitProof(challenge.ID, 85)
	second := s.submitProof(challenge.ID, 65)

	s.mockOracle.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(true, nil).Times(2)

	firstResult, err := s.service.Verify(context.Background(), first.ID)
	s.Require().NoError(err)
	s.True(firstResult.Minted)

	secondResult, err := s.service.Verify(context.Background(), second.ID)
	s.Require().NoError(err)
	s.True(secondResult.Verified)
	s.False(secondResult.Minted)
	s.Equal(firstResult.TokenID, secondResult.TokenID)
	// floor((9*1 + 7) / 2) = 8
	s.Equal(8, secondResult.Level)

	credential, err := s.credentials.Get(context.Background(), secondResult.TokenID)
	s.Require().NoError(err)
	s.Equal(8, credential.ProficiencyLevel)
	s.Equal(2, credential.VerificationCount)
	s.Len(credential.Digests, 2)

	balance, err := s.escrow.BalanceOf(context.Background(), testutil.TestParticipants.Alice)
	s.Require().NoError(err)
	s.Equal(id.Amount(200), balance)
}

func (s *ServiceSuite) TestVerify_EmitsAuditTrail() {
	challenge := s.createChallenge(500, 100)
	proof := s.submitProof(challenge.ID, 85)

	s.mockOracle.EXPECT().Verify(gomock.Any(), proof.ExternalToken).Return(true, nil)

	_, err := s.service.Verify(context.Background(), proof.ID)
	s.Require().NoError(err)

	events, err := s.auditStore.ListByParticipant(context.Background(), testutil.TestParticipants.Alice)
	s.Require().NoError(err)

	var verified *audit.Event
	for i := range events {
		if events[i].Action == audit.ActionProofVerified {
			verified = &events[i]
		}
	}
	s.Require().NotNil(verified, "expected a proof_verified audit event")
	s.Equal(audit.DecisionAccepted, verified.Decision)
	s.Equal(proof.SolutionDigest, verified.Digest)
	s.Equal(proof.ID, verified.ProofID)
}

// =============================================================================
// Verify - rejection and idempotence
// =============================================================================

func (s *ServiceSuite) TestVerify_OracleRejection() {
	challenge := s.createChallenge(500, 100)
	proof := s.submitProof(challenge.ID, 85)

	s.mockOracle.EXPECT().Verify(gomock.Any(), proof.ExternalToken).Return(false, nil)

	result, err := s.service.Verify(context.Background(), proof.ID)
	s.Require().NoError(err)
	s.False(result.Verified)
	s.Zero(result.TokenID)

	stored, err := s.proofStore.FindByID(context.Background(), proof.ID)
	s.Require().NoError(err)
	s.False(stored.Verified, "rejected proof must stay unverified")

	_, err = s.credStore.FindByOwnerAndSkill(context.Background(), testutil.TestParticipants.Alice, challenge.SkillType)
	s.True(errors.Is(err, sentinel.ErrNotFound), "rejection must not mint a credential")

	balance, err := s.escrow.BalanceOf(context.Background(), testutil.TestParticipants.Alice)
	s.Require().NoError(err)
	s.Zero(balance, "rejection must not release the reward")

	events, listErr := s.auditStore.ListByParticipant(context.Background(), testutil.TestParticipants.Alice)
	s.Require().NoError(listErr)
	var rejected bool
	for _, event := range events {
		if event.Action == audit.ActionVerificationFailed && event.Decision == audit.DecisionRejected {
			rejected = true
		}
	}
	s.True(rejected, "expected a verification_failed audit event")
}

func (s *ServiceSuite) TestVerify_AlreadyVerified() {
	challenge := s.createChallenge(500, 100)
	proof := s.submitProof(challenge.ID, 85)

	s.mockOracle.EXPECT().Verify(gomock.Any(), proof.ExternalToken).Return(true, nil)

	_, err := s.service.Verify(context.Background(), proof.ID)
	s.Require().NoError(err)

	// The second attempt must fail before reaching the oracle.
	_, err = s.service.Verify(context.Background(), proof.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))

	credential, err := s.credStore.FindByOwnerAndSkill(context.Background(), testutil.TestParticipants.Alice, challenge.SkillType)
	s.Require().NoError(err)
	s.Equal(1, credential.VerificationCount, "repeated verification must not stack effects")

	balance, err := s.escrow.BalanceOf(context.Background(), testutil.TestParticipants.Alice)
	s.Require().NoError(err)
	s.Equal(id.Amount(100), balance)
}

func (s *ServiceSuite) TestVerify_OracleErrorLeavesProofRetryable() {
	challenge := s.createChallenge(500, 100)
	proof := s.submitProof(challenge.ID, 85)

	s.mockOracle.EXPECT().Verify(gomock.Any(), proof.ExternalToken).Return(false, errors.New("oracle unreachable"))

	_, err := s.service.Verify(context.Background(), proof.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))

	stored, err := s.proofStore.FindByID(context.Background(), proof.ID)
	s.Require().NoError(err)
	s.False(stored.Verified)

	// A retry after the outage completes the unit normally.
	s.mockOracle.EXPECT().Verify(gomock.Any(), proof.ExternalToken).Return(true, nil)
	result, err := s.service.Verify(context.Background(), proof.ID)
	s.Require().NoError(err)
	s.True(result.Verified)
}

func (s *ServiceSuite) TestVerify_UnknownProof() {
	_, err := s.service.Verify(context.Background(), 424242)
	s.Require().Error(err)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

// TestVerify_NormalizedSkillTagsShareOneCredential verifies proofs against
// two challenges whose raw tags differ only in case and spacing; both must
// feed the same credential.
func (s *ServiceSuite) TestVerify_NormalizedSkillTagsShareOneCredential() {
	first, err := id.ParseSkillType("React ")
	s.Require().NoError(err)
	second, err := id.ParseSkillType("react")
	s.Require().NoError(err)
	s.Require().Equal(first, second)

	var proofs []*models.Proof
	for _, skillType := range []id.SkillType{first, second} {
		challenge, err := s.challenges.Create(context.Background(), testutil.TestParticipants.Creator, challengemodels.CreateParams{
			SkillType:  skillType,
			Difficulty: 3,
			TimeLimit:  time.Hour,
			Reward:     100,
			Funds:      100,
		})
		s.Require().NoError(err)
		proofs = append(proofs, s.submitProof(challenge.ID, 85))
	}

	s.mockOracle.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(true, nil).Times(2)
	firstResult, err := s.service.Verify(context.Background(), proofs[0].ID)
	s.Require().NoError(err)
	secondResult, err := s.service.Verify(context.Background(), proofs[1].ID)
	s.Require().NoError(err)

	s.True(firstResult.Minted)
	s.False(secondResult.Minted, "the second tag spelling must update, not mint")
	s.Equal(firstResult.TokenID, secondResult.TokenID)

	tokens, err := s.credentials.ListByOwner(context.Background(), testutil.TestParticipants.Alice)
	s.Require().NoError(err)
	s.Len(tokens, 1)
}

// =============================================================================
// Verify - compensation
// =============================================================================

// TestVerify_EscrowFailureRollsBack drains the challenge's escrow with a
// first verification, then verifies a second proof whose release must fail.
// The failed unit must leave no trace: proof unverified, credential as it was
// after the first verification.
func (s *ServiceSuite) TestVerify_EscrowFailureRollsBack() {
	// Funds cover exactly one reward.
	challenge := s.createChallenge(100, 100)
	first := s.submitProof(challenge.ID, 85)
	second := s.submitProof(challenge.ID, 65)

	s.mockOracle.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(true, nil).Times(2)

	firstResult, err := s.service.Verify(context.Background(), first.ID)
	s.Require().NoError(err)
	s.True(firstResult.Verified)

	_, err = s.service.Verify(context.Background(), second.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInsufficientFunds))

	stored, err := s.proofStore.FindByID(context.Background(), second.ID)
	s.Require().NoError(err)
	s.False(stored.Verified, "failed unit must clear the verified flag")

	credential, err := s.credentials.Get(context.Background(), firstResult.TokenID)
	s.Require().NoError(err)
	s.Equal(1, credential.VerificationCount, "credential update must be reverted")
	s.Equal(firstResult.Level, credential.ProficiencyLevel)

	balance, err := s.escrow.BalanceOf(context.Background(), testutil.TestParticipants.Alice)
	s.Require().NoError(err)
	s.Equal(id.Amount(100), balance, "only the first release pays out")
}

// TestVerify_EscrowFailureRevertsMint covers the mint flavor of the
// compensation path: the very first verification fails at release, so the
// freshly minted credential must be deleted, not restored.
func (s *ServiceSuite) TestVerify_EscrowFailureRevertsMint() {
	challenge := s.createChallenge(100, 100)
	proof := s.submitProof(challenge.ID, 85)

	// Drain the hold behind the service's back so the release must fail.
	err := s.escrowStore.Transfer(context.Background(), challenge.ID, "drain-sink", 100)
	s.Require().NoError(err)

	s.mockOracle.EXPECT().Verify(gomock.Any(), proof.ExternalToken).Return(true, nil)

	_, err = s.service.Verify(context.Background(), proof.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInsufficientFunds))

	_, err = s.credStore.FindByOwnerAndSkill(context.Background(), testutil.TestParticipants.Alice, challenge.SkillType)
	s.True(errors.Is(err, sentinel.ErrNotFound), "minted credential must be deleted on rollback")

	stored, err := s.proofStore.FindByID(context.Background(), proof.ID)
	s.Require().NoError(err)
	s.False(stored.Verified)

	// The mint record stays in the append-only log; the rollback must append
	// a compensating record so the trail reads mint-then-revert.
	events, err := s.auditStore.ListByParticipant(context.Background(), testutil.TestParticipants.Alice)
	s.Require().NoError(err)
	var minted, reverted bool
	for _, event := range events {
		switch event.Action {
		case audit.ActionCredentialMinted:
			minted = true
		case audit.ActionCredentialReverted:
			s.True(minted, "the revert record must follow the mint record")
			s.Equal(challenge.SkillType, event.SkillType)
			reverted = true
		}
	}
	s.True(reverted, "expected a credential_reverted audit event")
}

// =============================================================================
// Verify - concurrency
// =============================================================================

// TestVerify_ConcurrentAttemptsOnOneProof races Verify calls on a single
// proof. Exactly one may win; the rest must observe the already-verified
// state, and the downstream effects must apply once.
func (s *ServiceSuite) TestVerify_ConcurrentAttemptsOnOneProof() {
	challenge := s.createChallenge(1000, 100)
	proof := s.submitProof(challenge.ID, 85)

	s.mockOracle.EXPECT().Verify(gomock.Any(), proof.ExternalToken).Return(true, nil).Times(1)

	result := testutil.RunConcurrent(8, func(int) error {
		_, err := s.service.Verify(context.Background(), proof.ID)
		return err
	})

	s.Equal(int32(1), result.Successes, "exactly one verification may win")
	s.Equal(int32(7), result.InvalidStates, "losers must see the already-verified state")
	s.Zero(result.Errors)

	credential, err := s.credStore.FindByOwnerAndSkill(context.Background(), testutil.TestParticipants.Alice, challenge.SkillType)
	s.Require().NoError(err)
	s.Equal(1, credential.VerificationCount)

	balance, err := s.escrow.BalanceOf(context.Background(), testutil.TestParticipants.Alice)
	s.Require().NoError(err)
	s.Equal(id.Amount(100), balance, "the reward must be released exactly once")
}

// TestVerify_ConcurrentDistinctProofsShareOneCredential races Verify calls on
// distinct proofs that all feed one (owner, skill type) credential. Every
// unit must win, and none of the read-modify-write applications may be lost.
func (s *ServiceSuite) TestVerify_ConcurrentDistinctProofsShareOneCredential() {
	const proofCount = 8
	challenge := s.createChallenge(100*proofCount, 100)

	proofIDs := make([]id.ProofID, proofCount)
	for i := range proofIDs {
		proofIDs[i] = s.submitProof(challenge.ID, 85).ID
	}

	s.mockOracle.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(true, nil).Times(proofCount)

	result := testutil.RunConcurrent(proofCount, func(idx int) error {
		_, err := s.service.Verify(context.Background(), proofIDs[idx])
		return err
	})

	s.Equal(int32(proofCount), result.Successes, "every distinct proof must verify")
	s.Zero(result.Errors)
	s.Zero(result.InvalidStates)

	credential, err := s.credStore.FindByOwnerAndSkill(context.Background(), testutil.TestParticipants.Alice, challenge.SkillType)
	s.Require().NoError(err)
	s.Equal(proofCount, credential.VerificationCount, "no application may be lost")
	s.Len(credential.Digests, proofCount)
	s.Equal(9, credential.ProficiencyLevel, "identical scores keep the level stable")

	balance, err := s.escrow.BalanceOf(context.Background(), testutil.TestParticipants.Alice)
	s.Require().NoError(err)
	s.Equal(id.Amount(100*proofCount), balance)
}
