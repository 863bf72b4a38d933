package service

import (
	"context"
	"time"

	"skillmint/internal/audit"
	credentialmodels "skillmint/internal/credential/models"
	"skillmint/internal/proof/metrics"
	"skillmint/internal/proof/models"
	"skillmint/internal/proof/tracer"
	id "skillmint/pkg/domain"
	dErrors "skillmint/pkg/domain-errors"
)

// Verify runs the verification unit for one proof:
//
//	already-verified check -> oracle call -> flip verified -> mint/update credential -> release escrow
//
// The whole sequence executes under the proof's lock, so concurrent Verify
// calls on the same proofId serialize and at most one passes the
// already-verified check. The oracle call is read-only and the sole
// suspension point; everything after the flip either completes or is
// compensated (credential reverted, verified flag cleared), returning the
// proof to its unverified state so the caller can safely retry.
func (s *Service) Verify(ctx context.Context, proofID id.ProofID) (*models.VerifyResult, error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.VerifyLatency.Observe(time.Since(start).Seconds())
		}
	}()

	lockKey := "proof/" + proofID.String()
	s.locks.Lock(lockKey)
	defer s.locks.Unlock(lockKey)

	ctx, span := s.tracer.Start(ctx, tracer.SpanVerify,
		tracer.Int64(tracer.AttrProofID, int64(proofID)),
	)
	result, err := s.verifyLocked(ctx, proofID, span)
	span.End(err)
	return result, err
}

func (s *Service) verifyLocked(ctx context.Context, proofID id.ProofID, span tracer.Span) (*models.VerifyResult, error) {
	proof, err := s.store.FindByID(ctx, proofID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load proof")
	}
	// Checked before anything else so downstream effects are at-most-once.
	if proof.Verified {
		return nil, dErrors.New(dErrors.CodeInvalidState, "proof is already verified")
	}

	challenge, err := s.challenges.Get(ctx, proof.ChallengeID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load challenge")
	}

	oracleCtx, oracleSpan := s.tracer.Start(ctx, tracer.SpanOracleCall)
	valid, err := s.oracle.Verify(oracleCtx, proof.ExternalToken)
	oracleSpan.End(err)
	if err != nil {
		// No mutation has happened; the caller may retry and re-run the oracle.
		if s.metrics != nil {
			s.metrics.ObserveVerification(metrics.ResultError)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "verifier oracle failed")
	}
	span.SetAttributes(tracer.Bool(tracer.AttrVerdict, valid))

	if !valid {
		// The proof stays unverified permanently under this id; there is no
		// resubmission path for a rejected proof.
		s.emitAudit(ctx, audit.Event{
			Participant: proof.Solver,
			Action:      audit.ActionVerificationFailed,
			ChallengeID: proof.ChallengeID,
			ProofID:     proofID,
			SkillType:   challenge.SkillType,
			Digest:      proof.SolutionDigest,
			Decision:    audit.DecisionRejected,
		})
		if s.metrics != nil {
			s.metrics.ObserveVerification(metrics.ResultRejected)
		}
		s.logger.InfoContext(ctx, "proof rejected by oracle",
			"proof_id", proofID,
			"challenge_id", proof.ChallengeID,
		)
		return &models.VerifyResult{ProofID: proofID, Verified: false}, nil
	}

	applyCtx, applySpan := s.tracer.Start(ctx, tracer.SpanApplyUnit,
		tracer.Int64(tracer.AttrChallengeID, int64(proof.ChallengeID)),
	)
	result, err := s.applyVerified(applyCtx, proof, challenge.SkillType, applySpan)
	applySpan.End(err)
	if err != nil {
		if s.metrics != nil {
			s.metrics.ObserveVerification(metrics.ResultError)
		}
		return nil, err
	}

	s.emitAudit(ctx, audit.Event{
		Participant: proof.Solver,
		Action:      audit.ActionProofVerified,
		ChallengeID: proof.ChallengeID,
		ProofID:     proofID,
		TokenID:     result.TokenID,
		SkillType:   challenge.SkillType,
		Digest:      proof.SolutionDigest,
		Decision:    audit.DecisionAccepted,
	})
	if s.metrics != nil {
		s.metrics.ObserveVerification(metrics.ResultAccepted)
	}
	s.logger.InfoContext(ctx, "proof verified",
		"proof_id", proofID,
		"challenge_id", proof.ChallengeID,
		"token_id", result.TokenID,
		"minted", result.Minted,
		"level", result.Level,
	)
	return result, nil
}

// applyVerified performs the mutating tail of the unit with compensation:
// the verified flag is cleared and the credential application reverted if a
// later step fails, so a failed unit leaves no trace.
func (s *Service) applyVerified(ctx context.Context, proof *models.Proof, skillType id.SkillType, span tracer.Span) (*models.VerifyResult, error) {
	if err := s.store.MarkVerified(ctx, proof.ID); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark proof verified")
	}

	application, err := s.ledger.ApplyVerifiedProof(ctx, proof.Solver, skillType, proof.Score, proof.SolutionDigest)
	if err != nil {
		s.rollback(ctx, proof.ID, nil, span)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to apply credential")
	}

	if err := s.escrow.Release(ctx, proof.ChallengeID, proof.Solver); err != nil {
		s.rollback(ctx, proof.ID, application, span)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to release reward")
	}

	span.SetAttributes(tracer.Bool(tracer.AttrMinted, application.Minted))
	return &models.VerifyResult{
		ProofID:  proof.ID,
		Verified: true,
		TokenID:  application.TokenID,
		Level:    application.Level,
		Minted:   application.Minted,
	}, nil
}

// rollback compensates a partially applied unit. Runs under the proof's
// lock; failures here are logged loudly because they leave the ledger
// inconsistent and need operator attention.
func (s *Service) rollback(ctx context.Context, proofID id.ProofID, application *credentialmodels.Application, span tracer.Span) {
	span.AddEvent(tracer.EventRolledBack)
	if s.metrics != nil {
		s.metrics.VerificationRollbacks.Inc()
	}
	if application != nil {
		if err := s.ledger.Revert(ctx, application); err != nil {
			s.logger.ErrorContext(ctx, "failed to revert credential application during rollback",
				"proof_id", proofID,
				"error", err,
			)
		}
	}
	if err := s.store.ClearVerified(ctx, proofID); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear verified flag during rollback",
			"proof_id", proofID,
			"error", err,
		)
	}
}
