package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"skillmint/internal/audit"
	challengemodels "skillmint/internal/challenge/models"
	credentialmodels "skillmint/internal/credential/models"
	"skillmint/internal/proof/metrics"
	"skillmint/internal/proof/models"
	"skillmint/internal/proof/oracle"
	"skillmint/internal/proof/tracer"
	id "skillmint/pkg/domain"
	dErrors "skillmint/pkg/domain-errors"
	platformsync "skillmint/pkg/platform/sync"
)

// Store defines the persistence interface for proofs.
// Error Contract:
// - FindByID, MarkVerified, ClearVerified return sentinel.ErrNotFound when no record exists
// - MarkVerified returns sentinel.ErrConflict when the proof is already verified
type Store interface {
	Create(ctx context.Context, proof *models.Proof) (id.ProofID, error)
	FindByID(ctx context.Context, proofID id.ProofID) (*models.Proof, error)
	MarkVerified(ctx context.Context, proofID id.ProofID) error
	ClearVerified(ctx context.Context, proofID id.ProofID) error
	ListBySolver(ctx context.Context, solver id.ParticipantID) ([]*models.Proof, error)
}

// ChallengeReader resolves the challenge a proof references.
type ChallengeReader interface {
	Get(ctx context.Context, challengeID id.ChallengeID) (*challengemodels.Challenge, error)
}

// Ledger mints or updates credentials from verified proofs and can revert an
// application when a later step of the verification unit fails.
type Ledger interface {
	ApplyVerifiedProof(ctx context.Context, owner id.ParticipantID, skillType id.SkillType, score int, digest string) (*credentialmodels.Application, error)
	Revert(ctx context.Context, application *credentialmodels.Application) error
}

// EscrowReleaser pays the challenge reward to the solver.
type EscrowReleaser interface {
	Release(ctx context.Context, challengeID id.ChallengeID, recipient id.ParticipantID) error
}

type Option func(*Service)

// Service records submissions and drives verification. Submissions have no
// side effects beyond storage; all downstream effects happen inside Verify's
// atomic unit.
type Service struct {
	store      Store
	challenges ChallengeReader
	ledger     Ledger
	escrow     EscrowReleaser
	oracle     oracle.Verifier
	locks      *platformsync.ShardedMutex
	auditor    *audit.Publisher
	metrics    *metrics.Metrics
	tracer     tracer.Tracer
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(
	store Store,
	challenges ChallengeReader,
	ledger Ledger,
	escrow EscrowReleaser,
	verifier oracle.Verifier,
	auditor *audit.Publisher,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	svc := &Service{
		store:      store,
		challenges: challenges,
		ledger:     ledger,
		escrow:     escrow,
		oracle:     verifier,
		locks:      platformsync.NewShardedMutex(),
		auditor:    auditor,
		tracer:     tracer.NewNoop(),
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// WithMetrics sets the metrics instance for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTracer sets the tracer for the verification pipeline.
func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithClock overrides the time source; used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Submit records an unverified proof against an active challenge. The stored
// proof is the only side effect.
func (s *Service) Submit(ctx context.Context, solver id.ParticipantID, params models.SubmitParams) (*models.Proof, error) {
	if solver.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing caller identity")
	}
	if params.Score < 0 || params.Score > models.MaxScore {
		return nil, dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("score must be between 0 and %d", models.MaxScore))
	}

	challenge, err := s.challenges.Get(ctx, params.ChallengeID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load challenge")
	}
	// Active is read without a challenge lock, so a concurrent deactivation
	// can land between this check and Create. Such a proof is still payable
	// only from the escrow hold, which bounds what the challenge ever pays.
	if !challenge.Active {
		return nil, dErrors.New(dErrors.CodeInvalidState, "challenge is not active")
	}
	if params.CompletionTime > challenge.TimeLimit {
		return nil, dErrors.New(dErrors.CodeInvalidState, "completion time exceeds the challenge time limit")
	}

	proof := &models.Proof{
		ChallengeID:    params.ChallengeID,
		Solver:         solver,
		CompletionTime: params.CompletionTime,
		Score:          params.Score,
		SolutionDigest: params.SolutionDigest,
		ExternalToken:  params.ExternalToken,
		Verified:       false,
		SubmittedAt:    s.now(),
	}
	proofID, err := s.store.Create(ctx, proof)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store proof")
	}
	proof.ID = proofID

	s.emitAudit(ctx, audit.Event{
		Participant: solver,
		Action:      audit.ActionProofSubmitted,
		ChallengeID: params.ChallengeID,
		ProofID:     proofID,
		SkillType:   challenge.SkillType,
		Digest:      params.SolutionDigest,
	})
	if s.metrics != nil {
		s.metrics.ProofsSubmitted.WithLabelValues(challenge.SkillType.String()).Inc()
	}
	s.logger.InfoContext(ctx, "proof submitted",
		"proof_id", proofID,
		"challenge_id", params.ChallengeID,
		"solver", solver,
		"score", params.Score,
	)
	return proof, nil
}

// Get returns the proof for the given id.
func (s *Service) Get(ctx context.Context, proofID id.ProofID) (*models.Proof, error) {
	proof, err := s.store.FindByID(ctx, proofID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load proof")
	}
	return proof, nil
}

// ListBySolver returns the solver's proofs in submission order.
func (s *Service) ListBySolver(ctx context.Context, solver id.ParticipantID) ([]*models.Proof, error) {
	proofs, err := s.store.ListBySolver(ctx, solver)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list proofs")
	}
	return proofs, nil
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
		)
	}
}
