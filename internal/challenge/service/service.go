package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"skillmint/internal/audit"
	"skillmint/internal/challenge/metrics"
	"skillmint/internal/challenge/models"
	id "skillmint/pkg/domain"
	dErrors "skillmint/pkg/domain-errors"
)

// Store defines the persistence interface for challenges.
// Error Contract:
// - FindByID and Deactivate return sentinel.ErrNotFound when no record exists
// - Other methods return nil on success or wrapped errors on failure
type Store interface {
	Create(ctx context.Context, challenge *models.Challenge) (id.ChallengeID, error)
	FindByID(ctx context.Context, challengeID id.ChallengeID) (*models.Challenge, error)
	Deactivate(ctx context.Context, challengeID id.ChallengeID) error
	Delete(ctx context.Context, challengeID id.ChallengeID) error
	ListByCreator(ctx context.Context, creator id.ParticipantID) ([]*models.Challenge, error)
}

// EscrowHolder books the provided funds against a freshly created challenge.
type EscrowHolder interface {
	Hold(ctx context.Context, challengeID id.ChallengeID, amount id.Amount) error
}

type Option func(*Service)

// Service owns the challenge lifecycle: creation with escrowed funding and
// creator-only, idempotent deactivation.
type Service struct {
	store   Store
	escrow  EscrowHolder
	auditor *audit.Publisher
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(store Store, escrow EscrowHolder, auditor *audit.Publisher, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		store:   store,
		escrow:  escrow,
		auditor: auditor,
		logger:  logger,
		now:     time.Now,
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

// WithClock overrides the time source; used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Create validates the parameters, persists the challenge, and escrows the
// provided funds against its id. Rejections leave no record behind.
func (s *Service) Create(ctx context.Context, creator id.ParticipantID, params models.CreateParams) (*models.Challenge, error) {
	if creator.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing caller identity")
	}
	if params.Difficulty < models.MinDifficulty || params.Difficulty > models.MaxDifficulty {
		return nil, dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("difficulty must be between %d and %d", models.MinDifficulty, models.MaxDifficulty))
	}
	if params.TimeLimit <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "time limit must be positive")
	}
	if params.SkillType.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "skill type is required")
	}
	if params.Funds < params.Reward {
		return nil, dErrors.New(dErrors.CodeInsufficientFunds,
			fmt.Sprintf("provided funds %d do not cover reward %d", params.Funds, params.Reward))
	}

	challenge := &models.Challenge{
		SkillType:     params.SkillType,
		Difficulty:    params.Difficulty,
		TimeLimit:     params.TimeLimit,
		Reward:        params.Reward,
		Active:        true,
		Creator:       creator,
		ContentDigest: params.ContentDigest,
		CreatedAt:     s.now(),
	}
	challengeID, err := s.store.Create(ctx, challenge)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create challenge")
	}
	challenge.ID = challengeID

	if err := s.escrow.Hold(ctx, challengeID, params.Funds); err != nil {
		// A challenge without an escrow hold can never pay out; remove the
		// record so the rejection leaves nothing behind.
		if deleteErr := s.store.Delete(ctx, challengeID); deleteErr != nil {
			s.logger.ErrorContext(ctx, "failed to remove challenge after escrow hold failure",
				"challenge_id", challengeID,
				"error", deleteErr,
			)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to escrow funds")
	}

	s.emitAudit(ctx, audit.Event{
		Participant: creator,
		Action:      audit.ActionChallengeCreated,
		ChallengeID: challengeID,
		SkillType:   challenge.SkillType,
		Digest:      challenge.ContentDigest,
	})
	if s.metrics != nil {
		s.metrics.IncrementChallengesCreated(challenge.SkillType.String())
		s.metrics.ChallengeDifficulty.Observe(float64(challenge.Difficulty))
		s.metrics.EscrowHeld.Add(float64(params.Funds))
	}
	s.logger.InfoContext(ctx, "challenge created",
		"challenge_id", challengeID,
		"skill_type", challenge.SkillType,
		"difficulty", challenge.Difficulty,
		"reward", challenge.Reward,
	)
	return challenge, nil
}

// Deactivate flips the challenge inactive. Only the creator may do so, and
// repeated creator calls are a no-op rather than an error.
func (s *Service) Deactivate(ctx context.Context, challengeID id.ChallengeID, caller id.ParticipantID) error {
	challenge, err := s.store.FindByID(ctx, challengeID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load challenge")
	}
	if challenge.Creator != caller {
		return dErrors.New(dErrors.CodeUnauthorized, "only the creator can deactivate a challenge")
	}
	if !challenge.Active {
		return nil
	}
	if err := s.store.Deactivate(ctx, challengeID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to deactivate challenge")
	}

	s.emitAudit(ctx, audit.Event{
		Participant: caller,
		Action:      audit.ActionChallengeDeactivated,
		ChallengeID: challengeID,
		SkillType:   challenge.SkillType,
	})
	if s.metrics != nil {
		s.metrics.ChallengesDeactivated.Inc()
	}
	return nil
}

// Get returns the challenge for the given id.
func (s *Service) Get(ctx context.Context, challengeID id.ChallengeID) (*models.Challenge, error) {
	challenge, err := s.store.FindByID(ctx, challengeID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load challenge")
	}
	return challenge, nil
}

// ListByCreator returns the creator's challenges in insertion order.
func (s *Service) ListByCreator(ctx context.Context, creator id.ParticipantID) ([]*models.Challenge, error) {
	challenges, err := s.store.ListByCreator(ctx, creator)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list challenges")
	}
	return challenges, nil
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
