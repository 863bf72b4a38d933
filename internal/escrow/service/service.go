package service

import (
	"context"
	"log/slog"

	"skillmint/internal/audit"
	"skillmint/internal/escrow/metrics"
	id "skillmint/pkg/domain"
	dErrors "skillmint/pkg/domain-errors"
)

// Store defines the persistence interface for escrow balances.
// Error Contract:
// - HeldFor and Transfer return sentinel.ErrNotFound when no hold exists
// - Transfer returns CodeInsufficientFunds when the held balance cannot cover the amount
type Store interface {
	Hold(ctx context.Context, challengeID id.ChallengeID, amount id.Amount) error
	HeldFor(ctx context.Context, challengeID id.ChallengeID) (id.Amount, error)
	Transfer(ctx context.Context, challengeID id.ChallengeID, recipient id.ParticipantID, amount id.Amount) error
	BalanceOf(ctx context.Context, recipient id.ParticipantID) (id.Amount, error)
}

// ChallengeReader resolves the reward amount for a challenge at release time.
type ChallengeReader interface {
	RewardFor(ctx context.Context, challengeID id.ChallengeID) (id.Amount, error)
}

type Option func(*Service)

// Service releases escrowed rewards to solvers.
//
// Payout policy: every release debits rewardAmount from the challenge's held
// balance, so a challenge funded with N rewards pays at most N solvers and a
// further release fails with insufficient_funds. An earlier scheme paid the
// full reward on every verified proof without decrementing anything; the
// balance check here is the deliberate replacement for that unbounded payout.
type Service struct {
	store      Store
	challenges ChallengeReader
	auditor    *audit.Publisher
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

func NewService(store Store, challenges ChallengeReader, auditor *audit.Publisher, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		store:      store,
		challenges: challenges,
		auditor:    auditor,
		logger:     logger,
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

// Hold books funds against a challenge at creation time.
func (s *Service) Hold(ctx context.Context, challengeID id.ChallengeID, amount id.Amount) error {
	if err := s.store.Hold(ctx, challengeID, amount); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to hold escrow")
	}
	return nil
}

// Release pays the challenge's reward amount to the recipient. A zero reward
// is a successful no-op. The held balance must cover the reward.
func (s *Service) Release(ctx context.Context, challengeID id.ChallengeID, recipient id.ParticipantID) error {
	reward, err := s.challenges.RewardFor(ctx, challengeID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve reward")
	}
	if reward == 0 {
		return nil
	}
	if err := s.store.Transfer(ctx, challengeID, recipient, reward); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to release reward")
	}

	if s.auditor != nil {
		if err := s.auditor.Emit(ctx, audit.Event{
			Participant: recipient,
			Action:      audit.ActionRewardReleased,
			ChallengeID: challengeID,
		}); err != nil {
			s.logger.WarnContext(ctx, "failed to emit audit event", "action", audit.ActionRewardReleased, "error", err)
		}
	}
	if s.metrics != nil {
		s.metrics.RewardsReleased.Inc()
		s.metrics.UnitsReleased.Add(float64(reward))
	}
	s.logger.InfoContext(ctx, "reward released",
		"challenge_id", challengeID,
		"recipient", recipient,
		"amount", reward,
	)
	return nil
}

// HeldFor reports the remaining held balance for a challenge.
func (s *Service) HeldFor(ctx context.Context, challengeID id.ChallengeID) (id.Amount, error) {
	held, err := s.store.HeldFor(ctx, challengeID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read held balance")
	}
	return held, nil
}

// BalanceOf reports the recipient's accrued reward balance.
func (s *Service) BalanceOf(ctx context.Context, recipient id.ParticipantID) (id.Amount, error) {
	balance, err := s.store.BalanceOf(ctx, recipient)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read balance")
	}
	return balance, nil
}
