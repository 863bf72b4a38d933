package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"skillmint/internal/audit"
	"skillmint/internal/credential/metrics"
	"skillmint/internal/credential/models"
	id "skillmint/pkg/domain"
	dErrors "skillmint/pkg/domain-errors"
	"skillmint/pkg/platform/sentinel"
	platformsync "skillmint/pkg/platform/sync"
)

// Store defines the persistence interface for credentials.
// Error Contract:
// - Find*, Update, Delete return sentinel.ErrNotFound when no record exists
// - Mint returns sentinel.ErrConflict when the (owner, skill type) pair is taken
type Store interface {
	Mint(ctx context.Context, credential *models.Credential) (id.TokenID, error)
	FindByOwnerAndSkill(ctx context.Context, owner id.ParticipantID, skill id.SkillType) (*models.Credential, error)
	FindByToken(ctx context.Context, tokenID id.TokenID) (*models.Credential, error)
	Update(ctx context.Context, credential *models.Credential) error
	Delete(ctx context.Context, tokenID id.TokenID) error
	ListByOwner(ctx context.Context, owner id.ParticipantID) ([]id.TokenID, error)
}

type Option func(*Service)

// Service owns the proficiency math of the credential ledger. Only the
// verification pipeline calls ApplyVerifiedProof; everything else is reads.
type Service struct {
	store   Store
	locks   *platformsync.ShardedMutex
	auditor *audit.Publisher
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(store Store, auditor *audit.Publisher, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		store:   store,
		locks:   platformsync.NewShardedMutex(),
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

// credentialKey serializes writers of one (owner, skillType) credential.
// Distinct proofs for the same pair verify concurrently under distinct proof
// locks, so the read-modify-write here needs its own lock.
func credentialKey(owner id.ParticipantID, skillType id.SkillType) string {
	return "credential/" + owner.String() + "/" + skillType.String()
}

// ApplyVerifiedProof mints or updates the credential for (owner, skillType).
// The lookup-before-create enforces at most one credential per pair, and the
// whole read-compute-write runs under the credential's lock so concurrent
// applications from distinct proofs never work from a stale snapshot.
//
// Update math: newLevel = floor((currentLevel*count + mappedLevel)/(count+1)).
// Both operands are in [1,10], so the result stays in [1,10].
func (s *Service) ApplyVerifiedProof(ctx context.Context, owner id.ParticipantID, skillType id.SkillType, score int, digest string) (*models.Application, error) {
	level := models.ScoreToLevel(score)

	lockKey := credentialKey(owner, skillType)
	s.locks.Lock(lockKey)
	defer s.locks.Unlock(lockKey)

	existing, err := s.store.FindByOwnerAndSkill(ctx, owner, skillType)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read credential")
	}

	if existing == nil {
		credential := &models.Credential{
			Owner:             owner,
			SkillType:         skillType,
			ProficiencyLevel:  level,
			VerificationCount: 1,
			CreatedAt:         s.now(),
			Digests:           []string{digest},
		}
		tokenID, err := s.store.Mint(ctx, credential)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mint credential")
		}
		s.emitAudit(ctx, audit.Event{
			Participant: owner,
			Action:      audit.ActionCredentialMinted,
			TokenID:     tokenID,
			SkillType:   skillType,
			Digest:      digest,
		})
		if s.metrics != nil {
			s.metrics.CredentialsMinted.WithLabelValues(skillType.String()).Inc()
			s.metrics.ProficiencyLevel.Observe(float64(level))
		}
		s.logger.InfoContext(ctx, "credential minted",
			"token_id", tokenID,
			"owner", owner,
			"skill_type", skillType,
			"level", level,
		)
		return &models.Application{
			TokenID:   tokenID,
			Owner:     owner,
			SkillType: skillType,
			Minted:    true,
			Level:     level,
			Count:     1,
		}, nil
	}

	previous := existing.Clone()
	updated := existing.Clone()
	updated.ProficiencyLevel = (existing.ProficiencyLevel*existing.VerificationCount + level) / (existing.VerificationCount + 1)
	updated.VerificationCount = existing.VerificationCount + 1
	updated.Digests = append(updated.Digests, digest)

	if err := s.store.Update(ctx, updated); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update credential")
	}
	s.emitAudit(ctx, audit.Event{
		Participant: owner,
		Action:      audit.ActionCredentialUpdated,
		TokenID:     updated.TokenID,
		SkillType:   skillType,
		Digest:      digest,
	})
	if s.metrics != nil {
		s.metrics.CredentialsUpdated.WithLabelValues(skillType.String()).Inc()
		s.metrics.ProficiencyLevel.Observe(float64(updated.ProficiencyLevel))
	}
	s.logger.InfoContext(ctx, "credential updated",
		"token_id", updated.TokenID,
		"owner", owner,
		"skill_type", skillType,
		"level", updated.ProficiencyLevel,
		"verifications", updated.VerificationCount,
	)
	return &models.Application{
		TokenID:   updated.TokenID,
		Owner:     owner,
		SkillType: skillType,
		Minted:    false,
		Level:     updated.ProficiencyLevel,
		Count:     updated.VerificationCount,
		Previous:  previous,
	}, nil
}

// Revert undoes an application: deletes a minted credential or restores the
// prior snapshot of an updated one. Compensation path for the verification
// unit; it must only run while the triggering proof is still locked. The
// earlier mint/update audit record stays in the append-only log, so a
// compensating credential_reverted record is appended alongside the undo.
func (s *Service) Revert(ctx context.Context, application *models.Application) error {
	if application == nil {
		return nil
	}
	lockKey := credentialKey(application.Owner, application.SkillType)
	s.locks.Lock(lockKey)
	defer s.locks.Unlock(lockKey)

	if application.Minted {
		if err := s.store.Delete(ctx, application.TokenID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revert mint")
		}
	} else {
		if err := s.store.Update(ctx, application.Previous); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revert update")
		}
	}
	s.emitAudit(ctx, audit.Event{
		Participant: application.Owner,
		Action:      audit.ActionCredentialReverted,
		TokenID:     application.TokenID,
		SkillType:   application.SkillType,
	})
	if s.metrics != nil {
		s.metrics.CredentialsReverted.WithLabelValues(application.SkillType.String()).Inc()
	}
	s.logger.WarnContext(ctx, "credential application reverted",
		"token_id", application.TokenID,
		"owner", application.Owner,
		"skill_type", application.SkillType,
		"minted", application.Minted,
	)
	return nil
}

// Get returns the credential for a token id.
func (s *Service) Get(ctx context.Context, tokenID id.TokenID) (*models.Credential, error) {
	credential, err := s.store.FindByToken(ctx, tokenID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load credential")
	}
	return credential, nil
}

// ListByOwner returns the owner's token ids in first-minted order,
// unaffected by later updates to those credentials.
func (s *Service) ListByOwner(ctx context.Context, owner id.ParticipantID) ([]id.TokenID, error) {
	tokenIDs, err := s.store.ListByOwner(ctx, owner)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list credentials")
	}
	return tokenIDs, nil
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
