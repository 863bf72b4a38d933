// Package service derives deposit account references from credentials.
package service

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"log/slog"
	"time"

	"golang.org/x/crypto/sha3"

	"skillmint/internal/audit"
	credentialmodels "skillmint/internal/credential/models"
	id "skillmint/pkg/domain"
	dErrors "skillmint/pkg/domain-errors"
)

// CredentialReader resolves a credential by its token id.
type CredentialReader interface {
	FindByToken(ctx context.Context, tokenID id.TokenID) (*credentialmodels.Credential, error)
}

type Option func(*Service)

// Service binds credentials to deposit account references on request. The
// derivation is salted with the request time, so repeated calls for the same
// token yield different references. Nothing is persisted beyond the audit
// record; the reference is informational, not a stable linkage.
type Service struct {
	credentials CredentialReader
	auditor     *audit.Publisher
	logger      *slog.Logger
	now         func() time.Time
}

func NewService(credentials CredentialReader, auditor *audit.Publisher, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		credentials: credentials,
		auditor:     auditor,
		logger:      logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// WithClock overrides the time source; used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// DeriveAccount returns a hex account reference for the credential. Only the
// credential's owner may derive one.
func (s *Service) DeriveAccount(ctx context.Context, tokenID id.TokenID, requester id.ParticipantID) (string, error) {
	credential, err := s.credentials.FindByToken(ctx, tokenID)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load credential")
	}
	if credential.Owner != requester {
		return "", dErrors.New(dErrors.CodeUnauthorized, "only the credential owner can derive an account")
	}

	account := deriveReference(tokenID, s.now())

	if s.auditor != nil {
		if err := s.auditor.Emit(ctx, audit.Event{
			Participant: requester,
			Action:      audit.ActionAccountDerived,
			TokenID:     tokenID,
			SkillType:   credential.SkillType,
		}); err != nil {
			s.logger.WarnContext(ctx, "failed to emit audit event", "action", audit.ActionAccountDerived, "error", err)
		}
	}
	s.logger.InfoContext(ctx, "account reference derived",
		"token_id", tokenID,
		"owner", requester,
	)
	return account, nil
}

// deriveReference hashes the token id and the derivation instant with
// SHA3-256. The timestamp in the preimage makes references single-use.
func deriveReference(tokenID id.TokenID, at time.Time) string {
	var preimage [16]byte
	binary.BigEndian.PutUint64(preimage[:8], uint64(tokenID))
	binary.BigEndian.PutUint64(preimage[8:], uint64(at.UnixNano()))
	digest := sha3.Sum256(preimage[:])
	return "0x" + hex.EncodeToString(digest[:])
}
