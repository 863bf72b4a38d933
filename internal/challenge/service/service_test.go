package service

// Unit tests for the challenge lifecycle: creation validation, escrow
// funding, and creator-only idempotent deactivation.

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

	"skillmint/internal/audit"
	"skillmint/internal/challenge/models"
	"skillmint/internal/challenge/store"
	escrowservice "skillmint/internal/escrow/service"
	escrowstore "skillmint/internal/escrow/store"
	id "skillmint/pkg/domain"
	dErrors "skillmint/pkg/domain-errors"
	"skillmint/pkg/platform/sentinel"
	"skillmint/pkg/testutil"
)

type ServiceSuite struct {
	suite.Suite
	store      *store.InMemoryStore
	escrow     *escrowservice.Service
	service    *Service
	auditStore *audit.InMemoryStore
}

func (s *ServiceSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.auditStore = audit.NewInMemoryStore()
	auditor := audit.NewPublisher(s.auditStore)

	s.store = store.New()
	s.escrow = escrowservice.NewService(escrowstore.New(), s.store, auditor, logger)
	s.service = NewService(s.store, s.escrow, auditor, logger)
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func validParams() models.CreateParams {
	return models.CreateParams{
		SkillType:     "go-profiling",
		Difficulty:    5,
		TimeLimit:     models.SuggestTimeLimit(5),
		Reward:        models.SuggestReward(5),
		Funds:         2000,
		ContentDigest: "sha256:challenge-content",
	}
}

func (s *ServiceSuite) TestCreate_Validation() {
	cases := []struct {
		name   string
		mutate func(*models.CreateParams)
		code   dErrors.Code
	}{
		{"difficulty below minimum", func(p *models.CreateParams) { p.Difficulty = 0 }, dErrors.CodeValidation},
		{"difficulty above maximum", func(p *models.CreateParams) { p.Difficulty = 11 }, dErrors.CodeValidation},
		{"zero time limit", func(p *models.CreateParams) { p.TimeLimit = 0 }, dErrors.CodeValidation},
		{"negative time limit", func(p *models.CreateParams) { p.TimeLimit = -time.Minute }, dErrors.CodeValidation},
		{"missing skill type", func(p *models.CreateParams) { p.SkillType = "" }, dErrors.CodeValidation},
		{"funds below reward", func(p *models.CreateParams) { p.Funds = p.Reward - 1 }, dErrors.CodeInsufficientFunds},
	}

	for _, tc := range cases {
		s.T().Run(tc.name, func(t *testing.T) {
			params := validParams()
			tc.mutate(&params)
			_, err := s.service.Create(context.Background(), testutil.TestParticipants.Creator, params)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, tc.code), "expected code %s, got %v", tc.code, err)
		})
	}

	s.T().Run("missing creator returns CodeUnauthorized", func(t *testing.T) {
		_, err := s.service.Create(context.Background(), "", validParams())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.T().Run("rejections leave no record", func(t *testing.T) {
		challenges, err := s.store.ListByCreator(context.Background(), testutil.TestParticipants.Creator)
		require.NoError(t, err)
		assert.Empty(t, challenges)
	})
}

func (s *ServiceSuite) TestCreate_HoldsFundsInEscrow() {
	params := validParams()
	challenge, err := s.service.Create(context.Background(), testutil.TestParticipants.Creator, params)
	s.Require().NoError(err)

	s.Equal(id.ChallengeID(1), challenge.ID)
	s.True(challenge.Active)
	s.Equal(testutil.TestParticipants.Creator, challenge.Creator)
	s.Equal(params.Reward, challenge.Reward)

	held, err := s.escrow.HeldFor(context.Background(), challenge.ID)
	s.Require().NoError(err)
	s.Equal(params.Funds, held, "the full provided funds must be held, not just one reward")

	events, err := s.auditStore.ListByParticipant(context.Background(), testutil.TestParticipants.Creator)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(audit.ActionChallengeCreated, events[0].Action)
	s.Equal(challenge.ID, events[0].ChallengeID)
}

// failingEscrow stands in for an escrow layer whose hold always fails.
type failingEscrow struct{}

func (failingEscrow) Hold(context.Context, id.ChallengeID, id.Amount) error {
	return errors.New("escrow unavailable")
}

func (s *ServiceSuite) TestCreate_EscrowHoldFailureLeavesNoRecord() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := NewService(s.store, failingEscrow{}, audit.NewPublisher(s.auditStore), logger)

	_, err := service.Create(context.Background(), testutil.TestParticipants.Creator, validParams())
	s.Require().Error(err)

	_, err = s.store.FindByID(context.Background(), 1)
	s.True(errors.Is(err, sentinel.ErrNotFound), "a challenge without a hold must not survive")

	challenges, err := s.store.ListByCreator(context.Background(), testutil.TestParticipants.Creator)
	s.Require().NoError(err)
	s.Empty(challenges)

	events, err := s.auditStore.ListByParticipant(context.Background(), testutil.TestParticipants.Creator)
	s.Require().NoError(err)
	s.Empty(events, "a failed create must not be audited as created")
}

func (s *ServiceSuite) TestCreate_FundsEqualRewardAccepted() {
	params := validParams()
	params.Funds = params.Reward
	_, err := s.service.Create(context.Background(), testutil.TestParticipants.Creator, params)
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestDeactivate_CreatorOnly() {
	challenge, err := s.service.Create(context.Background(), testutil.TestParticipants.Creator, validParams())
	s.Require().NoError(err)

	err = s.service.Deactivate(context.Background(), challenge.ID, testutil.TestParticipants.Alice)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	loaded, err := s.service.Get(context.Background(), challenge.ID)
	s.Require().NoError(err)
	s.True(loaded.Active, "a rejected deactivation must not change state")
}

func (s *ServiceSuite) TestDeactivate_Idempotent() {
	challenge, err := s.service.Create(context.Background(), testutil.TestParticipants.Creator, validParams())
	s.Require().NoError(err)

	s.Require().NoError(s.service.Deactivate(context.Background(), challenge.ID, testutil.TestParticipants.Creator))
	s.Require().NoError(s.service.Deactivate(context.Background(), challenge.ID, testutil.TestParticipants.Creator))

	loaded, err := s.service.Get(context.Background(), challenge.ID)
	s.Require().NoError(err)
	s.False(loaded.Active)

	// The no-op repeat must not produce a second audit record.
	events, err := s.auditStore.ListByParticipant(context.Background(), testutil.TestParticipants.Creator)
	s.Require().NoError(err)
	var deactivations int
	for _, event := range events {
		if event.Action == audit.ActionChallengeDeactivated {
			deactivations++
		}
	}
	s.Equal(1, deactivations)
}

func (s *ServiceSuite) TestDeactivate_UnknownChallenge() {
	err := s.service.Deactivate(context.Background(), 9999, testutil.TestParticipants.Creator)
	s.Require().Error(err)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *ServiceSuite) TestListByCreator_InsertionOrder() {
	var created []id.ChallengeID
	for i := 0; i < 3; i++ {
		challenge, err := s.service.Create(context.Background(), testutil.TestParticipants.Creator, validParams())
		s.Require().NoError(err)
		created = append(created, challenge.ID)
	}
	_, err := s.service.Create(context.Background(), testutil.TestParticipants.Bob, validParams())
	s.Require().NoError(err)

	challenges, err := s.service.ListByCreator(context.Background(), testutil.TestParticipants.Creator)
	s.Require().NoError(err)
	s.Require().Len(challenges, 3)
	for i, challenge := range challenges {
		s.Equal(created[i], challenge.ID)
	}
}
