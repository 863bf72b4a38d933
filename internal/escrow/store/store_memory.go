package store

import (
	"context"
	"sync"

	id "skillmint/pkg/domain"
	dErrors "skillmint/pkg/domain-errors"
	"skillmint/pkg/platform/sentinel"
)

// InMemoryStore tracks held balances per challenge and accrued balances per
// recipient. Transfers debit and credit under one lock so a release is
// atomic with respect to concurrent releases against the same challenge.
type InMemoryStore struct {
	mu       sync.RWMutex
	held     map[id.ChallengeID]id.Amount
	balances map[id.ParticipantID]id.Amount
}

// New constructs an empty in-memory escrow store.
func New() *InMemoryStore {
	return &InMemoryStore{
		held:     make(map[id.ChallengeID]id.Amount),
		balances: make(map[id.ParticipantID]id.Amount),
	}
}

func (s *InMemoryStore) Hold(_ context.Context, challengeID id.ChallengeID, amount id.Amount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.held[challengeID] += amount
	return nil
}

func (s *InMemoryStore) HeldFor(_ context.Context, challengeID id.ChallengeID) (id.Amount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	held, ok := s.held[challengeID]
	if !ok {
		return 0, sentinel.ErrNotFound
	}
	return held, nil
}

// Transfer moves amount from the challenge's held balance to the recipient.
// The debit and credit happen under one lock acquisition.
func (s *InMemoryStore) Transfer(_ context.Context, challengeID id.ChallengeID, recipient id.ParticipantID, amount id.Amount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	held, ok := s.held[challengeID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if held < amount {
		return dErrors.New(dErrors.CodeInsufficientFunds, "held balance below reward amount")
	}
	s.held[challengeID] = held - amount
	s.balances[recipient] += amount
	return nil
}

func (s *InMemoryStore) BalanceOf(_ context.Context, recipient id.ParticipantID) (id.Amount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balances[recipient], nil
}
