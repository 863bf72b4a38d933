package store

import (
	"context"
	"sync"

	"skillmint/internal/challenge/models"
	id "skillmint/pkg/domain"
	"skillmint/pkg/platform/sentinel"
)

// Error Contract:
// All store methods follow this error pattern:
// - Return sentinel.ErrNotFound when the requested entity does not exist
// - Return nil for successful operations
// - Return wrapped errors with context for infrastructure failures

// InMemoryStore keeps challenges in memory. It owns the single-authority id
// allocator for the challenges table: ids are handed out under the store
// lock, monotonically increasing from 1.
type InMemoryStore struct {
	mu         sync.RWMutex
	nextID     id.ChallengeID
	challenges map[id.ChallengeID]*models.Challenge
	byCreator  map[id.ParticipantID][]id.ChallengeID // insertion-ordered index
}

// New constructs an empty in-memory challenge store.
func New() *InMemoryStore {
	return &InMemoryStore{
		nextID:     1,
		challenges: make(map[id.ChallengeID]*models.Challenge),
		byCreator:  make(map[id.ParticipantID][]id.ChallengeID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, challenge *models.Challenge) (id.ChallengeID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	challengeID := s.nextID
	s.nextID++

	copyChallenge := *challenge
	copyChallenge.ID = challengeID
	s.challenges[challengeID] = &copyChallenge
	s.byCreator[challenge.Creator] = append(s.byCreator[challenge.Creator], challengeID)
	return challengeID, nil
}

func (s *InMemoryStore) FindByID(_ context.Context, challengeID id.ChallengeID) (*models.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	challenge, ok := s.challenges[challengeID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copyChallenge := *challenge
	return &copyChallenge, nil
}

// Deactivate clears the active flag. Deactivating an already-inactive
// challenge is a no-op; the flag never flips back to true.
func (s *InMemoryStore) Deactivate(_ context.Context, challengeID id.ChallengeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	challenge, ok := s.challenges[challengeID]
	if !ok {
		return sentinel.ErrNotFound
	}
	challenge.Active = false
	return nil
}

// Delete removes the challenge record. Only the creation path uses this, to
// compensate a create whose escrow hold failed.
func (s *InMemoryStore) Delete(_ context.Context, challengeID id.ChallengeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	challenge, ok := s.challenges[challengeID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.challenges, challengeID)
	ids := s.byCreator[challenge.Creator]
	for i, existing := range ids {
		if existing == challengeID {
			s.byCreator[challenge.Creator] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

// RewardFor resolves the reward amount for a challenge. The escrow layer
// reads this at release time instead of carrying its own copy.
func (s *InMemoryStore) RewardFor(_ context.Context, challengeID id.ChallengeID) (id.Amount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	challenge, ok := s.challenges[challengeID]
	if !ok {
		return 0, sentinel.ErrNotFound
	}
	return challenge.Reward, nil
}

func (s *InMemoryStore) ListByCreator(_ context.Context, creator id.ParticipantID) ([]*models.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byCreator[creator]
	challenges := make([]*models.Challenge, 0, len(ids))
	for _, challengeID := range ids {
		copyChallenge := *s.challenges[challengeID]
		challenges = append(challenges, &copyChallenge)
	}
	return challenges, nil
}
