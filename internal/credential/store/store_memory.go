package store

import (
	"context"
	"sync"

	"skillmint/internal/credential/models"
	id "skillmint/pkg/domain"
	"skillmint/pkg/platform/sentinel"
)

type ownerSkillKey struct {
	owner id.ParticipantID
	skill id.SkillType
}

// InMemoryStore keeps credentials in memory. It owns the single-authority
// token id allocator and the insertion-ordered owner index; the index records
// first-minted order and is never reordered by later updates.
type InMemoryStore struct {
	mu          sync.RWMutex
	nextTokenID id.TokenID
	credentials map[id.TokenID]*models.Credential
	byOwnerKey  map[ownerSkillKey]id.TokenID
	byOwner     map[id.ParticipantID][]id.TokenID
}

// New constructs an empty in-memory credential store.
func New() *InMemoryStore {
	return &InMemoryStore{
		nextTokenID: 1,
		credentials: make(map[id.TokenID]*models.Credential),
		byOwnerKey:  make(map[ownerSkillKey]id.TokenID),
		byOwner:     make(map[id.ParticipantID][]id.TokenID),
	}
}

// Mint persists a new credential. Returns sentinel.ErrConflict if the
// (owner, skill type) pair already holds one.
func (s *InMemoryStore) Mint(_ context.Context, credential *models.Credential) (id.TokenID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := ownerSkillKey{owner: credential.Owner, skill: credential.SkillType}
	if _, exists := s.byOwnerKey[key]; exists {
		return 0, sentinel.ErrConflict
	}
	tokenID := s.nextTokenID
	s.nextTokenID++

	copyCredential := credential.Clone()
	copyCredential.TokenID = tokenID
	s.credentials[tokenID] = copyCredential
	s.byOwnerKey[key] = tokenID
	s.byOwner[credential.Owner] = append(s.byOwner[credential.Owner], tokenID)
	return tokenID, nil
}

func (s *InMemoryStore) FindByOwnerAndSkill(_ context.Context, owner id.ParticipantID, skill id.SkillType) (*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tokenID, ok := s.byOwnerKey[ownerSkillKey{owner: owner, skill: skill}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.credentials[tokenID].Clone(), nil
}

func (s *InMemoryStore) FindByToken(_ context.Context, tokenID id.TokenID) (*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	credential, ok := s.credentials[tokenID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return credential.Clone(), nil
}

func (s *InMemoryStore) Update(_ context.Context, credential *models.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.credentials[credential.TokenID]; !ok {
		return sentinel.ErrNotFound
	}
	s.credentials[credential.TokenID] = credential.Clone()
	return nil
}

// Delete removes a credential and its index entries. Compensation path for
// rolled-back mints.
func (s *InMemoryStore) Delete(_ context.Context, tokenID id.TokenID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	credential, ok := s.credentials[tokenID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.credentials, tokenID)
	delete(s.byOwnerKey, ownerSkillKey{owner: credential.Owner, skill: credential.SkillType})
	owned := s.byOwner[credential.Owner]
	for i, candidate := range owned {
		if candidate == tokenID {
			s.byOwner[credential.Owner] = append(owned[:i], owned[i+1:]...)
			break
		}
	}
	return nil
}

// ListByOwner returns the owner's token ids in first-minted order.
func (s *InMemoryStore) ListByOwner(_ context.Context, owner id.ParticipantID) ([]id.TokenID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]id.TokenID{}, s.byOwner[owner]...), nil
}
