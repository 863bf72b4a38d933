package store

import (
	"context"
	"sync"

	"skillmint/internal/proof/models"
	id "skillmint/pkg/domain"
	"skillmint/pkg/platform/sentinel"
)

// InMemoryStore keeps proofs in memory. It owns the single-authority proof
// id allocator and the insertion-ordered solver index. MarkVerified is a
// compare-and-set: it fails on an already-verified proof so two racing
// verification attempts cannot both win.
type InMemoryStore struct {
	mu       sync.RWMutex
	nextID   id.ProofID
	proofs   map[id.ProofID]*models.Proof
	bySolver map[id.ParticipantID][]id.ProofID
}

// New constructs an empty in-memory proof store.
func New() *InMemoryStore {
	return &InMemoryStore{
		nextID:   1,
		proofs:   make(map[id.ProofID]*models.Proof),
		bySolver: make(map[id.ParticipantID][]id.ProofID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, proof *models.Proof) (id.ProofID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	proofID := s.nextID
	s.nextID++

	copyProof := *proof
	copyProof.ID = proofID
	s.proofs[proofID] = &copyProof
	s.bySolver[proof.Solver] = append(s.bySolver[proof.Solver], proofID)
	return proofID, nil
}

func (s *InMemoryStore) FindByID(_ context.Context, proofID id.ProofID) (*models.Proof, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	proof, ok := s.proofs[proofID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copyProof := *proof
	return &copyProof, nil
}

// MarkVerified flips the verified flag. Returns sentinel.ErrConflict if the
// proof is already verified.
func (s *InMemoryStore) MarkVerified(_ context.Context, proofID id.ProofID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	proof, ok := s.proofs[proofID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if proof.Verified {
		return sentinel.ErrConflict
	}
	proof.Verified = true
	return nil
}

// ClearVerified is the compensation path for a rolled-back verification
// unit. It must only run while the proof's verification lock is held.
func (s *InMemoryStore) ClearVerified(_ context.Context, proofID id.ProofID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	proof, ok := s.proofs[proofID]
	if !ok {
		return sentinel.ErrNotFound
	}
	proof.Verified = false
	return nil
}

func (s *InMemoryStore) ListBySolver(_ context.Context, solver id.ParticipantID) ([]*models.Proof, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.bySolver[solver]
	proofs := make([]*models.Proof, 0, len(ids))
	for _, proofID := range ids {
		copyProof := *s.proofs[proofID]
		proofs = append(proofs, &copyProof)
	}
	return proofs, nil
}
