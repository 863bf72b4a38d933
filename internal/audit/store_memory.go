package audit

import (
	"context"
	"sync"

	id "skillmint/pkg/domain"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	events map[id.ParticipantID][]Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[id.ParticipantID][]Event)}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[id.ParticipantID][]Event)
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.Participant] = append(s.events[event.Participant], event)
	return nil
}

func (s *InMemoryStore) ListByParticipant(_ context.Context, participant id.ParticipantID) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events[participant]...), nil
}
