package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore_AppendAndList(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	first := Event{
		Timestamp:   time.Now(),
		Participant: "alice",
		Action:      ActionProofVerified,
		ProofID:     1,
		Digest:      "sha256:abc",
		Decision:    DecisionAccepted,
	}
	second := Event{
		Timestamp:   time.Now(),
		Participant: "alice",
		Action:      ActionCredentialMinted,
		TokenID:     1,
	}

	require.NoError(t, store.Append(ctx, first))
	require.NoError(t, store.Append(ctx, second))
	require.NoError(t, store.Append(ctx, Event{Participant: "bob", Action: ActionProofSubmitted}))

	events, err := store.ListByParticipant(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, ActionProofVerified, events[0].Action)
	assert.Equal(t, ActionCredentialMinted, events[1].Action)
}

func TestPublisher_SyncEmit(t *testing.T) {
	store := NewInMemoryStore()
	p := NewPublisher(store)

	err := p.Emit(context.Background(), Event{Participant: "alice", Action: ActionVerificationFailed, Decision: DecisionRejected})
	require.NoError(t, err)

	events, err := p.List(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.False(t, events[0].Timestamp.IsZero(), "publisher should stamp events")
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := NewInMemoryStore()
	p := NewPublisher(store, WithAsyncBuffer(8))

	for i := 0; i < 5; i++ {
		require.NoError(t, p.Emit(context.Background(), Event{Participant: "bob", Action: ActionRewardReleased}))
	}
	p.Close()

	events, err := store.ListByParticipant(context.Background(), "bob")
	require.NoError(t, err)
	assert.Len(t, events, 5)
}
