package oracle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenPresence(t *testing.T) {
	verifier := NewTokenPresence()

	valid, err := verifier.Verify(context.Background(), "zkp_abc123")
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = verifier.Verify(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, valid)

	valid, err = verifier.Verify(context.Background(), "   ")
	require.NoError(t, err)
	assert.False(t, valid)
}
