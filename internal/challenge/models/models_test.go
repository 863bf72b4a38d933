package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	id "skillmint/pkg/domain"
)

func TestSuggestTimeLimit(t *testing.T) {
	assert.Equal(t, 40*time.Minute, SuggestTimeLimit(1))
	assert.Equal(t, 80*time.Minute, SuggestTimeLimit(5))
	assert.Equal(t, 130*time.Minute, SuggestTimeLimit(10))
}

func TestSuggestReward(t *testing.T) {
	assert.Equal(t, id.Amount(100), SuggestReward(1))
	assert.Equal(t, id.Amount(1000), SuggestReward(10))
}
