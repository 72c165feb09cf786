package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierFor(t *testing.T) {
	assert.Equal(t, TierBronze, TierFor(0))
	assert.Equal(t, TierBronze, TierFor(499))
	assert.Equal(t, TierSilver, TierFor(500))
	assert.Equal(t, TierSilver, TierFor(999))
	assert.Equal(t, TierGold, TierFor(1000))
	assert.Equal(t, TierGold, TierFor(50000))
}

func TestRedeemValue(t *testing.T) {
	assert.Equal(t, 5.0, RedeemValue(100))
	assert.Equal(t, 7.5, RedeemValue(150))
	assert.Equal(t, 50.0, RedeemValue(1000))
	assert.Equal(t, 0.0, RedeemValue(0))
}
