package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("cust-42", time.Hour)
	require.NoError(t, err)

	customerID, err := ExtractCustomerIDFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, "cust-42", customerID)
}

func TestExpiredTokenRejected(t *testing.T) {
	token, err := GenerateToken("cust-42", -time.Minute)
	require.NoError(t, err)

	_, err = ExtractCustomerIDFromToken(token)
	assert.Error(t, err)
}

func TestGarbageTokenRejected(t *testing.T) {
	_, err := ExtractCustomerIDFromToken("not.a.token")
	assert.Error(t, err)
}

func TestHashTokenIsStable(t *testing.T) {
	assert.Equal(t, HashToken("abc"), HashToken("abc"))
	assert.NotEqual(t, HashToken("abc"), HashToken("abd"))
}
