// File: internal/auth/jwt_test.go
package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("unit-test-secret")

func TestTokenPairRoundTrip(t *testing.T) {
	pair, err := GenerateTokenPair(42, secret)
	require.NoError(t, err)

	userID, err := ValidateAccessToken(pair.AccessToken, secret)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)

	userID, err = ValidateRefreshToken(pair.RefreshToken, secret)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestTokenTypesNotInterchangeable(t *testing.T) {
	pair, err := GenerateTokenPair(42, secret)
	require.NoError(t, err)

	_, err = ValidateAccessToken(pair.RefreshToken, secret)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ValidateRefreshToken(pair.AccessToken, secret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestWrongKeyRejected(t *testing.T) {
	pair, err := GenerateTokenPair(42, secret)
	require.NoError(t, err)

	_, err = ValidateAccessToken(pair.AccessToken, []byte("other-key"))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGarbageRejected(t *testing.T) {
	_, err := ValidateAccessToken("not.a.token", secret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
