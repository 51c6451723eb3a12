package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestRoundTrip(t *testing.T) {
	tok, err := GenerateAccessToken("user-1", "landlord", secret, time.Hour)
	require.NoError(t, err)

	claims, err := ValidateAccessToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "landlord", claims.Role)
}

func TestValidate_WrongSecret(t *testing.T) {
	tok, err := GenerateAccessToken("user-1", "user", secret, time.Hour)
	require.NoError(t, err)

	_, err = ValidateAccessToken(tok, "other")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidate_Expired(t *testing.T) {
	tok, err := GenerateAccessToken("user-1", "user", secret, -time.Minute)
	require.NoError(t, err)

	_, err = ValidateAccessToken(tok, secret)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidate_Garbage(t *testing.T) {
	_, err := ValidateAccessToken("not.a.token", secret)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = GenerateAccessToken("user-1", "user", "", time.Hour)
	assert.Error(t, err)
}
