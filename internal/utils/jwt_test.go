package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccessTokenCarriesIdentityClaims(t *testing.T) {
	at, err := NewAccessToken("secret", 42, "donor@example.com", "DONOR", 15)
	require.NoError(t, err)
	require.NotEmpty(t, at.Token)

	parsed, err := jwt.Parse(at.Token, func(tok *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, float64(42), claims["sub"])
	assert.Equal(t, "donor@example.com", claims["email"])
	assert.Equal(t, "DONOR", claims["role"])
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), at.Exp, time.Minute)
}

func TestAccessTokenRejectsWrongSecret(t *testing.T) {
	at, err := NewAccessToken("secret", 42, "donor@example.com", "DONOR", 15)
	require.NoError(t, err)

	_, err = jwt.Parse(at.Token, func(tok *jwt.Token) (interface{}, error) {
		return []byte("other"), nil
	})
	assert.Error(t, err)
}

func TestNewRefreshTokenIsRandom(t *testing.T) {
	a, err := NewRefreshToken(30)
	require.NoError(t, err)
	b, err := NewRefreshToken(30)
	require.NoError(t, err)

	assert.NotEqual(t, a.Raw, b.Raw)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 30), a.Exp, time.Minute)
}

func TestHashRefreshRawIsDeterministic(t *testing.T) {
	h1 := HashRefreshRaw("token-value")
	h2 := HashRefreshRaw("token-value")

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64) // hex encoded SHA-256
	assert.NotEqual(t, h1, HashRefreshRaw("other"))
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret!", 4)
	require.NoError(t, err)

	assert.True(t, VerifyPassword(hash, "s3cret!"))
	assert.False(t, VerifyPassword(hash, "wrong"))
}

func TestHashPasswordClampsOutOfRangeCost(t *testing.T) {
	// A misconfigured BCRYPT_COST must not break registration.
	hash, err := HashPassword("s3cret!", 99)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "s3cret!"))

	hash, err = HashPassword("s3cret!", -1)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "s3cret!"))
}
