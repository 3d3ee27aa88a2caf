package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "storefront-test"},
		JWT: config.JWTConfig{
			Secret:             "0123456789abcdef0123456789abcdef",
			AccessTokenExpiry:  time.Hour,
			RefreshTokenExpiry: 24 * time.Hour,
		},
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	jm := NewJWTManager(testConfig())

	token, err := jm.GenerateAccessToken(42, "shopper@example.com", true)
	require.NoError(t, err)

	claims, err := jm.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "shopper@example.com", claims.Email)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, "user:42", claims.Subject)
}

func TestRefreshTokenRejectedAsAccess(t *testing.T) {
	jm := NewJWTManager(testConfig())

	token, err := jm.GenerateRefreshToken(7, "shopper@example.com")
	require.NoError(t, err)

	_, err = jm.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	claims, err := jm.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.False(t, claims.IsAdmin)
}

func TestTokenSignedWithOtherSecret(t *testing.T) {
	other := testConfig()
	other.JWT.Secret = "ffffffffffffffffffffffffffffffff"

	token, err := NewJWTManager(other).GenerateAccessToken(1, "a@example.com", false)
	require.NoError(t, err)

	_, err = NewJWTManager(testConfig()).ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredToken(t *testing.T) {
	cfg := testConfig()
	cfg.JWT.AccessTokenExpiry = -time.Minute

	jm := NewJWTManager(cfg)
	token, err := jm.GenerateAccessToken(1, "a@example.com", false)
	require.NoError(t, err)

	_, err = jm.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc.def", ExtractTokenFromHeader("Bearer abc.def"))
	assert.Equal(t, "abc.def", ExtractTokenFromHeader("bearer abc.def"))
	assert.Equal(t, "", ExtractTokenFromHeader("Basic Zm9vOmJhcg=="))
	assert.Equal(t, "", ExtractTokenFromHeader("Bearer "))
}

func TestPasswordManager(t *testing.T) {
	pm := NewPasswordManager(bcrypt.MinCost)

	hash, err := pm.HashPassword("Storefront1")
	require.NoError(t, err)
	assert.NoError(t, pm.VerifyPassword("Storefront1", hash))
	assert.Error(t, pm.VerifyPassword("storefront1", hash))

	_, err = pm.HashPassword("short")
	assert.ErrorIs(t, err, ErrWeakPassword)
	_, err = pm.HashPassword("alllowercase1")
	assert.Error(t, err)
	_, err = pm.HashPassword("NoDigitsHere")
	assert.Error(t, err)
}
