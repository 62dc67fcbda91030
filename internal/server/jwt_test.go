package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-funnel/internal/config"
)

func testJWTService(secret string) *JWTService {
	return NewJWTService(&config.JWTConfig{Secret: secret, ExpirationHours: 1})
}

func TestJWTGenerateAndValidate(t *testing.T) {
	svc := testJWTService("test-secret-that-is-long-enough")

	token, err := svc.GenerateToken("admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	operator, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", operator)
}

func TestJWTValidateFailures(t *testing.T) {
	svc := testJWTService("test-secret-that-is-long-enough")

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.ValidateToken("not.a.token")
		assert.Error(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := svc.GenerateToken("admin")
		require.NoError(t, err)

		other := testJWTService("a-completely-different-secret!!")
		_, err = other.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("empty subject", func(t *testing.T) {
		token, err := svc.GenerateToken("")
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid token claims")
	})

	t.Run("expired token", func(t *testing.T) {
		expired := NewJWTService(&config.JWTConfig{Secret: "test-secret-that-is-long-enough", ExpirationHours: -1})
		token, err := expired.GenerateToken("admin")
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.Error(t, err)
	})
}
