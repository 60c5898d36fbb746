package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken(secret, Identity{UserID: 42, Role: "USER", Email: "a@b.io"}, 15)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), tok.Exp, 5*time.Second)

	id, err := ParseAccessToken(secret, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id.UserID)
	assert.Equal(t, "USER", id.Role)
	assert.Equal(t, "a@b.io", id.Email)
}

func TestParseAccessTokenRejects(t *testing.T) {
	good, err := NewAccessToken(secret, Identity{UserID: 1}, 15)
	require.NoError(t, err)

	expired, err := NewAccessToken(secret, Identity{UserID: 1}, -1)
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "1", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	zeroSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "0", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	cases := map[string]struct{ secret, token string }{
		"wrong secret": {"other", good.Token},
		"expired":      {secret, expired.Token},
		"alg none":     {secret, noneAlg},
		"zero subject": {secret, zeroSub},
		"garbage":      {secret, "not.a.jwt"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseAccessToken(tc.secret, tc.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestRefreshToken(t *testing.T) {
	rt, err := NewRefreshToken(7)
	require.NoError(t, err)
	assert.Len(t, rt.Raw, 96)
	h := HashRefreshRaw(rt.Raw)
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashRefreshRaw(rt.Raw))
	assert.NotEqual(t, strings.ToLower(rt.Raw), h)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("secret123", 4)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "secret123"))
	assert.False(t, VerifyPassword(hash, "secret124"))
}

func TestValidateCredentials(t *testing.T) {
	assert.NoError(t, ValidateCredentials("user@example.com", "secret1"))
	assert.ErrorIs(t, ValidateCredentials("", "secret1"), ErrInvalidEmail)
	assert.ErrorIs(t, ValidateCredentials("nope", "secret1"), ErrInvalidEmail)
	assert.ErrorIs(t, ValidateCredentials("user@example.com", "123"), ErrWeakPassword)
}
