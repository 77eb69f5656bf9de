package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, role string, expiresAt time.Time) string {
	t.Helper()

	claims := jwt.MapClaims{"role": role, "sub": "42"}
	if !expiresAt.IsZero() {
		claims["exp"] = expiresAt.Unix()
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestSession_SetTokenReadsClaims(t *testing.T) {
	s := New()

	err := s.SetToken(signedToken(t, RoleCustomer, time.Now().Add(time.Hour)))
	require.NoError(t, err)

	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, RoleCustomer, s.Role())
	assert.NotEmpty(t, s.Token())
}

func TestSession_SetTokenRejectsMalformed(t *testing.T) {
	s := New()

	err := s.SetToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.False(t, s.IsAuthenticated())
}

func TestSession_ExpiredTokenIsNotAuthenticated(t *testing.T) {
	s := New()

	err := s.SetToken(signedToken(t, RoleCustomer, time.Now().Add(-time.Minute)))
	require.NoError(t, err)

	assert.False(t, s.IsAuthenticated())
}

func TestSession_TokenWithoutExpiryIsAuthenticated(t *testing.T) {
	s := New()

	err := s.SetToken(signedToken(t, RoleCustomer, time.Time{}))
	require.NoError(t, err)

	assert.True(t, s.IsAuthenticated())
}

func TestSession_GuestByDefault(t *testing.T) {
	s := New()

	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Role())
	assert.Empty(t, s.Token())
}

func TestSession_Clear(t *testing.T) {
	s := New()
	require.NoError(t, s.SetToken(signedToken(t, RoleCustomer, time.Now().Add(time.Hour))))

	s.Clear()

	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Role())
	assert.Empty(t, s.Token())
}

func TestSession_InvalidateAdvancesGeneration(t *testing.T) {
	s := New()
	require.NoError(t, s.SetToken(signedToken(t, RoleCustomer, time.Now().Add(time.Hour))))
	before := s.Generation()

	s.Invalidate()

	assert.Greater(t, s.Generation(), before)
}

func TestSession_Invalidate(t *testing.T) {
	s := New()
	require.NoError(t, s.SetToken(signedToken(t, "seller", time.Now().Add(time.Hour))))

	s.Invalidate()

	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Role())
}
