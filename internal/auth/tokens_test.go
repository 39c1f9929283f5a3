package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) *TokenManager {
	t.Helper()
	m, err := NewTokenManager("test-secret-with-enough-entropy-000", time.Hour)
	require.NoError(t, err)
	return m
}

func TestNewTokenManager_RejectsBadInput(t *testing.T) {
	_, err := NewTokenManager("", time.Hour)
	assert.Error(t, err)
	_, err = NewTokenManager("secret", 0)
	assert.Error(t, err)
}

func TestIssueAndValidate(t *testing.T) {
	m := newManager(t)

	token, expires, err := m.Issue("admin", RoleAdmin)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, RoleAdmin, claims.Role)

	ac := FromClaims(claims)
	assert.True(t, ac.IsAdmin())
	assert.Equal(t, "admin", ac.Username)
}

func TestValidate_Expired(t *testing.T) {
	m := newManager(t)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := m.Issue("admin", RoleAdmin)
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Validate(token)
	assert.True(t, errors.Is(err, ErrInvalidToken), "got %v", err)
}

func TestValidate_WrongSecret(t *testing.T) {
	token, _, err := newManager(t).Issue("admin", RoleAdmin)
	require.NoError(t, err)

	other, err := NewTokenManager("a-completely-different-secret-0000", time.Hour)
	require.NoError(t, err)
	_, err = other.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_RejectsNoneAlgorithm(t *testing.T) {
	claims := &Claims{
		Username: "admin",
		Role:     RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newManager(t).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_Garbage(t *testing.T) {
	m := newManager(t)
	for _, tok := range []string{"", "abc", "a.b.c"} {
		_, err := m.Validate(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", tok)
	}
}

func TestAnonymousIsNotAdmin(t *testing.T) {
	assert.False(t, Anonymous.IsAdmin())
	assert.Equal(t, Anonymous, FromClaims(nil))
	assert.False(t, Context{Authenticated: true, Role: "viewer"}.IsAdmin())
}
