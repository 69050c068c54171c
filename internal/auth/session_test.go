package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessions_NoSecret(t *testing.T) {
	_, err := NewSessions("", time.Hour)
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestSessions_IssueAndParse(t *testing.T) {
	s, err := NewSessions("testsecret", time.Hour)
	require.NoError(t, err)

	token, expires, err := s.Issue("cus-1", "9876543210")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)

	t.Run("Success", func(t *testing.T) {
		claims, err := s.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, "cus-1", claims.CustomerID)
		assert.Equal(t, "9876543210", claims.Phone)
	})

	t.Run("InvalidToken", func(t *testing.T) {
		_, err := s.Parse("invalid-token-string")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other, err := NewSessions("secret2", time.Hour)
		require.NoError(t, err)
		_, err = other.Parse(token)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("Expired", func(t *testing.T) {
		expired, err := NewSessions("testsecret", time.Hour)
		require.NoError(t, err)
		expired.clock = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		old, _, err := expired.Issue("cus-1", "9876543210")
		require.NoError(t, err)

		_, err = s.Parse(old)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("Unexpected signing method", func(t *testing.T) {
		none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{CustomerID: "cus-1"}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = s.Parse(none)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestSessionContext(t *testing.T) {
	_, ok := SessionFrom(context.Background())
	assert.False(t, ok)

	ctx := WithSession(context.Background(), &Claims{CustomerID: "cus-1"})
	c, ok := SessionFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, "cus-1", c.CustomerID)
}
