package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shamell/trustgate/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSignKey = "k7Vq2pZ9xW4mN8rT1yB6cD3fG5hJ0sL"
	testIssuer  = "shamell-auth"
)

func TestJWTResolver_Resolve(t *testing.T) {
	r := NewJWTResolver(testSignKey, testIssuer)

	t.Run("valid token", func(t *testing.T) {
		token, err := utils.GenerateSessionToken(testIssuer, "acc-9", time.Hour, testSignKey)
		require.NoError(t, err)

		sess, err := r.Resolve(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, "acc-9", sess.AccountID)
		assert.WithinDuration(t, time.Now().Add(time.Hour), sess.ExpiresAt, 5*time.Second)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := utils.GenerateSessionToken(testIssuer, "acc-9", -time.Minute, testSignKey)
		require.NoError(t, err)

		_, err = r.Resolve(context.Background(), token)
		assert.ErrorIs(t, err, ErrNoSession)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("foreign issuer", func(t *testing.T) {
		token, err := utils.GenerateSessionToken("someone-else", "acc-9", time.Hour, testSignKey)
		require.NoError(t, err)

		_, err = r.Resolve(context.Background(), token)
		assert.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("wrong key", func(t *testing.T) {
		token, err := utils.GenerateSessionToken(testIssuer, "acc-9", time.Hour, "another-key-0123456789")
		require.NoError(t, err)

		_, err = r.Resolve(context.Background(), token)
		assert.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("blank token", func(t *testing.T) {
		_, err := r.Resolve(context.Background(), "  ")
		assert.ErrorIs(t, err, ErrMalformedToken)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := r.Resolve(ctx, "whatever")
		assert.ErrorIs(t, err, context.Canceled)
	})
}
