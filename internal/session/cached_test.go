package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shamell/trustgate/internal/mock"
	"github.com/shamell/trustgate/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return srv, client
}

func TestCachedResolver_CachesPositiveResults(t *testing.T) {
	srv, client := newTestRedis(t)
	ctrl := gomock.NewController(t)
	inner := mock.NewMockResolver(ctrl)

	inner.EXPECT().
		Resolve(gomock.Any(), opaqueToken).
		Return(models.Session{AccountID: "acc-1"}, nil).
		Times(1)

	c := NewCachedResolver(inner, client, time.Minute)
	for i := 0; i < 3; i++ {
		sess, err := c.Resolve(context.Background(), opaqueToken)
		require.NoError(t, err)
		assert.Equal(t, "acc-1", sess.AccountID)
	}

	key := cacheKey(opaqueToken)
	require.True(t, srv.Exists(key))
	assert.NotContains(t, key, opaqueToken)
	assert.Equal(t, time.Minute, srv.TTL(key))
}

func TestCachedResolver_NeverCachesFailures(t *testing.T) {
	srv, client := newTestRedis(t)
	ctrl := gomock.NewController(t)
	inner := mock.NewMockResolver(ctrl)

	inner.EXPECT().
		Resolve(gomock.Any(), opaqueToken).
		Return(models.Session{}, ErrNoSession).
		Times(2)

	c := NewCachedResolver(inner, client, time.Minute)
	for i := 0; i < 2; i++ {
		_, err := c.Resolve(context.Background(), opaqueToken)
		assert.ErrorIs(t, err, ErrNoSession)
	}
	assert.Empty(t, srv.Keys())
}

func TestCachedResolver_TTLBoundedBySessionExpiry(t *testing.T) {
	srv, client := newTestRedis(t)
	ctrl := gomock.NewController(t)
	inner := mock.NewMockResolver(ctrl)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	inner.EXPECT().
		Resolve(gomock.Any(), opaqueToken).
		Return(models.Session{AccountID: "acc-1", ExpiresAt: now.Add(10 * time.Second)}, nil)

	c := NewCachedResolver(inner, client, time.Minute)
	c.now = func() time.Time { return now }

	_, err := c.Resolve(context.Background(), opaqueToken)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, srv.TTL(cacheKey(opaqueToken)))
}

func TestCachedResolver_SkipsAlreadyExpiredSession(t *testing.T) {
	srv, client := newTestRedis(t)
	ctrl := gomock.NewController(t)
	inner := mock.NewMockResolver(ctrl)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	inner.EXPECT().
		Resolve(gomock.Any(), opaqueToken).
		Return(models.Session{AccountID: "acc-1", ExpiresAt: now.Add(-time.Second)}, nil)

	c := NewCachedResolver(inner, client, time.Minute)
	c.now = func() time.Time { return now }

	_, err := c.Resolve(context.Background(), opaqueToken)
	require.NoError(t, err)
	assert.Empty(t, srv.Keys())
}

func TestCachedResolver_FallsThroughWhenRedisIsDown(t *testing.T) {
	srv, client := newTestRedis(t)
	srv.Close()

	ctrl := gomock.NewController(t)
	inner := mock.NewMockResolver(ctrl)
	inner.EXPECT().
		Resolve(gomock.Any(), opaqueToken).
		Return(models.Session{AccountID: "acc-1"}, nil)

	c := NewCachedResolver(inner, client, time.Minute)
	sess, err := c.Resolve(context.Background(), opaqueToken)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", sess.AccountID)
}

func TestCachedResolver_DropsMalformedEntry(t *testing.T) {
	srv, client := newTestRedis(t)
	require.NoError(t, srv.Set(cacheKey(opaqueToken), "{not json"))

	ctrl := gomock.NewController(t)
	inner := mock.NewMockResolver(ctrl)
	inner.EXPECT().
		Resolve(gomock.Any(), opaqueToken).
		Return(models.Session{AccountID: "acc-2"}, nil)

	c := NewCachedResolver(inner, client, time.Minute)
	sess, err := c.Resolve(context.Background(), opaqueToken)
	require.NoError(t, err)
	assert.Equal(t, "acc-2", sess.AccountID)
}

func TestCachedResolver_Invalidate(t *testing.T) {
	srv, client := newTestRedis(t)
	require.NoError(t, srv.Set(cacheKey(opaqueToken), `{"account_id":"acc-1"}`))

	c := NewCachedResolver(nil, client, time.Minute)
	require.NoError(t, c.Invalidate(context.Background(), opaqueToken))
	assert.False(t, srv.Exists(cacheKey(opaqueToken)))
}

func TestNewRedisClient(t *testing.T) {
	srv := miniredis.RunT(t)

	client, err := NewRedisClient(context.Background(), "redis://"+srv.Addr())
	require.NoError(t, err)
	require.NoError(t, client.Close())

	_, err = NewRedisClient(context.Background(), "not a url")
	assert.Error(t, err)
}
