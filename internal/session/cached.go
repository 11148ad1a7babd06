package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shamell/trustgate/internal/logger"
	"github.com/shamell/trustgate/internal/utils"
	"github.com/shamell/trustgate/models"
)

const cacheKeyPrefix = "trustgate:session:"

// CachedResolver caches successful resolutions of an inner Resolver in
// Redis. Failures are never cached, and a cache outage degrades to calling
// the inner resolver.
type CachedResolver struct {
	inner  Resolver
	client redis.UniversalClient
	ttl    time.Duration
	now    func() time.Time
}

// NewCachedResolver wraps inner with a Redis cache. Entries live for ttl or
// until the session expires, whichever comes first.
func NewCachedResolver(inner Resolver, client redis.UniversalClient, ttl time.Duration) *CachedResolver {
	return &CachedResolver{inner: inner, client: client, ttl: ttl, now: time.Now}
}

// NewRedisClient parses url (redis://host:port/db) and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(strings.TrimSpace(url))
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err = client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func cacheKey(token string) string {
	return cacheKeyPrefix + utils.Fingerprint(strings.TrimSpace(token))
}

func (c *CachedResolver) Resolve(ctx context.Context, token string) (models.Session, error) {
	log := logger.FromContext(ctx)
	key := cacheKey(token)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var sess models.Session
		if jsonErr := json.Unmarshal(raw, &sess); jsonErr == nil && sess.AccountID != "" {
			return sess, nil
		}
		log.Warn().Str("func", "CachedResolver.Resolve").Msg("dropping malformed session cache entry")
		c.client.Del(ctx, key)
	case errors.Is(err, redis.Nil):
	default:
		log.Warn().Err(err).Str("func", "CachedResolver.Resolve").Msg("session cache unavailable")
	}

	sess, err := c.inner.Resolve(ctx, token)
	if err != nil {
		return models.Session{}, err
	}

	ttl := c.ttl
	if !sess.ExpiresAt.IsZero() {
		if left := sess.ExpiresAt.Sub(c.now()); left < ttl {
			ttl = left
		}
	}
	if ttl <= 0 {
		return sess, nil
	}

	payload, err := json.Marshal(sess)
	if err != nil {
		return sess, nil
	}
	if err = c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		log.Warn().Err(err).Str("func", "CachedResolver.Resolve").Msg("failed to cache session")
	}

	return sess, nil
}

// Invalidate drops the cached entry for token, if any.
func (c *CachedResolver) Invalidate(ctx context.Context, token string) error {
	return c.client.Del(ctx, cacheKey(token)).Err()
}
