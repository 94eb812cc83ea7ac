package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"inventory-manager/internal/config"
	"inventory-manager/internal/logger"
)

const keyPrefix = "inventory:company-user:"

// CompanyResolver maps a user id to its company id.
type CompanyResolver interface {
	ResolveCompany(ctx context.Context, userID string) (int, error)
}

// CompanyCache fronts a CompanyResolver with redis. Only successful lookups are
// cached; errors (including not-found) always go to the underlying resolver.
// A nil client makes the cache a pass-through. Redis failures are logged and
// never fail a lookup.
type CompanyCache struct {
	client *redis.Client
	next   CompanyResolver
	ttl    time.Duration
}

func NewCompanyCache(client *redis.Client, next CompanyResolver, ttl time.Duration) *CompanyCache {
	return &CompanyCache{client: client, next: next, ttl: ttl}
}

// NewClient connects to redis and pings it. It returns nil when Addr is empty or
// the server is unreachable, so callers run without a cache.
func NewClient(ctx context.Context, cfg config.RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Logger.Warn().
			Err(err).
			Str("redis_addr", cfg.Addr).
			Msg("Redis unavailable, company cache disabled")
		_ = client.Close()
		return nil
	}

	logger.Logger.Info().
		Str("redis_addr", cfg.Addr).
		Msg("Redis connected")
	return client
}

func cacheKey(userID string) string {
	return keyPrefix + userID
}

func (c *CompanyCache) ResolveCompany(ctx context.Context, userID string) (int, error) {
	if c.client == nil {
		return c.next.ResolveCompany(ctx, userID)
	}

	cached, err := c.client.Get(ctx, cacheKey(userID)).Result()
	switch {
	case err == nil:
		if id, convErr := strconv.Atoi(cached); convErr == nil {
			logger.Debug(ctx).Str("user_id", userID).Msg("Company cache hit")
			return id, nil
		}
		logger.Warn(ctx).Str("user_id", userID).Str("value", cached).Msg("Discarding malformed company cache entry")
	case errors.Is(err, redis.Nil):
	default:
		logger.Warn(ctx).Err(err).Msg("Company cache read failed")
	}

	id, err := c.next.ResolveCompany(ctx, userID)
	if err != nil {
		return 0, err
	}
	c.Prime(ctx, userID, id)
	return id, nil
}

// Prime stores a known mapping, e.g. right after the company is created.
func (c *CompanyCache) Prime(ctx context.Context, userID string, companyID int) {
	if c.client == nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(userID), strconv.Itoa(companyID), c.ttl).Err(); err != nil {
		logger.Warn(ctx).Err(err).Str("user_id", userID).Msg("Company cache write failed")
	}
}
