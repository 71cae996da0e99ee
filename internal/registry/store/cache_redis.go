package store

import (
	"context"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	platformredis "github.com/Sayrarh/Fast/internal/platform/redis"
	id "github.com/Sayrarh/Fast/pkg/domain"
)

const (
	cacheKeyDomainOf = "registrar:domainof:"
	cacheKeyActive   = "registrar:active:"
)

// RedisCache is a read-through cache for resolution queries. Entries carry a
// TTL as a safety net; every committed mutation invalidates the keys it
// touches, so the TTL only matters when invalidation itself fails. Cache
// errors degrade to misses: the store stays authoritative.
type RedisCache struct {
	client *platformredis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisCache(client *platformredis.Client, ttl time.Duration, logger *slog.Logger) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, logger: logger}
}

// GetDomainOf returns the cached domain for an owner. The empty string is a
// valid cached value (identity known to hold no domain).
func (c *RedisCache) GetDomainOf(ctx context.Context, owner id.Address) (string, bool) {
	val, err := c.client.Get(ctx, cacheKeyDomainOf+owner.String()).Result()
	if err != nil {
		if err != goredis.Nil {
			c.logger.WarnContext(ctx, "cache read failed", "key", "domainof", "error", err.Error())
		}
		return "", false
	}
	return val, true
}

func (c *RedisCache) SetDomainOf(ctx context.Context, owner id.Address, domain string) {
	if err := c.client.Set(ctx, cacheKeyDomainOf+owner.String(), domain, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "cache write failed", "key", "domainof", "error", err.Error())
	}
}

func (c *RedisCache) GetActive(ctx context.Context, domain string) (bool, bool) {
	val, err := c.client.Get(ctx, cacheKeyActive+domain).Result()
	if err != nil {
		if err != goredis.Nil {
			c.logger.WarnContext(ctx, "cache read failed", "key", "active", "error", err.Error())
		}
		return false, false
	}
	return val == "1", true
}

func (c *RedisCache) SetActive(ctx context.Context, domain string, active bool) {
	val := "0"
	if active {
		val = "1"
	}
	if err := c.client.Set(ctx, cacheKeyActive+domain, val, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "cache write failed", "key", "active", "error", err.Error())
	}
}

// InvalidateOwner drops cached resolutions for the given owners.
func (c *RedisCache) InvalidateOwner(ctx context.Context, owners ...id.Address) {
	keys := make([]string, 0, len(owners))
	for _, o := range owners {
		keys = append(keys, cacheKeyDomainOf+o.String())
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.WarnContext(ctx, "cache invalidation failed", "key", "domainof", "error", err.Error())
	}
}

// InvalidateDomain drops cached activity flags for the given domains.
func (c *RedisCache) InvalidateDomain(ctx context.Context, domains ...string) {
	keys := make([]string, 0, len(domains))
	for _, d := range domains {
		keys = append(keys, cacheKeyActive+d)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.WarnContext(ctx, "cache invalidation failed", "key", "active", "error", err.Error())
	}
}
