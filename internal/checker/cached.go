package checker

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Cache is the subset of the redis client the cached provider needs.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// CachedChecker serves successful lookups from a cache for ttl. Failures
// are never cached, and a broken cache degrades to a direct lookup.
type CachedChecker struct {
	next   Provider
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedChecker(next Provider, cache Cache, ttl time.Duration, logger *zap.Logger) *CachedChecker {
	return &CachedChecker{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With(zap.String("component", "whois_cache")),
	}
}

func (c *CachedChecker) Name() string { return c.next.Name() }

func (c *CachedChecker) Lookup(ctx context.Context, domainName string) (*Record, error) {
	key := cacheKey(domainName)

	var cached Record
	if err := c.cache.GetJSON(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	record, err := c.next.Lookup(ctx, domainName)
	if err != nil {
		return nil, err
	}

	if err := c.cache.SetJSON(ctx, key, record, c.ttl); err != nil {
		c.logger.Warn("Failed to cache whois record",
			zap.String("domain", domainName),
			zap.Error(err),
		)
	}

	return record, nil
}

func cacheKey(domainName string) string {
	name, err := NormalizeName(domainName)
	if err != nil {
		name = strings.ToLower(strings.TrimSpace(domainName))
	}
	return "whois:lookup:" + name
}
