package services

import (
	"context"
	"encoding/json"
	"fmt"
		"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/temcen/estaterec/internal/recommend"
)

const (
	recommendationKeyPrefix = "recommendations:"
	pricingKeyPrefix        = "pricing:"
	priceRangesKey          = pricingKeyPrefix + "ranges"
)

// Cache stores computed results as JSON.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration)
	DeletePrefix(ctx context.Context, prefix string) int
}

// ResultCache is a Cache backed by the warm Redis instance. Redis failures are
// logged and treated as misses so callers always fall through to computing.
type ResultCache struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewResultCache(client *redis.Client, logger *logrus.Logger) *ResultCache {
	return &ResultCache{
		client: client,
		logger: logger,
	}
}

func (c *ResultCache) Get(ctx context.Context, key string, dest interface{}) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.WithError(err).WithField("key", key).Warn("Failed to read cached result")
		}
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Discarding undecodable cached result")
		return false
	}
	return true
}

func (c *ResultCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Failed to encode result for cache")
		return
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Failed to cache result")
	}
}

// Ping reports whether the cache instance is reachable.
func (c *ResultCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// DeletePrefix removes every key starting with prefix and returns how many were removed.
func (c *ResultCache) DeletePrefix(ctx context.Context, prefix string) int {
	var (
		cursor  uint64
		removed int
	)

	for {
		keys, next, err := c.client.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			c.logger.WithError(err).WithField("prefix", prefix).Warn("Failed to scan cache keys")
			return removed
		}

		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				c.logger.WithError(err).WithField("prefix", prefix).Warn("Failed to delete cache keys")
				return removed
			}
			removed += int(n)
		}

		cursor = next
		if cursor == 0 {
			return removed
		}
	}
}

func recommendationKey(userID uuid.UUID, limit int) string {
	return fmt.Sprintf("%s%s:%d", recommendationKeyPrefix, userID, limit)
}

func userRecommendationPrefix(userID uuid.UUID) string {
	return recommendationKeyPrefix + userID.String() + ":"
}

// locationPriceKey keys on the city exactly as the estimators compare it.
func locationPriceKey(city string, lat, lng float64, bedroom, bathroom, floors int) string {
	return fmt.Sprintf("%slocation:%s:%.5f:%.5f:%d:%d:%d",
		pricingKeyPrefix, recommend.NormalizeCity(city), lat, lng, bedroom, bathroom, floors)
}

func estatePriceKey(estateID uuid.UUID) string {
	return pricingKeyPrefix + "estate:" + estateID.String()
}
