package redirect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"shortr/internal/engine/links"
	"shortr/internal/pkg/metrics"
	"shortr/internal/platform/config"
)

// RedisCache shares the redirect cache between server instances. Redis
// failures degrade to cache misses.
type RedisCache struct {
	client    *redis.Client
	ttl       time.Duration
	namespace string
}

func NewRedisCache(cfg config.RedisConfig, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return newRedisCache(client, ttl, cfg.Namespace), nil
}

func newRedisCache(client *redis.Client, ttl time.Duration, namespace string) *RedisCache {
	if namespace == "" {
		namespace = "shortr"
	}
	return &RedisCache{client: client, ttl: ttl, namespace: namespace}
}

func (c *RedisCache) key(shortCode string) string {
	return c.namespace + ":link:" + shortCode
}

func (c *RedisCache) Get(ctx context.Context, shortCode string) (*CachedLink, bool) {
	data, err := c.client.Get(ctx, c.key(shortCode)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("shortcode", shortCode).Msg("Redis cache read failed")
		}
		metrics.CacheMiss.WithLabelValues("redis").Inc()
		return nil, false
	}

	var link CachedLink
	if err := json.Unmarshal(data, &link); err != nil {
		log.Warn().Err(err).Str("shortcode", shortCode).Msg("Discarding malformed cache entry")
		metrics.CacheMiss.WithLabelValues("redis").Inc()
		return nil, false
	}

	metrics.CacheHit.WithLabelValues("redis").Inc()
	return &link, true
}

func (c *RedisCache) Set(ctx context.Context, shortCode string, link *links.LinkRecord) {
	data, err := json.Marshal(NewCachedLink(link))
	if err != nil {
		log.Warn().Err(err).Str("shortcode", shortCode).Msg("Failed to encode cache entry")
		return
	}
	if err := c.client.Set(ctx, c.key(shortCode), data, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("shortcode", shortCode).Msg("Redis cache write failed")
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
