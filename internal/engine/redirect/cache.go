package redirect

import (
	"context"
	"fmt"
	"sync"
	"time"

	"shortr/internal/engine/links"
	"shortr/internal/pkg/metrics"
	"shortr/internal/platform/config"
)

// CachedLink is the part of a record the redirect path needs. Records never
// change their target, so a cached entry can only go stale by TTL.
type CachedLink struct {
	Shortcode   string    `json:"shortcode"`
	OriginalURL string    `json:"original_url"`
	ExpiryDate  time.Time `json:"expiry_date"`
	CachedAt    time.Time `json:"cached_at"`
}

func NewCachedLink(link *links.LinkRecord) *CachedLink {
	return &CachedLink{
		Shortcode:   link.Shortcode,
		OriginalURL: link.OriginalURL,
		ExpiryDate:  link.ExpiryDate,
		CachedAt:    time.Now(),
	}
}

type LinkCache interface {
	Get(ctx context.Context, shortCode string) (*CachedLink, bool)
	Set(ctx context.Context, shortCode string, link *links.LinkRecord)
}

// NewLinkCache builds the cache selected by cfg.Driver.
func NewLinkCache(cfg config.CacheConfig) (LinkCache, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemoryCache(cfg.LinkTTL), nil
	case "redis":
		return NewRedisCache(cfg.Redis, cfg.LinkTTL)
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
}

type MemoryCache struct {
	store sync.Map // map[shortcode]*CachedLink
	ttl   time.Duration
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl: ttl,
	}
}

func (c *MemoryCache) Get(ctx context.Context, shortCode string) (*CachedLink, bool) {
	val, ok := c.store.Load(shortCode)
	if !ok {
		metrics.CacheMiss.WithLabelValues("memory").Inc()
		return nil, false
	}

	link := val.(*CachedLink)
	if time.Since(link.CachedAt) > c.ttl {
		c.store.Delete(shortCode)
		metrics.CacheMiss.WithLabelValues("memory").Inc()
		return nil, false
	}

	metrics.CacheHit.WithLabelValues("memory").Inc()
	return link, true
}

func (c *MemoryCache) Set(ctx context.Context, shortCode string, link *links.LinkRecord) {
	c.store.Store(shortCode, NewCachedLink(link))
}
