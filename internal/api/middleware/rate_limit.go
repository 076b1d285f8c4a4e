package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"shortr/internal/pkg/errors"
	"shortr/internal/pkg/metrics"
	"shortr/internal/pkg/parser"
)

const (
	LimitRedirect = "redirect"
	LimitAPIWrite = "api_write"

	idleBucketTTL = 10 * time.Minute
)

// RateLimiter keeps one token bucket per client and limit type. Buckets
// refill continuously at limit tokens per minute.
type RateLimiter struct {
	store  sync.Map // map[string]*bucket
	limits map[string]int
	stop   chan struct{}
	once   sync.Once
}

type bucket struct {
	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

// NewRateLimiter takes per-minute limits keyed by limit type. A type with no
// positive limit is not limited.
func NewRateLimiter(limits map[string]int) *RateLimiter {
	rl := &RateLimiter{
		limits: limits,
		stop:   make(chan struct{}),
	}
	go rl.evictIdle()
	return rl
}

func (rl *RateLimiter) evictIdle() {
	ticker := time.NewTicker(idleBucketTTL)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.store.Range(func(key, value interface{}) bool {
				b := value.(*bucket)
				b.mu.Lock()
				if now.Sub(b.lastRefill) > idleBucketTTL {
					rl.store.Delete(key)
				}
				b.mu.Unlock()
				return true
			})
		}
	}
}

func (rl *RateLimiter) Close() {
	rl.once.Do(func() { close(rl.stop) })
}

// Allow takes a token from the bucket for key.
func (rl *RateLimiter) Allow(key string, limit int) bool {
	ok, _ := rl.take(key, limit, time.Now())
	return ok
}

// take reports whether a token was available and, if not, how long until
// the next one is.
func (rl *RateLimiter) take(key string, limit int, now time.Time) (bool, time.Duration) {
	val, _ := rl.store.LoadOrStore(key, &bucket{tokens: float64(limit), lastRefill: now})
	b := val.(*bucket)

	b.mu.Lock()
	defer b.mu.Unlock()

	perSecond := float64(limit) / 60.0
	b.tokens = math.Min(float64(limit), b.tokens+now.Sub(b.lastRefill).Seconds()*perSecond)
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	wait := (1 - b.tokens) / perSecond
	return false, time.Duration(wait * float64(time.Second))
}

// Handle limits requests per client IP for the given limit type.
func (rl *RateLimiter) Handle(limitType string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		limit := rl.limits[limitType]
		if limit <= 0 {
			return next
		}

		return func(w http.ResponseWriter, r *http.Request) {
			ok, wait := rl.take(parser.ClientIP(r)+":"+limitType, limit, time.Now())
			if !ok {
				metrics.RateLimited.WithLabelValues(limitType).Inc()
				seconds := int(math.Ceil(wait.Seconds()))
				if seconds < 1 {
					seconds = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				errors.WriteError(w, http.StatusTooManyRequests, errors.ErrCodeRateLimitExceeded, "Rate limit exceeded", nil)
				return
			}

			next(w, r)
		}
	}
}
