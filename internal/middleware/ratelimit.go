package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/forgo/petzadopt/internal/model"
)

// RateLimiter hands out requests from a per-client token bucket. A bucket
// holds up to Rate+Burst tokens and refills continuously at Rate per Window.
type RateLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	rate     int
	window   time.Duration
	burst    int
	cleanup  time.Duration
	stopOnce sync.Once
	stopChan chan struct{}
}

type bucket struct {
	tokens   float64
	refilled time.Time
}

// RateLimitConfig holds rate limiter configuration
type RateLimitConfig struct {
	Rate    int           // Requests per window (default 100)
	Window  time.Duration // Time window (default 1 minute)
	Burst   int           // Extra requests allowed on top of Rate (default 20)
	Cleanup time.Duration // Idle bucket sweep interval (default 5 minutes)
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.Rate <= 0 {
		cfg.Rate = 100
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 20
	}
	if cfg.Cleanup <= 0 {
		cfg.Cleanup = 5 * time.Minute
	}

	rl := &RateLimiter{
		buckets:  make(map[string]*bucket),
		rate:     cfg.Rate,
		window:   cfg.Window,
		burst:    cfg.Burst,
		cleanup:  cfg.Cleanup,
		stopChan: make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Limit is the advertised per-window request budget
func (rl *RateLimiter) Limit() int {
	return rl.rate
}

// Stop ends the sweep goroutine. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopChan) })
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanup)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep(time.Now())
		case <-rl.stopChan:
			return
		}
	}
}

// sweep drops buckets that would be full by now; recreating them is equivalent
func (rl *RateLimiter) sweep(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, b := range rl.buckets {
		if rl.refill(b, now) >= rl.capacity() {
			delete(rl.buckets, key)
		}
	}
}

func (rl *RateLimiter) capacity() float64 {
	return float64(rl.rate + rl.burst)
}

// perToken is the time it takes to earn one token back
func (rl *RateLimiter) perToken() time.Duration {
	return rl.window / time.Duration(rl.rate)
}

func (rl *RateLimiter) refill(b *bucket, now time.Time) float64 {
	elapsed := now.Sub(b.refilled)
	if elapsed > 0 {
		b.tokens = math.Min(rl.capacity(), b.tokens+float64(elapsed)/float64(rl.perToken()))
		b.refilled = now
	}
	return b.tokens
}

// Allow takes one token for key. When denied, resetTime is when the next
// token becomes available; when allowed, it is when the bucket is full again.
func (rl *RateLimiter) Allow(key string) (allowed bool, remaining int, resetTime time.Time) {
	return rl.allowAt(key, time.Now())
}

func (rl *RateLimiter) allowAt(key string, now time.Time) (bool, int, time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{tokens: rl.capacity(), refilled: now}
		rl.buckets[key] = b
	}
	tokens := rl.refill(b, now)

	if tokens < 1 {
		wait := time.Duration((1 - tokens) * float64(rl.perToken()))
		return false, 0, now.Add(wait)
	}

	b.tokens--
	missing := rl.capacity() - b.tokens
	return true, int(b.tokens), now.Add(time.Duration(missing * float64(rl.perToken())))
}

// RateLimitRule gives requests matching Method and path Prefix their own
// limiter. An empty Method matches any method.
type RateLimitRule struct {
	Method  string
	Prefix  string
	Limiter *RateLimiter
}

func (rule RateLimitRule) matches(r *http.Request) bool {
	if rule.Method != "" && rule.Method != r.Method {
		return false
	}
	return strings.HasPrefix(r.URL.Path, rule.Prefix)
}

// RateLimit returns a middleware that applies rate limiting per client. The
// first matching rule picks the limiter; everything else uses limiter.
func RateLimit(limiter *RateLimiter, rules ...RateLimitRule) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			active := limiter
			for _, rule := range rules {
				if rule.matches(r) {
					active = rule.Limiter
					break
				}
			}

			allowed, remaining, resetTime := active.Allow(ClientKey(r))

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(active.Limit()))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

			if !allowed {
				retryAfter := int(math.Ceil(time.Until(resetTime).Seconds()))
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

				model.NewRateLimitError(retryAfter).WriteJSON(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
