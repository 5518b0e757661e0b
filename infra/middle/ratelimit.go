package middle

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mstgnz/gopaysafe/infra/response"
	"golang.org/x/time/rate"
)

// RateLimitConfig holds the token bucket sizes. Gateway calls get their own, stricter bucket.
type RateLimitConfig struct {
	PerMinute        int
	Burst            int
	PaymentPerMinute int
	PaymentBurst     int
	IdleTimeout      time.Duration
}

// DefaultRateLimitConfig allows 100 requests and 30 gateway calls per minute per client
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		PerMinute:        100,
		Burst:            20,
		PaymentPerMinute: 30,
		PaymentBurst:     5,
		IdleTimeout:      3 * time.Minute,
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client and tier
type RateLimiter struct {
	visitors map[string]*visitor
	mu       sync.Mutex
	config   RateLimitConfig
	now      func() time.Time
}

// NewRateLimiter creates a rate limiter. Call Cleanup periodically to drop idle clients.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	defaults := DefaultRateLimitConfig()
	if cfg.PerMinute <= 0 {
		cfg.PerMinute = defaults.PerMinute
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaults.Burst
	}
	if cfg.PaymentPerMinute <= 0 {
		cfg.PaymentPerMinute = defaults.PaymentPerMinute
	}
	if cfg.PaymentBurst <= 0 {
		cfg.PaymentBurst = defaults.PaymentBurst
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = defaults.IdleTimeout
	}

	return &RateLimiter{
		visitors: make(map[string]*visitor),
		config:   cfg,
		now:      time.Now,
	}
}

// Allow takes a token from the bucket of key
func (rl *RateLimiter) Allow(key string, payment bool) bool {
	return rl.limiter(key, payment).Allow()
}

func (rl *RateLimiter) limiter(key string, payment bool) *rate.Limiter {
	tier := "general"
	perMinute, burst := rl.config.PerMinute, rl.config.Burst
	if payment {
		tier = "payment"
		perMinute, burst = rl.config.PaymentPerMinute, rl.config.PaymentBurst
	}
	bucket := key + ":" + tier

	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[bucket]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60), burst)}
		rl.visitors[bucket] = v
	}
	v.lastSeen = rl.now()
	return v.limiter
}

// Cleanup removes buckets idle for longer than the configured timeout
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > rl.config.IdleTimeout {
			delete(rl.visitors, key)
		}
	}
}

// Size returns the number of live buckets
func (rl *RateLimiter) Size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// RateLimitMiddleware creates a rate limiting middleware
func RateLimitMiddleware(rl *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "ip:" + GetClientIP(r)

			if !rl.Allow(key, isGatewayCall(r)) {
				w.Header().Set("Retry-After", "60")
				response.Error(w, http.StatusTooManyRequests, "Rate limit exceeded", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// isGatewayCall reports whether r reaches the payment gateway. Form validation stays local.
func isGatewayCall(r *http.Request) bool {
	if r.Method != http.MethodPost || !strings.HasPrefix(r.URL.Path, "/v1/payments/") {
		return false
	}
	return strings.TrimSuffix(r.URL.Path, "/") != "/v1/payments/validate"
}
