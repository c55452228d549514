package limiter

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ClientHeader names the request header that identifies a scoring client.
// Requests without it are keyed by remote host.
const ClientHeader = "X-Client-ID"

// Config bounds how often one client may submit populations.
type Config struct {
	RequestsPerMinute int // 0 disables limiting
	Burst             int // defaults to a tenth of RequestsPerMinute, at least 1
}

// RateLimiter keeps one token bucket per client
type RateLimiter struct {
	config   Config
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(config Config) *RateLimiter {
	if config.Burst <= 0 {
		config.Burst = max(config.RequestsPerMinute/10, 1)
	}
	return &RateLimiter{
		config:   config,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Enabled reports whether any limit is configured.
func (rl *RateLimiter) Enabled() bool { return rl.config.RequestsPerMinute > 0 }

// GetLimiter returns or creates the bucket of a client
func (rl *RateLimiter) GetLimiter(client string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if limiter, exists := rl.limiters[client]; exists {
		return limiter
	}
	limiter := rate.NewLimiter(rate.Limit(float64(rl.config.RequestsPerMinute)/60.0), rl.config.Burst)
	rl.limiters[client] = limiter
	return limiter
}

// Allow checks if the request is allowed without waiting
func (rl *RateLimiter) Allow(client string) bool {
	if !rl.Enabled() {
		return true
	}
	return rl.GetLimiter(client).Allow()
}

// Reset forgets a client's bucket
func (rl *RateLimiter) Reset(client string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	delete(rl.limiters, client)
}

// Len returns the number of tracked clients
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

// Middleware rejects requests over the client's limit with 429.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(ClientID(r)) {
			w.Header().Set("Retry-After", retryAfter(rl.config))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClientID identifies the caller of r.
func ClientID(r *http.Request) string {
	if id := r.Header.Get(ClientHeader); id != "" {
		return id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// retryAfter is the refill interval of one token, in whole seconds.
func retryAfter(config Config) string {
	every := time.Minute / time.Duration(max(config.RequestsPerMinute, 1))
	return strconv.Itoa(max(int(every.Seconds()), 1))
}
