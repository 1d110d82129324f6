package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hugh/recipe-api/internal/api/dto"
	"golang.org/x/time/rate"
)

// RateLimiter hands out a token bucket per client key. Each bucket holds
// `requests` tokens and refills over `window`.
type RateLimiter struct {
	requests int
	every    rate.Limit
	clients  map[string]*client
	mu       sync.Mutex
	idle     time.Duration
	stop     chan struct{}
	once     sync.Once
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(requests int, windowSeconds int) *RateLimiter {
	if requests <= 0 {
		requests = 100
	}
	if windowSeconds <= 0 {
		windowSeconds = 60
	}
	window := time.Duration(windowSeconds) * time.Second

	rl := &RateLimiter{
		requests: requests,
		every:    rate.Limit(float64(requests) / window.Seconds()),
		clients:  make(map[string]*client),
		idle:     2 * window,
		stop:     make(chan struct{}),
	}
	go rl.cleanup(time.Minute)
	return rl
}

// Stop ends the background cleanup.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.evictIdle(now)
		}
	}
}

func (rl *RateLimiter) evictIdle(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, c := range rl.clients {
		if now.Sub(c.lastSeen) > rl.idle {
			delete(rl.clients, key)
		}
	}
}

func (rl *RateLimiter) limiterFor(key string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	c, ok := rl.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rl.every, rl.requests)}
		rl.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter
}

// Allow reports whether key may make a request now, the tokens left, and
// how long to wait when it may not.
func (rl *RateLimiter) Allow(key string) (bool, int, time.Duration) {
	now := time.Now()
	lim := rl.limiterFor(key, now)

	res := lim.ReserveN(now, 1)
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, 0, delay
	}
	remaining := int(math.Floor(lim.TokensAt(now)))
	if remaining < 0 {
		remaining = 0
	}
	return true, remaining, 0
}

func (rl *RateLimiter) middleware(keyFn func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, remaining, wait := rl.Allow(keyFn(r))

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.requests))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				writeJSON(w, http.StatusTooManyRequests, dto.ErrorResponse{Error: "Request was throttled."})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit limits requests per client IP.
func RateLimit(rl *RateLimiter) func(http.Handler) http.Handler {
	return rl.middleware(getClientIP)
}

// RateLimitByUser limits per authenticated user, falling back to the IP.
// It must run after Auth.
func RateLimitByUser(rl *RateLimiter) func(http.Handler) http.Handler {
	return rl.middleware(func(r *http.Request) string {
		if id := GetUserID(r.Context()); id != 0 {
			return "user:" + strconv.FormatUint(uint64(id), 10)
		}
		return getClientIP(r)
	})
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
