package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	rateLimitLimitHeader     = "X-RateLimit-Limit"
	rateLimitRemainingHeader = "X-RateLimit-Remaining"
	retryAfterHeader         = "Retry-After"
)

// IPRateLimiter keeps one token bucket per client IP. Each bucket holds
// requests tokens and refills at requests per window, so a client may burst
// up to the full allowance and then proceeds at the average rate.
//
// Buckets idle for longer than the sweep interval are dropped lazily on the
// next lookup, which bounds memory by the number of recently active clients.
type IPRateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	idleAfter time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewIPRateLimiter allows requests per window for every client IP.
// Non-positive arguments fall back to 100 requests per minute.
func NewIPRateLimiter(requests int, window time.Duration) *IPRateLimiter {
	if requests <= 0 {
		requests = 100
	}
	if window <= 0 {
		window = time.Minute
	}
	return &IPRateLimiter{
		visitors:  make(map[string]*visitor),
		limit:     rate.Every(window / time.Duration(requests)),
		burst:     requests,
		idleAfter: 2 * window,
		now:       time.Now,
	}
}

// Limit returns the number of requests a fresh client may make at once.
func (l *IPRateLimiter) Limit() int {
	return l.burst
}

func (l *IPRateLimiter) limiter(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.idleAfter {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) >= l.idleAfter {
				delete(l.visitors, k)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

// Allow consumes one token for key and reports whether the request may
// proceed, how many tokens remain and, when rejected, how long to wait.
func (l *IPRateLimiter) Allow(key string) (ok bool, remaining int, retryAfter time.Duration) {
	now := l.now()
	lim := l.limiter(key, now)

	r := lim.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, 0, delay
	}
	return true, max(int(lim.TokensAt(now)), 0), 0
}

func (l *IPRateLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// RateLimit rejects clients that exceed their allowance with 429
// RATE_LIMITED. Every response carries X-RateLimit-Limit and
// X-RateLimit-Remaining; rejections also carry Retry-After in seconds.
func RateLimit(l *IPRateLimiter) gin.HandlerFunc {
	limit := strconv.Itoa(l.Limit())

	return func(c *gin.Context) {
		ok, remaining, retryAfter := l.Allow(c.ClientIP())

		c.Header(rateLimitLimitHeader, limit)
		c.Header(rateLimitRemainingHeader, strconv.Itoa(remaining))

		if !ok {
			c.Header(retryAfterHeader, strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
			abortWithError(c, http.StatusTooManyRequests, codeRateLimited, "too many requests, please try again later")
			return
		}

		c.Next()
	}
}
