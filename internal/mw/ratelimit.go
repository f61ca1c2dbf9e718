package mw

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long a client's bucket survives without requests.
const limiterIdleTTL = 10 * time.Minute

// ClientLimiters holds one token bucket per client key. Buckets of idle
// clients expire so the set does not grow with every address seen.
type ClientLimiters struct {
	buckets *cache.Cache
	r       rate.Limit
	b       int
	idle    time.Duration
}

// NewClientLimiters allows r requests per second with bursts of b per client.
func NewClientLimiters(r rate.Limit, b int, idle time.Duration) *ClientLimiters {
	return &ClientLimiters{buckets: cache.New(idle, idle), r: r, b: b, idle: idle}
}

// Allow spends a token from key's bucket, creating the bucket on first use.
func (l *ClientLimiters) Allow(key string) bool {
	if v, ok := l.buckets.Get(key); ok {
		lim := v.(*rate.Limiter)
		l.buckets.Set(key, lim, l.idle)
		return lim.Allow()
	}

	lim := rate.NewLimiter(l.r, l.b)
	if err := l.buckets.Add(key, lim, l.idle); err != nil {
		// Another request created it first.
		if v, ok := l.buckets.Get(key); ok {
			lim = v.(*rate.Limiter)
		}
	}
	return lim.Allow()
}

// retryAfter is the whole number of seconds until one token is back.
func (l *ClientLimiters) retryAfter() string {
	if l.r <= 0 || l.r == rate.Inf {
		return "1"
	}
	return strconv.Itoa(int(math.Ceil(1 / float64(l.r))))
}

// RateLimiter is a middleware limiting each client IP to r requests per
// second with bursts of b. Rejected requests get 429 and Retry-After.
func RateLimiter(r rate.Limit, b int) gin.HandlerFunc {
	limiters := NewClientLimiters(r, b, limiterIdleTTL)
	return func(c *gin.Context) {
		if !limiters.Allow(c.ClientIP()) {
			c.Header("Retry-After", limiters.retryAfter())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"success": false, "error": "too many requests"})
			return
		}
		c.Next()
	}
}
