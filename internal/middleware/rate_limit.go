package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const limiterIdle = 5 * time.Minute

type rateLimiter struct {
	limiter *rate.Limiter
	expires time.Time
}

// RateLimit applies an IP based token bucket allowing perMinute requests per
// minute with a burst of half that. Each call owns its own set of buckets.
func RateLimit(perMinute int) gin.HandlerFunc {
	r := rate.Every(time.Minute / time.Duration(max(perMinute, 1)))
	burst := max(perMinute/2, 1)

	var (
		mu       sync.Mutex
		limiters = map[string]*rateLimiter{}
	)
	get := func(key string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()

		now := time.Now()
		for k, l := range limiters {
			if now.After(l.expires) {
				delete(limiters, k)
			}
		}
		l, ok := limiters[key]
		if !ok {
			l = &rateLimiter{limiter: rate.NewLimiter(r, burst)}
			limiters[key] = l
		}
		l.expires = now.Add(limiterIdle)
		return l.limiter
	}

	return func(c *gin.Context) {
		if !get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please try again later."})
			return
		}
		c.Next()
	}
}
