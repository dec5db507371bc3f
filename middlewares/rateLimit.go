package middlewares

import (
	"net/http"
	"sync"

	"github.com/ChurchPortal/services"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type limiterSet struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	r        rate.Limit
	b        int
}

func (s *limiterSet) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	limiter, exists := s.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(s.r, s.b)
		s.limiters[key] = limiter
	}
	return limiter
}

// RateLimitMiddleware keeps one token bucket per key. Each call gets its own
// set of buckets so routes with different limits never share one.
func RateLimitMiddleware(r rate.Limit, b int, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	set := &limiterSet{limiters: make(map[string]*rate.Limiter), r: r, b: b}

	return func(c *gin.Context) {
		if !set.get(keyFunc(c)).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please slow down :("})
			return
		}

		c.Next()
	}
}

func ClientIPKey(c *gin.Context) string {
	return c.ClientIP()
}

// UserKey limits signed-in callers by subject and everyone else by address.
func UserKey(c *gin.Context) string {
	if v, ok := c.Get(ClaimsKey); ok {
		if claims, ok := v.(*services.AccessClaims); ok && claims != nil {
			return "user:" + claims.UserID
		}
	}
	return "ip:" + c.ClientIP()
}
