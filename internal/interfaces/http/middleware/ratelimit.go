package middleware

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/erp/client/internal/interfaces/http/dto"
)

// RateLimiter keeps one token bucket per client IP
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
}

// NewRateLimiter allows perSecond requests per client with the given burst.
// A non-positive perSecond disables limiting.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		clients: make(map[string]*rate.Limiter),
		limit:   limit,
		burst:   burst,
	}
}

// Allow reports whether a request from key may proceed
func (rl *RateLimiter) Allow(key string) bool {
	return rl.limiter(key).Allow()
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	l, ok := rl.clients[key]
	if !ok {
		l = rate.NewLimiter(rl.limit, rl.burst)
		rl.clients[key] = l
	}
	return l
}

// RateLimit answers 429 once a client exhausts its bucket
func RateLimit(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				dto.NewErrorResponse(dto.ErrCodeRateLimited, "Too many requests. Please try again later."))
			return
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.burst))
		c.Next()
	}
}
