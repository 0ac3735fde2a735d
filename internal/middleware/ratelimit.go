package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"logipro/internal/logger"
	"logipro/pkg/utils"
)

const (
	visitorIdleTTL = 15 * time.Minute
	sweepInterval  = 5 * time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP. Buckets idle for longer
// than visitorIdleTTL are swept.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     rate.Limit
	burst    int
	now      func() time.Time
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
	}
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = rl.now()
	return v.limiter
}

func (rl *RateLimiter) sweep() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-visitorIdleTTL)
	removed := 0
	for key, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, key)
			removed++
		}
	}
	return removed
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for range ticker.C {
		if n := rl.sweep(); n > 0 {
			logger.Debug("Rate limiter buckets swept", zap.Int("removed", n))
		}
	}
}

// RateLimitMiddleware rejects clients above rps with 429 and a Retry-After hint.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	rl := NewRateLimiter(rps, burst)
	go rl.sweepLoop()

	return func(c *gin.Context) {
		ip := c.ClientIP()
		l := rl.limiterFor(ip)
		if l.Allow() {
			c.Next()
			return
		}

		logger.WithRequestID(GetRequestID(c)).Warn("Rate limit exceeded",
			zap.String("ip", ip),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(l)))
		utils.ErrorResponse(c, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
		c.Abort()
	}
}

func retryAfterSeconds(l *rate.Limiter) int {
	if l.Limit() <= 0 {
		return 60
	}
	return int(math.Ceil(1 / float64(l.Limit())))
}
