package testutil

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// throttle answers 429 once an API key exceeds its request rate.
type throttle struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func newThrottle(rps float64, burst int) *throttle {
	return &throttle{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

func (th *throttle) limiter(key string) *rate.Limiter {
	th.mu.RLock()
	limiter, ok := th.limiters[key]
	th.mu.RUnlock()
	if ok {
		return limiter
	}

	th.mu.Lock()
	defer th.mu.Unlock()

	if limiter, ok := th.limiters[key]; ok {
		return limiter
	}
	limiter = rate.NewLimiter(th.rps, th.burst)
	th.limiters[key] = limiter
	return limiter
}

// Throttle limits each API key to rps requests per second with the given burst.
// Rejected requests get the 429 body PostgREST gateways send.
func (f *FakeBackend) Throttle(rps float64, burst int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.throttle = newThrottle(rps, burst)
}

func (f *FakeBackend) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		f.mu.Lock()
		th := f.throttle
		f.mu.Unlock()

		if th != nil && !th.limiter(c.GetHeader("apikey")).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message": "rate limit exceeded",
				"hint":    "too many requests, please try again later",
			})
			return
		}
		c.Next()
	}
}
