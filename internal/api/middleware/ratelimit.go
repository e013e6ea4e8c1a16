package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	domainerrors "github.com/hostdesk/livechat-service/internal/domain/errors"
)

// idleLimiterTTL is how long an unused per-client limiter is kept.
const idleLimiterTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware applies a token bucket per client key.
type RateLimitMiddleware struct {
	requestsPerSecond float64
	burst             int
	now               func() time.Time

	mu        sync.Mutex
	clients   map[string]*clientLimiter
	lastSweep time.Time
}

// NewRateLimitMiddleware creates a limiter allowing requestsPerSecond with
// the given burst per client. A non-positive rate disables limiting.
func NewRateLimitMiddleware(requestsPerSecond float64, burst int) *RateLimitMiddleware {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimitMiddleware{
		requestsPerSecond: requestsPerSecond,
		burst:             burst,
		now:               time.Now,
		clients:           make(map[string]*clientLimiter),
	}
}

// Limit returns a gin middleware keyed by client IP and widget id.
func (m *RateLimitMiddleware) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.requestsPerSecond <= 0 {
			c.Next()
			return
		}

		key := c.ClientIP() + "|" + c.Param("widgetId")
		if !m.allow(key) {
			HandleError(c, domainerrors.NewRateLimitedError("slow down before sending more messages"))
			return
		}
		c.Next()
	}
}

func (m *RateLimitMiddleware) allow(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if now.Sub(m.lastSweep) > idleLimiterTTL {
		for k, cl := range m.clients {
			if now.Sub(cl.lastSeen) > idleLimiterTTL {
				delete(m.clients, k)
			}
		}
		m.lastSweep = now
	}

	cl, ok := m.clients[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(m.requestsPerSecond), m.burst)}
		m.clients[key] = cl
	}
	cl.lastSeen = now
	return cl.limiter.AllowN(now, 1)
}
