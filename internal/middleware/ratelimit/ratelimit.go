package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/Skotchmaster/shop_api/internal/logging"
)

const maxTrackedKeys = 10000

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter is a per-client token bucket keyed by the real client IP.
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*entry
	rate    rate.Limit
	burst   int
	now     func() time.Time
}

func New(perSecond float64, burst int) *Limiter {
	return &Limiter{
		clients: make(map[string]*entry),
		rate:    rate.Limit(perSecond),
		burst:   burst,
		now:     time.Now,
	}
}

func (l *Limiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.clients[key]
	if !ok {
		if len(l.clients) >= maxTrackedKeys {
			l.evictLocked(now.Add(-time.Minute))
		}
		e = &entry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.clients[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

func (l *Limiter) evictLocked(before time.Time) {
	for k, e := range l.clients {
		if e.lastSeen.Before(before) {
			delete(l.clients, k)
		}
	}
	if len(l.clients) >= maxTrackedKeys {
		l.clients = make(map[string]*entry)
	}
}

// Middleware rejects requests over the limit with 429. A zero rate disables it.
func (l *Limiter) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if l.rate <= 0 {
			return next(c)
		}
		key := c.RealIP()
		if !l.allow(key) {
			logging.FromContext(c.Request().Context()).Warn("rate_limit_exceeded", "status", http.StatusTooManyRequests, "key", key)
			c.Response().Header().Set("Retry-After", "1")
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
		}
		return next(c)
	}
}
