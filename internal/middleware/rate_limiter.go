package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"cafebook/internal/apierror"

	"github.com/gin-gonic/gin"
)

// windowLimiter counts requests per client IP in fixed windows.
type windowLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*windowEntry
	sweepAt time.Time
}

type windowEntry struct {
	count     int
	windowEnd time.Time
}

func newWindowLimiter(limit int, window time.Duration) *windowLimiter {
	return &windowLimiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		entries: make(map[string]*windowEntry),
	}
}

// allow records one hit for key and reports whether it is within the limit,
// plus the end of the current window.
func (l *windowLimiter) allow(key string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.After(l.sweepAt) {
		// expired entries are dropped lazily, at most once per window
		for k, e := range l.entries {
			if now.After(e.windowEnd) {
				delete(l.entries, k)
			}
		}
		l.sweepAt = now.Add(l.window)
	}

	e, ok := l.entries[key]
	if !ok || now.After(e.windowEnd) {
		e = &windowEntry{windowEnd: now.Add(l.window)}
		l.entries[key] = e
	}
	e.count++
	return e.count <= l.limit, e.windowEnd
}

func (l *windowLimiter) handler(msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, end := l.allow(c.ClientIP())
		if !ok {
			retry := int(time.Until(end).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(msg))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter limits credential endpoints (login, OTP) to 20 attempts
// per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return newWindowLimiter(20, time.Minute).
		handler("Quá nhiều lần thử đăng nhập. Vui lòng thử lại sau 1 phút.")
}

// RateLimiter is the general API limiter.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return newWindowLimiter(limit, window).
		handler("Quá nhiều yêu cầu. Vui lòng thử lại sau.")
}
