package middleware

import (
	"net/http"
	"sync"
	"time"

	"bizledger/internal/apierror"

	"github.com/gin-gonic/gin"
)

// rateEntry tracks request counts per IP within a sliding window.
type rateEntry struct {
	count     int
	windowEnd time.Time
}

// RateLimiter is a sliding-window per-IP limiter. Construct one per
// route group; state lives on the instance, not in package globals.
type RateLimiter struct {
	limit  int
	window time.Duration

	mu        sync.Mutex
	entries   map[string]*rateEntry
	lastPurge time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:     limit,
		window:    window,
		entries:   make(map[string]*rateEntry),
		lastPurge: time.Now(),
	}
}

// NewLoginRateLimiter limits login attempts to 20 per minute per IP.
func NewLoginRateLimiter() *RateLimiter {
	return NewRateLimiter(20, time.Minute)
}

func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Too many requests. Try again in a moment."))
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	rl.purgeLocked(now)

	entry, ok := rl.entries[ip]
	if !ok {
		entry = &rateEntry{}
		rl.entries[ip] = entry
	}
	if now.After(entry.windowEnd) {
		entry.count = 0
		entry.windowEnd = now.Add(rl.window)
	}
	entry.count++
	return entry.count <= rl.limit
}

// purgeLocked drops expired entries so IPs that never return don't
// accumulate. Runs at most once per five minutes, under the main lock.
func (rl *RateLimiter) purgeLocked(now time.Time) {
	if now.Sub(rl.lastPurge) < 5*time.Minute {
		return
	}
	for ip, entry := range rl.entries {
		if now.After(entry.windowEnd) {
			delete(rl.entries, ip)
		}
	}
	rl.lastPurge = now
}
