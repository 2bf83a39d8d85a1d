package api

import (
	"errors"
	"net/http"
	"sync"
	"time"
)

var ErrOverRateLimit = errors.New("too many requests, try again later")

// RateLimiter counts requests in fixed windows of rateCooldown and refuses
// everything above rateLimit until the window ends. A limit of zero or less
// lets everything through.
type RateLimiter struct {
	mu            sync.Mutex
	rateCounter   int
	rateStartTime time.Time
	rateLimit     int
	rateCooldown  time.Duration
}

func NewRateLimiter(ratelimit int, cooldown time.Duration) *RateLimiter {
	return &RateLimiter{
		rateLimit:    ratelimit,
		rateCooldown: cooldown,
	}
}

func (r *RateLimiter) Allow() bool {
	if r == nil || r.rateLimit <= 0 {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if time.Since(r.rateStartTime) >= r.rateCooldown {
		r.rateCounter = 0
		r.rateStartTime = time.Now()
	}
	if r.rateCounter < r.rateLimit {
		r.rateCounter++
		return true
	}
	return false
}

// Middleware answers 429 once the limit is reached.
func (r *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if !r.Allow() {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, ErrOverRateLimit.Error())
			return
		}
		next.ServeHTTP(w, req)
	})
}
