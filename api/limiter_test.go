package api_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/realDragonium/mcwatch/api"
)

func TestRateLimiter_DeniesWhenLimitIsReached(t *testing.T) {
	tt := []struct {
		limit       int
		cooldown    time.Duration
		shouldAllow bool
	}{
		{limit: 3, cooldown: time.Minute, shouldAllow: false},
		{limit: 0, cooldown: time.Minute, shouldAllow: true},
	}

	for _, tc := range tt {
		name := fmt.Sprintf("limit: %v, cooldown: %v", tc.limit, tc.cooldown)
		t.Run(name, func(t *testing.T) {
			limiter := api.NewRateLimiter(tc.limit, tc.cooldown)
			for i := 0; i < tc.limit; i++ {
				if !limiter.Allow() {
					t.Fatal("expected request to be allowed")
				}
			}
			if limiter.Allow() != tc.shouldAllow {
				t.Errorf("got: %v; want: %v", !tc.shouldAllow, tc.shouldAllow)
			}
		})
	}
}

func TestRateLimiter_AllowsAgainAfterCooldown(t *testing.T) {
	limit := 5
	cooldown := time.Millisecond
	limiter := api.NewRateLimiter(limit, cooldown)

	for i := 0; i < limit+1; i++ {
		limiter.Allow()
	}

	time.Sleep(2 * cooldown)
	if !limiter.Allow() {
		t.Error("expected request to be allowed after the cooldown")
	}
}

func TestRateLimiter_NilAllowsEverything(t *testing.T) {
	var limiter *api.RateLimiter
	if !limiter.Allow() {
		t.Error("expected a nil limiter to allow")
	}
}

func TestRouter_RateLimitsServerRoutes(t *testing.T) {
	handler := api.New(context.Background(), &testMonitor{query: "ok"}, nil, nil)
	handler.Limiter = api.NewRateLimiter(1, time.Minute)
	router := handler.Router()

	if resp, _ := do(t, router, http.MethodGet, "/status"); resp.StatusCode != http.StatusOK {
		t.Fatalf("first request: got: %d; want: %d", resp.StatusCode, http.StatusOK)
	}
	resp, body := do(t, router, http.MethodPost, "/poll")
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("got: %d %q; want: %d", resp.StatusCode, body, http.StatusTooManyRequests)
	}
	if resp, _ := do(t, router, http.MethodGet, "/health"); resp.StatusCode != http.StatusOK {
		t.Errorf("health should not be limited but got: %d", resp.StatusCode)
	}
}
