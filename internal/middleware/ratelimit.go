package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// RateLimit allows each client limit requests per window, refilled evenly.
// Idle client limiters expire after two windows.
func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	every := rate.Every(per / time.Duration(limit))
	limiters := gocache.New(2*per, per)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIPForRateLimit(r)
			if !limiterFor(limiters, ip, every, limit).Allow() {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "60")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]string{"code": "rate_limited", "message": "too many requests"}})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// limiterFor returns the single limiter shared by every request from ip and
// pushes its expiry forward.
func limiterFor(limiters *gocache.Cache, ip string, every rate.Limit, burst int) *rate.Limiter {
	if lim, ok := limiters.Get(ip); ok {
		limiters.Set(ip, lim, gocache.DefaultExpiration)
		return lim.(*rate.Limiter)
	}
	lim := rate.NewLimiter(every, burst)
	if err := limiters.Add(ip, lim, gocache.DefaultExpiration); err != nil {
		if existing, ok := limiters.Get(ip); ok {
			return existing.(*rate.Limiter)
		}
	}
	return lim
}

func clientIPForRateLimit(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		for _, part := range strings.Split(xf, ",") {
			ip := strings.TrimSpace(part)
			if ip == "" {
				continue
			}
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		if net.ParseIP(host) != nil {
			return host
		}
	}
	return r.RemoteAddr
}
