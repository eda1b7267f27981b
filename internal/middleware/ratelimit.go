package middleware

import (
	"blogCMS/internal/config"
	handlers "blogCMS/internal/handler"
	"context"
	"fmt"
	"log"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter decides whether one more request under key is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, remaining int64, retryAfter time.Duration, err error)
}

// fixed window: the first hit sets the expiry, later hits only count
var windowScript = redis.NewScript(`
	local current = redis.call('INCR', KEYS[1])
	if current == 1 then
		redis.call('PEXPIRE', KEYS[1], ARGV[1])
	end
	local ttl = redis.call('PTTL', KEYS[1])
	return { current, ttl }
`)

type RedisLimiter struct {
	rdb      *redis.Client
	capacity int
	window   time.Duration
}

func NewRedisLimiter(rdb *redis.Client, cfg config.RateLimit) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, capacity: cfg.Capacity, window: cfg.Window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, int64, time.Duration, error) {
	vals, err := windowScript.Run(ctx, l.rdb, []string{key}, l.window.Milliseconds()).Result()
	if err != nil {
		return false, 0, 0, fmt.Errorf("rate limit script: %w", err)
	}

	arr, ok := vals.([]interface{})
	if !ok || len(arr) != 2 {
		return false, 0, 0, fmt.Errorf("unexpected rate limit result: %#v", vals)
	}

	count := asInt64(arr[0])
	ttl := time.Duration(asInt64(arr[1])) * time.Millisecond
	if ttl < 0 {
		ttl = l.window
	}

	remaining := int64(l.capacity) - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= int64(l.capacity), remaining, ttl, nil
}

func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

// RateLimit throttles requests per client IP and route. Limiter errors let
// the request through.
func RateLimit(cfg config.RateLimit, limiter Limiter) Middleware {
	if !cfg.Enabled || limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.Join([]string{cfg.Prefix, "ip", clientIP(r, cfg.TrustProxy), "route", r.Method + " " + r.URL.Path}, ":")

			allowed, remaining, retryAfter, err := limiter.Allow(r.Context(), key)
			if err != nil {
				log.Printf("rate limiter error for key=%s: %v", key, err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if !allowed {
				secs := int(math.Ceil(retryAfter.Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				handlers.WriteError(w, "Too many requests", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP returns the peer address. With trustProxy set it returns the
// right-most X-Forwarded-For hop, the one appended by the proxy itself.
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			if hop := strings.TrimSpace(hops[i]); hop != "" {
				return hop
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
