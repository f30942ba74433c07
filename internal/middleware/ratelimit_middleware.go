package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"devconnector-server/internal/ratelimit"
	"devconnector-server/pkg/response"
)

// RateLimitMiddleware allows limit requests per window for each client IP.
// Forwarding headers are only consulted when trustProxy is set.
func RateLimitMiddleware(limiter ratelimit.Limiter, limit int, window time.Duration, trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Method + " " + r.URL.Path + " " + clientIP(r, trustProxy)

			allowed, reset := limiter.Allow(key, limit, window)
			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(reset.Seconds())+1))
				response.TooManyRequests(w, "Too many requests")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			parts := strings.Split(xff, ",")
			return strings.TrimSpace(parts[0])
		}

		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return xri
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
