package api

import (
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/reychango/reychango-server/internal/http/response"
	"github.com/reychango/reychango-server/internal/ratelimit"
)

// RateLimitMiddleware limits requests per client IP.
// Returns 429 TOO_MANY_REQUESTS when the client's bucket is empty.
func RateLimitMiddleware(limiter *ratelimit.KeyedRateLimiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := getClientIP(r)

			if !limiter.Allow(key) {
				logger.Warn("Rate limit exceeded",
					"ip", key,
					"path", r.URL.Path,
				)
				response.TooManyRequests(w, "Demasiadas peticiones. Inténtalo de nuevo más tarde.", logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// rateLimit returns RateLimitMiddleware for limiter, or a passthrough when limiter is nil.
func (s *Server) rateLimit(limiter *ratelimit.KeyedRateLimiter) func(http.Handler) http.Handler {
	if limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return RateLimitMiddleware(limiter, s.logger)
}

// getClientIP extracts the client IP from the request.
// Checks X-Forwarded-For and X-Real-IP headers before falling back to RemoteAddr.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
