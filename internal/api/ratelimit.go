package api

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"

	domainerrors "github.com/listenupapp/pagetrail-server/internal/errors"
	"github.com/listenupapp/pagetrail-server/internal/ratelimit"
)

// RateLimitMiddleware limits requests per client IP and answers 429 with a
// RATE_LIMITED error body when a client runs out of tokens.
func RateLimitMiddleware(limiter *ratelimit.KeyedRateLimiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)

			if !limiter.Allow(key) {
				logger.Warn("rate limit exceeded", "ip", key, "path", r.URL.Path)
				writeError(w, &APIError{
					status:  http.StatusTooManyRequests,
					Code:    string(domainerrors.CodeRateLimited),
					Message: "too many requests, please try again later",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP returns the host part of RemoteAddr. middleware.RealIP has
// already applied X-Forwarded-For / X-Real-IP by the time this runs.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeError(w http.ResponseWriter, apiErr *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.status)
	_ = json.NewEncoder(w).Encode(apiErr)
}
