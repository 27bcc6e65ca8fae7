package ratelimit

import (
	"log/slog"
	"net/http"
	"strconv"

	dErrors "tekfest/pkg/domain-errors"
	"tekfest/pkg/platform/httputil"
)

// Middleware applies a per-client-IP sliding window to the wrapped routes.
// Standard RateLimit headers are attached to every response.
func Middleware(limiter *SlidingWindow, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result := limiter.Allow(r.RemoteAddr)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed {
				logger.WarnContext(r.Context(), "rate limit exceeded",
					"remote_addr", r.RemoteAddr, "path", r.URL.Path)
				w.Header().Set("Retry-After", strconv.FormatInt(result.ResetAt.Unix(), 10))
				httputil.WriteJSON(w, http.StatusTooManyRequests, map[string]string{
					"error": string(dErrors.CodeUnavailable),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
