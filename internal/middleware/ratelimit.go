package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

const rateLimitedBody = `{"error":"rate limit exceeded","code":"rate_limited"}` + "\n"

// RateLimit caps each client IP at perMinute requests on the wrapped routes.
// Only the write endpoints use it; perMinute <= 0 turns it off.
func RateLimit(perMinute int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(tooManyRequests),
	)
}

func tooManyRequests(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(rateLimitedBody))
}
