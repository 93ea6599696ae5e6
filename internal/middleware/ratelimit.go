package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/Lixing-Zhang/graze-api/internal/handlers"
)

// RateLimit limits each client IP to perMinute requests in a sliding
// one-minute window. Zero disables limiting.
func RateLimit(perMinute int, logger *slog.Logger) func(next http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			handlers.WriteError(w, http.StatusTooManyRequests, handlers.ErrorDetail{
				Code:    handlers.CodeRateLimit,
				Message: "Too many requests. Please slow down.",
			}, logger)
		}),
	)
}
