package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/graze-api/internal/config"
	"github.com/Lixing-Zhang/graze-api/internal/handlers"
)

// APIKeyHeader carries the admin key. The legacy "api_key" header is also accepted.
const APIKeyHeader = "X-API-Key"

// APIKeyAuth middleware validates the admin API key from header
func APIKeyAuth(cfg config.AuthConfig, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get(APIKeyHeader)
			if apiKey == "" {
				apiKey = r.Header.Get("api_key")
			}

			if apiKey == "" {
				handlers.WriteError(w, http.StatusUnauthorized, handlers.ErrorDetail{
					Code:    handlers.CodeUnauthorized,
					Message: "API key required.",
				}, logger)
				return
			}

			if !validKey(apiKey, cfg.APIKeys) {
				logger.Warn("rejected admin request", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
				handlers.WriteError(w, http.StatusForbidden, handlers.ErrorDetail{
					Code:    handlers.CodeForbidden,
					Message: "Invalid API key.",
				}, logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func validKey(apiKey string, keys []string) bool {
	for _, k := range keys {
		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(k)) == 1 {
			return true
		}
	}
	return false
}
