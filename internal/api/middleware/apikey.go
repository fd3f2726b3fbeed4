package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/ndewijer/Currency-Rate-Loader/internal/api/response"
)

// APIKeyHeader carries the key on protected routes.
const APIKeyHeader = "X-API-Key"

// NewAPIKeyMiddleware returns middleware that rejects requests whose
// X-API-Key header does not match key.
// Returns 401 Unauthorized for a missing or wrong key, and 500 when the
// server has no key configured.
//
// Example usage in router:
//
//	r.With(middleware.NewAPIKeyMiddleware(cfg.Auth.InternalAPIKey)).Post("/", handler.CreateRateType)
func NewAPIKeyMiddleware(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				response.RespondError(w, http.StatusInternalServerError, "unauthorized", "Authentication not loaded")
				return
			}

			provided := r.Header.Get(APIKeyHeader)
			if provided == "" {
				response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing API key")
				return
			}

			if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
				response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Invalid API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
