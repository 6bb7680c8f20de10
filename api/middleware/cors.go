package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/angelmondragon/storefront-backend/pkg/config"
)

// CORS admits the configured storefront origins. Browsers may send the cart
// session and idempotency headers and read back the session and request id.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", idempotencyHeader, cartSessionHeader},
		ExposedHeaders:   []string{cartSessionHeader, requestIDHeader, idempotencyReplayHeader, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           int(cfg.MaxAge.Seconds()),
	})
}
