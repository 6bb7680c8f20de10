package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const (
	cartSessionHeader = "X-Cart-Session"
	cartSessionCookie = "sf_cart"
)

// CartSession resolves the shopper's cart session from the X-Cart-Session
// header or the sf_cart cookie. A missing or malformed id is replaced by a
// new one, which is echoed in both so the client can keep it.
func CartSession(ttl time.Duration, secure bool, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := sessionFromRequest(r)
			if sessionID == "" {
				sessionID = uuid.NewString()
			}

			w.Header().Set(cartSessionHeader, sessionID)
			http.SetCookie(w, &http.Cookie{
				Name:     cartSessionCookie,
				Value:    sessionID,
				Path:     "/",
				MaxAge:   int(ttl.Seconds()),
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
			})

			ctx := WithCartSession(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithCartSession(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionFromRequest(r *http.Request) string {
	if value := normalizeSession(r.Header.Get(cartSessionHeader)); value != "" {
		return value
	}
	if cookie, err := r.Cookie(cartSessionCookie); err == nil {
		return normalizeSession(cookie.Value)
	}
	return ""
}

func normalizeSession(value string) string {
	parsed, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil || parsed == uuid.Nil {
		return ""
	}
	return parsed.String()
}
