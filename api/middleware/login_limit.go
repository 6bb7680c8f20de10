package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const maxLoginBody = 64 << 10

// LoginThrottle bounds admin sign-in attempts inside one window, counted per
// client IP and per submitted email. A zero limit disables that counter.
type LoginThrottle struct {
	Window   time.Duration
	PerIP    int
	PerEmail int
}

func (p LoginThrottle) enabled() bool {
	return p.Window > 0 && (p.PerIP > 0 || p.PerEmail > 0)
}

// LoginRateLimit guards the admin login route. Unlike RateLimit it fails
// closed: a limiter error rejects the attempt with 503.
func LoginRateLimit(policy LoginThrottle, limiter windowLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)
			if policy.PerIP > 0 && ip != "" {
				if !checkLogin(w, r, limiter, logg, policy, "ip", ip, map[string]any{"ip": ip}, policy.PerIP) {
					return
				}
			}

			if policy.PerEmail > 0 {
				body, err := io.ReadAll(io.LimitReader(r.Body, maxLoginBody))
				if err != nil {
					writeError(w, r, logg, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))

				if email := loginEmail(body); email != "" {
					hash := emailDigest(email)
					if !checkLogin(w, r, limiter, logg, policy, "email", hash, map[string]any{"email_hash": hash}, policy.PerEmail) {
						return
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// checkLogin bumps one counter and writes the rejection when it trips.
func checkLogin(w http.ResponseWriter, r *http.Request, limiter windowLimiter, logg *logger.Logger, policy LoginThrottle, kind, subject string, fields map[string]any, limit int) bool {
	allowed, count, err := limiter.FixedWindowAllow(r.Context(), "login:"+kind+":"+subject, int64(limit), policy.Window)
	if err != nil {
		writeError(w, r, logg, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiter unavailable"))
		return false
	}
	if allowed {
		return true
	}
	if logg != nil {
		fields["scope"] = kind
		fields["attempts"] = count
		fields["limit"] = limit
		fields["window_seconds"] = int(policy.Window.Seconds())
		logg.Warn(logg.WithFields(r.Context(), fields), "auth.rate_limit.blocked")
	}
	w.Header().Set("Retry-After", strconv.Itoa(int(policy.Window.Seconds())))
	writeError(w, r, nil, pkgerrors.New(pkgerrors.CodeRateLimit, "too many login attempts"))
	return false
}

func loginEmail(payload []byte) string {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(body.Email))
}

// emailDigest keeps raw addresses out of redis keys and logs.
func emailDigest(email string) string {
	sum := sha256.Sum256([]byte(email))
	return hex.EncodeToString(sum[:8])
}

// ClientIP returns the caller address, preferring the first X-Forwarded-For
// hop, then X-Real-IP, then the socket peer.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		first, _, _ := strings.Cut(header, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
