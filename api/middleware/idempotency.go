package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/storefront-backend/pkg/redis"
)

const (
	idempotencyHeader       = "Idempotency-Key"
	idempotencyReplayHeader = "Idempotent-Replayed"
	maxIdempotencyKeyLength = 200

	recordPending = "pending"
	recordDone    = "done"
)

type idempotencyRecord struct {
	State       string `json:"state"`
	RequestHash string `json:"request_hash"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        string `json:"body,omitempty"`
}

// Idempotency makes order-creating requests that carry an Idempotency-Key
// run at most once per key and scope. The first request claims the key with
// a pending record; repeats replay the stored response, or get 409 while the
// first is still running or when the body differs. Requests without the
// header run normally and 5xx responses release the key.
func Idempotency(store pkgredis.IdempotencyStore, ttl time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil || ttl <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			idemKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if idemKey == "" || !idempotentRoute(r.Method, routePattern(r), r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			if len(idemKey) > maxIdempotencyKeyLength {
				writeError(w, r, logg, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header too long"))
				return
			}

			body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
			if err != nil {
				writeError(w, r, logg, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			ctx := r.Context()
			hash := hashBody(body)
			key := store.IdempotencyKey(idempotencyScope(r), idemKey)

			pending, _ := json.Marshal(idempotencyRecord{State: recordPending, RequestHash: hash})
			claimed, err := store.SetNX(ctx, key, string(pending), ttl)
			if err != nil {
				writeError(w, r, logg, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim idempotency key"))
				return
			}
			if !claimed {
				replayExisting(w, r, store, key, hash, logg)
				return
			}

			rec := &responseCapture{ResponseWriter: w}
			completed := false
			defer func() {
				// A panicking handler must not leave the key claimed.
				if !completed {
					releaseKey(ctx, store, key, logg)
				}
			}()
			next.ServeHTTP(rec, r)
			completed = true

			if rec.code() >= http.StatusInternalServerError {
				releaseKey(ctx, store, key, logg)
				return
			}
			done, err := json.Marshal(idempotencyRecord{
				State:       recordDone,
				RequestHash: hash,
				Status:      rec.code(),
				ContentType: rec.Header().Get("Content-Type"),
				Body:        base64.StdEncoding.EncodeToString(rec.body.Bytes()),
			})
			if err == nil {
				err = store.Set(ctx, key, string(done), ttl)
			}
			if err != nil && logg != nil {
				logg.Error(ctx, "idempotency.persist_failed", err)
			}
		})
	}
}

func replayExisting(w http.ResponseWriter, r *http.Request, store pkgredis.IdempotencyStore, key, hash string, logg *logger.Logger) {
	stored, err := store.Get(r.Context(), key)
	switch {
	case errors.Is(err, redis.Nil):
		writeError(w, r, logg, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key expired, retry the request"))
		return
	case err != nil:
		writeError(w, r, logg, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
		return
	}

	var record idempotencyRecord
	if err := json.Unmarshal([]byte(stored), &record); err != nil {
		writeError(w, r, logg, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
		return
	}
	switch {
	case record.RequestHash != hash:
		writeError(w, r, logg, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
	case record.State != recordDone:
		writeError(w, r, logg, pkgerrors.New(pkgerrors.CodeIdempotency, "a request with this idempotency key is still in progress"))
	default:
		if record.ContentType != "" {
			w.Header().Set("Content-Type", record.ContentType)
		}
		w.Header().Set(idempotencyReplayHeader, "true")
		w.WriteHeader(record.Status)
		if decoded, err := base64.StdEncoding.DecodeString(record.Body); err == nil {
			_, _ = w.Write(decoded)
		}
	}
}

func releaseKey(ctx context.Context, store pkgredis.IdempotencyStore, key string, logg *logger.Logger) {
	if err := store.Del(context.WithoutCancel(ctx), key); err != nil && logg != nil {
		logg.Error(ctx, "idempotency.release_failed", err)
	}
}

// idempotencyScope separates keys per admin and per cart session so two
// shoppers cannot collide on the same client generated key.
func idempotencyScope(r *http.Request) string {
	return strings.Join([]string{
		AdminIDFromContext(r.Context()),
		CartSessionFromContext(r.Context()),
		r.Method,
		r.URL.Path,
	}, "|")
}

func hashBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return base64.StdEncoding.EncodeToString(sum[:])
}

// routePattern returns the matched chi pattern, falling back to the raw path
// before routing has completed.
func routePattern(r *http.Request) string {
	if ctx := chi.RouteContext(r.Context()); ctx != nil {
		if pattern := ctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

// idempotentRoute lists the order-creating and order-mutating routes.
func idempotentRoute(method string, paths ...string) bool {
	if method != http.MethodPost {
		return false
	}
	for _, path := range paths {
		switch {
		case path == "/api/functions/create-order",
			path == "/api/functions/create-landing-order",
			path == "/api/v1/cart/checkout",
			strings.HasPrefix(path, "/api/admin/v1/orders/") && strings.HasSuffix(path, "/status"):
			return true
		}
	}
	return false
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (r *responseCapture) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseCapture) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseCapture) code() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}
