package middleware

import (
	"context"
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type (
	adminKey       struct{}
	cartSessionKey struct{}
	functionKey    struct{}
)

// adminIdentity is what AdminAuth learned from a verified token.
type adminIdentity struct {
	id   string
	role string
}

func fromContext[T any](ctx context.Context, key any) (T, bool) {
	var zero T
	if ctx == nil {
		return zero, false
	}
	v, ok := ctx.Value(key).(T)
	return v, ok
}

func withValue(ctx context.Context, key, value any) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, key, value)
}

func AdminIDFromContext(ctx context.Context) string {
	admin, _ := fromContext[adminIdentity](ctx, adminKey{})
	return admin.id
}

func RoleFromContext(ctx context.Context) string {
	admin, _ := fromContext[adminIdentity](ctx, adminKey{})
	return admin.role
}

// CartSessionFromContext returns the session resolved by CartSession.
func CartSessionFromContext(ctx context.Context) string {
	session, _ := fromContext[string](ctx, cartSessionKey{})
	return session
}

func WithAdmin(ctx context.Context, adminID, role string) context.Context {
	return withValue(ctx, adminKey{}, adminIdentity{id: adminID, role: role})
}

func WithCartSession(ctx context.Context, sessionID string) context.Context {
	return withValue(ctx, cartSessionKey{}, sessionID)
}

func markFunction(ctx context.Context) context.Context {
	return withValue(ctx, functionKey{}, true)
}

func isFunction(ctx context.Context) bool {
	flat, _ := fromContext[bool](ctx, functionKey{})
	return flat
}

// writeError picks the flat function body or the REST envelope depending on
// which surface the request entered through.
func writeError(w http.ResponseWriter, r *http.Request, logg *logger.Logger, err error) {
	if isFunction(r.Context()) {
		responses.WriteFunctionError(r.Context(), logg, w, err)
		return
	}
	responses.WriteError(r.Context(), logg, w, err)
}
