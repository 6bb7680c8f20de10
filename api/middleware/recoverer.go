package middleware

import (
	"fmt"
	"net/http"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// Recoverer turns handler panics into a 500 response. http.ErrAbortHandler
// is re-raised so net/http can drop the connection.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer recoverPanic(w, r, logg)
			next.ServeHTTP(w, r)
		})
	}
}

func recoverPanic(w http.ResponseWriter, r *http.Request, logg *logger.Logger) {
	rec := recover()
	if rec == nil {
		return
	}
	if rec == http.ErrAbortHandler {
		panic(rec)
	}
	err := fmt.Errorf("panic: %v", rec)
	if logg != nil {
		ctx := logg.WithFields(r.Context(), map[string]any{
			"panic":  fmt.Sprint(rec),
			"method": r.Method,
			"path":   r.URL.Path,
		})
		logg.Error(ctx, "panic.recovered", err)
	}
	writeError(w, r, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "internal server error"))
}

// FunctionEnvelope marks the request as a function endpoint so middleware
// failures, panics included, use the flat {error} body instead of the REST
// envelope.
func FunctionEnvelope(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r = r.WithContext(markFunction(r.Context()))
			defer recoverPanic(w, r, logg)
			next.ServeHTTP(w, r)
		})
	}
}
