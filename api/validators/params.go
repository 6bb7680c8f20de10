package validators

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

func invalidParam(key, problem string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid "+key).WithDetails(map[string]string{key: problem})
}

func queryValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

// ParseUUIDParam reads a uuid path parameter.
func ParseUUIDParam(r *http.Request, key string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, key)))
	if err != nil {
		return uuid.Nil, invalidParam(key, "must be a valid uuid")
	}
	return id, nil
}

// ParseQueryInt reads an integer query parameter bounded to [min, max],
// falling back to defaultVal when absent.
func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := queryValue(r, key)
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalidParam(key, "must be numeric")
	}
	if value < min || value > max {
		return 0, invalidParam(key, fmt.Sprintf("must be between %d and %d", min, max))
	}
	return value, nil
}

// ParseQueryUUID reads an optional uuid query parameter.
func ParseQueryUUID(r *http.Request, key string) (*uuid.UUID, error) {
	raw := queryValue(r, key)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, invalidParam(key, "must be a valid uuid")
	}
	return &id, nil
}

func ParseQueryBool(r *http.Request, key string) (*bool, error) {
	raw := queryValue(r, key)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, invalidParam(key, "must be a boolean")
	}
	return &value, nil
}

// ParseQueryDecimal reads an optional non-negative decimal query parameter.
func ParseQueryDecimal(r *http.Request, key string) (*decimal.Decimal, error) {
	raw := queryValue(r, key)
	if raw == "" {
		return nil, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil || value.IsNegative() {
		return nil, invalidParam(key, "must be a non-negative number")
	}
	return &value, nil
}
