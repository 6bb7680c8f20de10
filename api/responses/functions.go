package responses

import (
	"context"
	"net/http"
	"sort"
	"strings"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// WriteFunctionSuccess writes {"success":true, ...fields}.
func WriteFunctionSuccess(w http.ResponseWriter, status int, fields map[string]any) {
	body := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["success"] = true
	WriteJSON(w, status, body)
}

// WriteFunctionError writes {"error":"message"} with the status mapped from
// the error code. Validation messages name the offending fields.
func WriteFunctionError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	typed, status, msg := Resolve(err)
	if typed.Code() == pkgerrors.CodeValidation {
		if fields := describeFields(typed.Details()); fields != "" {
			msg = msg + ": " + fields
		}
	}
	LogError(ctx, logg, status, err)
	WriteJSON(w, status, FunctionError{Error: msg})
}

func describeFields(details any) string {
	var pairs []string
	switch d := details.(type) {
	case map[string]string:
		for field, problem := range d {
			pairs = append(pairs, field+" "+problem)
		}
	case map[string]any:
		for field, problem := range d {
			if text, ok := problem.(string); ok {
				pairs = append(pairs, field+" "+text)
			}
		}
	default:
		return ""
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "; ")
}
