package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

var encodeFailure = []byte(`{"error":{"code":"INTERNAL_ERROR","message":"internal server error"}}`)

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, SuccessEnvelope{Data: data})
}

func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Resolve maps any error to its typed form, the HTTP status and the message
// that is safe to show to clients.
func Resolve(err error) (*pkgerrors.Error, int, string) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	meta := pkgerrors.MetadataFor(typed.Code())

	msg := meta.PublicMessage
	if meta.ClientFacing() && typed.Message() != "" {
		msg = typed.Message()
	}
	return typed, meta.HTTPStatus, msg
}

func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	typed, status, msg := Resolve(err)

	payload := ErrorEnvelope{
		Error: APIError{
			Code:    string(typed.Code()),
			Message: msg,
		},
	}

	if pkgerrors.MetadataFor(typed.Code()).DetailsAllowed {
		if details := typed.Details(); details != nil {
			payload.Error.Details = details
		}
	}

	LogError(ctx, logg, status, err)
	WriteJSON(w, status, payload)
}

// LogError writes the error dump; client errors log at warn, server errors at error.
func LogError(ctx context.Context, logg *logger.Logger, status int, err error) {
	if logg == nil || err == nil {
		return
	}
	fields := pkgerrors.Dump(err).Fields()
	fields["status"] = status

	ctx = logg.WithFields(ctx, fields)
	if status >= http.StatusInternalServerError {
		logg.Error(ctx, "request.error", err)
		return
	}
	logg.Warn(ctx, "request.rejected")
}

// WriteJSON encodes payload before touching the response so an encoding
// failure still produces a well formed 500.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		status = http.StatusInternalServerError
		body = encodeFailure
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}
