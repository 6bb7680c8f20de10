package responses

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

func TestWriteSuccessStatus(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccessStatus(w, http.StatusCreated, map[string]string{"slug": "red-mug"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"data":{"slug":"red-mug"}}`, w.Body.String())
}

func TestWriteJSONEncodeFailure(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSON(w, http.StatusOK, map[string]any{"bad": make(chan int)})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":{"code":"INTERNAL_ERROR","message":"internal server error"}}`, w.Body.String())
}

func TestWriteError(t *testing.T) {
	cases := []struct {
		name        string
		err         error
		status      int
		code        pkgerrors.Code
		message     string
		wantDetails bool
	}{
		{
			name:        "validation keeps message and details",
			err:         pkgerrors.New(pkgerrors.CodeValidation, "bad input").WithDetails(map[string]string{"quantity": "must be at least 1"}),
			status:      http.StatusBadRequest,
			code:        pkgerrors.CodeValidation,
			message:     "bad input",
			wantDetails: true,
		},
		{
			name:    "not found",
			err:     pkgerrors.New(pkgerrors.CodeNotFound, "product not found"),
			status:  http.StatusNotFound,
			code:    pkgerrors.CodeNotFound,
			message: "product not found",
		},
		{
			name:    "untyped errors become internal",
			err:     errors.New("dial tcp: connection refused"),
			status:  http.StatusInternalServerError,
			code:    pkgerrors.CodeInternal,
			message: "internal server error",
		},
		{
			name:    "internal messages stay private",
			err:     pkgerrors.Wrap(pkgerrors.CodeInternal, errors.New("deadlock"), "insert order items"),
			status:  http.StatusInternalServerError,
			code:    pkgerrors.CodeInternal,
			message: "internal server error",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(context.Background(), nil, w, tc.err)

			require.Equal(t, tc.status, w.Code)
			var body ErrorEnvelope
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, string(tc.code), body.Error.Code)
			assert.Equal(t, tc.message, body.Error.Message)
			assert.Equal(t, tc.wantDetails, body.Error.Details != nil)
		})
	}
}

func TestWriteFunctionErrorIsFlat(t *testing.T) {
	w := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeValidation, "invalid request").
		WithDetails(map[string]string{"customer_phone": "is required"})
	WriteFunctionError(context.Background(), nil, w, err)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "invalid request: customer_phone is required", body["error"])
	assert.Len(t, body, 1)
}

func TestWriteFunctionSuccessAddsFlag(t *testing.T) {
	w := httptest.NewRecorder()
	WriteFunctionSuccess(w, http.StatusCreated, map[string]any{"order_number": "SF-0001"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"success":true,"order_number":"SF-0001"}`, w.Body.String())
}

func TestLogErrorLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf})

	LogError(context.Background(), logg, http.StatusNotFound, pkgerrors.New(pkgerrors.CodeNotFound, "missing"))
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), `"request.rejected"`)

	buf.Reset()
	LogError(context.Background(), logg, http.StatusInternalServerError, errors.New("boom"))
	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), `"request.error"`)
	assert.Contains(t, buf.String(), `"status":500`)
}
