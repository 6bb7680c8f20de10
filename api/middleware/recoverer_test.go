package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRecovererWritesRESTEnvelope(t *testing.T) {
	handler := Recoverer(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "INTERNAL_ERROR" {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
}

func TestFunctionEnvelopeRecoversFlat(t *testing.T) {
	handler := Recoverer(nil)(FunctionEnvelope(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/functions/create-order", nil))

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := body["error"].(string); !ok {
		t.Fatalf("expected flat error body, got %s", resp.Body.String())
	}
}

func TestRequestIDReplacesUnusableHeader(t *testing.T) {
	handler := RequestID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	keep := httptest.NewRequest(http.MethodGet, "/", nil)
	keep.Header.Set(requestIDHeader, "edge-abc-123")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, keep)
	if got := resp.Header().Get(requestIDHeader); got != "edge-abc-123" {
		t.Fatalf("expected caller id kept, got %q", got)
	}

	for _, bad := range []string{"has space", strings.Repeat("x", maxRequestIDLen+1)} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(requestIDHeader, bad)
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if got := resp.Header().Get(requestIDHeader); got == bad || len(got) != 36 {
			t.Fatalf("expected minted uuid for %q, got %q", bad, got)
		}
	}
}
