package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestCartSessionMintsWhenAbsent(t *testing.T) {
	var seen string
	handler := CartSession(time.Hour, false, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CartSessionFromContext(r.Context())
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

	if _, err := uuid.Parse(seen); err != nil {
		t.Fatalf("expected minted uuid session, got %q", seen)
	}
	if got := resp.Header().Get(cartSessionHeader); got != seen {
		t.Fatalf("expected header echo %q got %q", seen, got)
	}
	cookies := resp.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != cartSessionCookie || cookies[0].Value != seen {
		t.Fatalf("expected session cookie, got %v", cookies)
	}
}

func TestCartSessionPrefersHeaderOverCookie(t *testing.T) {
	header := uuid.NewString()
	cookie := uuid.NewString()
	var seen string
	handler := CartSession(time.Hour, false, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CartSessionFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set(cartSessionHeader, header)
	req.AddCookie(&http.Cookie{Name: cartSessionCookie, Value: cookie})
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen != header {
		t.Fatalf("expected header session %s got %s", header, seen)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.AddCookie(&http.Cookie{Name: cartSessionCookie, Value: cookie})
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen != cookie {
		t.Fatalf("expected cookie session %s got %s", cookie, seen)
	}
}

func TestCartSessionReplacesMalformedID(t *testing.T) {
	var seen string
	handler := CartSession(time.Hour, false, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CartSessionFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set(cartSessionHeader, "../../etc")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen == "../../etc" || seen == "" {
		t.Fatalf("expected a fresh session, got %q", seen)
	}
}
