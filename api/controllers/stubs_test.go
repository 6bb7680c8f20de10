package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/internal/tracking"
	"github.com/angelmondragon/storefront-backend/pkg/conversions"
)

type stubCarts struct {
	cart      *cart.Cart
	getErr    error
	clearErr  error
	removeErr error
	cleared   []string
	removed   map[string][]cart.Line
}

func (s *stubCarts) Get(ctx context.Context, sessionID string) (*cart.Cart, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	if s.cart == nil {
		return cart.New(), nil
	}
	return s.cart, nil
}

func (s *stubCarts) AddItem(ctx context.Context, sessionID string, input cart.AddItemInput) (*cart.Cart, error) {
	return s.Get(ctx, sessionID)
}

func (s *stubCarts) UpdateQuantity(ctx context.Context, sessionID string, productID uuid.UUID, quantity int, variant cart.Variant) (*cart.Cart, error) {
	return s.Get(ctx, sessionID)
}

func (s *stubCarts) RemoveItem(ctx context.Context, sessionID string, productID uuid.UUID, variant cart.Variant) (*cart.Cart, error) {
	return s.Get(ctx, sessionID)
}

func (s *stubCarts) Clear(ctx context.Context, sessionID string) error {
	s.cleared = append(s.cleared, sessionID)
	return s.clearErr
}

func (s *stubCarts) RemoveOrdered(ctx context.Context, sessionID string, ordered []cart.Line) (*cart.Cart, error) {
	if s.removed == nil {
		s.removed = map[string][]cart.Line{}
	}
	s.removed[sessionID] = append(s.removed[sessionID], ordered...)
	if s.removeErr != nil {
		return nil, s.removeErr
	}
	return cart.New(), nil
}

type stubPlacer struct {
	placeFn func(ctx context.Context, input checkout.Input) (*checkout.Receipt, error)
	inputs  []checkout.Input
}

func (s *stubPlacer) PlaceOrder(ctx context.Context, input checkout.Input) (*checkout.Receipt, error) {
	s.inputs = append(s.inputs, input)
	return s.placeFn(ctx, input)
}

type stubTracker struct {
	enabled   bool
	forwardFn func(ctx context.Context, event tracking.Event) (*conversions.Response, error)
	events    []tracking.Event
}

func (s *stubTracker) Enabled() bool   { return s.enabled }
func (s *stubTracker) PixelID() string { return "pixel-1" }

func (s *stubTracker) Forward(ctx context.Context, event tracking.Event) (*conversions.Response, error) {
	s.events = append(s.events, event)
	return s.forwardFn(ctx, event)
}

func decodeBody(t *testing.T, resp *httptest.ResponseRecorder, dest any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		t.Fatalf("decode response: %v (body=%s)", err, resp.Body.String())
	}
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}
