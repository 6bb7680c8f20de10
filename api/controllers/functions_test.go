package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/internal/landing"
	"github.com/angelmondragon/storefront-backend/internal/tracking"
	"github.com/angelmondragon/storefront-backend/pkg/conversions"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

const orderBody = `{
	"customer_name": "Ana Ruiz",
	"customer_phone": "+1 555 010 2030",
	"shipping_address": "12 Elm St",
	"city": "Springfield",
	"event_id": "evt-1",
	"items": [{"product_id": "%s", "quantity": 2, "color": "red"}]
}`

func TestCreateOrderReturnsReceipt(t *testing.T) {
	productID := uuid.New()
	orderID := uuid.New()
	placer := &stubPlacer{placeFn: func(ctx context.Context, input checkout.Input) (*checkout.Receipt, error) {
		return &checkout.Receipt{OrderID: orderID, OrderNumber: "SF-0001", Total: decimal.RequireFromString("24.50")}, nil
	}}

	body := strings.Replace(orderBody, "%s", productID.String(), 1)
	req := httptest.NewRequest(http.MethodPost, "/api/functions/create-order", strings.NewReader(body))
	req.Header.Set("User-Agent", "test-agent")
	resp := httptest.NewRecorder()
	CreateOrder(placer, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d (%s)", resp.Code, resp.Body.String())
	}
	var payload struct {
		Success     bool   `json:"success"`
		OrderID     string `json:"order_id"`
		OrderNumber string `json:"order_number"`
		Total       string `json:"total"`
	}
	decodeBody(t, resp, &payload)
	if !payload.Success || payload.OrderID != orderID.String() || payload.OrderNumber != "SF-0001" || payload.Total != "24.5" {
		t.Fatalf("unexpected payload %+v", payload)
	}

	input := placer.inputs[0]
	if input.Source != enums.OrderSourceStorefront {
		t.Fatalf("expected storefront source, got %s", input.Source)
	}
	if len(input.Items) != 1 || input.Items[0].ProductID != productID || input.Items[0].Quantity != 2 || input.Items[0].Color != "red" {
		t.Fatalf("unexpected items %+v", input.Items)
	}
	if input.Attribution.EventID != "evt-1" || input.Attribution.UserAgent != "test-agent" {
		t.Fatalf("unexpected attribution %+v", input.Attribution)
	}
}

func TestCreateOrderValidationUsesFlatEnvelope(t *testing.T) {
	placer := &stubPlacer{placeFn: func(ctx context.Context, input checkout.Input) (*checkout.Receipt, error) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid customer details").
			WithDetails(map[string]string{"customer_phone": "must contain at least 7 digits"})
	}}

	req := httptest.NewRequest(http.MethodPost, "/api/functions/create-order", strings.NewReader(`{"items":[]}`))
	resp := httptest.NewRecorder()
	CreateOrder(placer, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	var payload map[string]any
	decodeBody(t, resp, &payload)
	msg, _ := payload["error"].(string)
	if !strings.HasPrefix(msg, "invalid customer details") || !strings.Contains(msg, "customer_phone must contain at least 7 digits") {
		t.Fatalf("unexpected error message %q", msg)
	}
	if _, ok := payload["success"]; ok {
		t.Fatalf("error body must not carry success: %v", payload)
	}
}

func TestCreateOrderRejectsUnknownFields(t *testing.T) {
	placer := &stubPlacer{placeFn: func(ctx context.Context, input checkout.Input) (*checkout.Receipt, error) {
		t.Fatal("placer should not be called")
		return nil, nil
	}}

	req := httptest.NewRequest(http.MethodPost, "/api/functions/create-order", strings.NewReader(`{"total":"1.00"}`))
	resp := httptest.NewRecorder()
	CreateOrder(placer, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCreateLandingOrderConflict(t *testing.T) {
	placer := &stubPlacer{placeFn: func(ctx context.Context, input checkout.Input) (*checkout.Receipt, error) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock for Tote Bag")
	}}
	svc, err := landing.NewService(placer)
	if err != nil {
		t.Fatalf("landing service: %v", err)
	}

	body := `{"landing_slug":"tote-summer","product_id":"` + uuid.NewString() + `","quantity":1,
		"customer_name":"Ana","customer_phone":"5550102030","shipping_address":"12 Elm St","city":"Springfield"}`
	req := httptest.NewRequest(http.MethodPost, "/api/functions/create-landing-order", strings.NewReader(body))
	resp := httptest.NewRecorder()
	CreateLandingOrder(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d (%s)", resp.Code, resp.Body.String())
	}
	var payload map[string]string
	decodeBody(t, resp, &payload)
	if payload["error"] != "insufficient stock for Tote Bag" {
		t.Fatalf("unexpected payload %v", payload)
	}
	if got := placer.inputs[0]; got.Source != enums.OrderSourceLanding || got.LandingSlug != "tote-summer" {
		t.Fatalf("unexpected checkout input %+v", got)
	}
}

func TestTrackEventForwardsEvent(t *testing.T) {
	tracker := &stubTracker{enabled: true, forwardFn: func(ctx context.Context, event tracking.Event) (*conversions.Response, error) {
		return &conversions.Response{EventsReceived: 1}, nil
	}}
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	body := `{"event_name":"Purchase","event_id":"evt-9","value":24.5,"currency":"usd","email":"ana@example.com","event_time":1767225600}`
	req := httptest.NewRequest(http.MethodPost, "/api/functions/track-event", strings.NewReader(body))
	req.RemoteAddr = "203.0.113.7:4312"
	resp := httptest.NewRecorder()
	TrackEvent(tracker, func() time.Time { return fixed }, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", resp.Code, resp.Body.String())
	}
	var payload struct {
		Success        bool `json:"success"`
		EventsReceived int  `json:"events_received"`
	}
	decodeBody(t, resp, &payload)
	if !payload.Success || payload.EventsReceived != 1 {
		t.Fatalf("unexpected payload %+v", payload)
	}

	event := tracker.events[0]
	if event.Name != enums.TrackingEvent("Purchase") || event.Currency != "USD" || event.Customer.ClientIP != "203.0.113.7" {
		t.Fatalf("unexpected event %+v", event)
	}
	if !event.OccurredAt.Equal(time.Unix(1767225600, 0)) {
		t.Fatalf("expected explicit event time, got %v", event.OccurredAt)
	}
}

func TestTrackEventUnconfigured(t *testing.T) {
	tracker := &stubTracker{forwardFn: func(ctx context.Context, event tracking.Event) (*conversions.Response, error) {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "tracking is not configured")
	}}

	req := httptest.NewRequest(http.MethodPost, "/api/functions/track-event", strings.NewReader(`{"event_name":"PageView"}`))
	resp := httptest.NewRecorder()
	TrackEvent(tracker, time.Now, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
	var payload map[string]string
	decodeBody(t, resp, &payload)
	if payload["error"] == "" {
		t.Fatalf("expected flat error body, got %v", payload)
	}
}

func TestTrackEventRequiresName(t *testing.T) {
	tracker := &stubTracker{}
	req := httptest.NewRequest(http.MethodPost, "/api/functions/track-event", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	TrackEvent(tracker, time.Now, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	var payload map[string]string
	decodeBody(t, resp, &payload)
	if payload["error"] != "validation failed: event_name is required" {
		t.Fatalf("unexpected message %q", payload["error"])
	}
	if len(tracker.events) != 0 {
		t.Fatal("tracker should not be called on invalid input")
	}
}
