package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

const checkoutBody = `{"customer_name":"Ana Ruiz","customer_phone":"5550102030","shipping_address":"12 Elm St","city":"Springfield"}`

func filledCart() *cart.Cart {
	c := cart.New()
	c.AddItem(cart.ProductRef{ID: uuid.New(), Name: "Tote Bag", Slug: "tote-bag", Price: decimal.RequireFromString("12.25")}, 2, cart.Variant{Color: "red"})
	return c
}

func checkoutRequest(session string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/checkout", strings.NewReader(checkoutBody))
	return req.WithContext(middleware.WithCartSession(req.Context(), session))
}

func TestCartFetchIncludesTotals(t *testing.T) {
	carts := &stubCarts{cart: filledCart()}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req = req.WithContext(middleware.WithCartSession(req.Context(), "sess-1"))
	resp := httptest.NewRecorder()
	CartFetch(carts, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data struct {
			SessionID string `json:"session_id"`
			ItemCount int    `json:"item_count"`
			Total     string `json:"total"`
			Items     []struct {
				Color     string `json:"color"`
				LineTotal string `json:"line_total"`
			} `json:"items"`
		} `json:"data"`
	}
	decodeBody(t, resp, &envelope)
	if envelope.Data.SessionID != "sess-1" || envelope.Data.ItemCount != 2 || envelope.Data.Total != "24.5" {
		t.Fatalf("unexpected cart %+v", envelope.Data)
	}
	if len(envelope.Data.Items) != 1 || envelope.Data.Items[0].Color != "red" || envelope.Data.Items[0].LineTotal != "24.5" {
		t.Fatalf("unexpected lines %+v", envelope.Data.Items)
	}
}

func TestCartCheckoutRemovesOrderedLines(t *testing.T) {
	carts := &stubCarts{cart: filledCart()}
	placer := &stubPlacer{placeFn: func(ctx context.Context, input checkout.Input) (*checkout.Receipt, error) {
		return &checkout.Receipt{OrderID: uuid.New(), OrderNumber: "SF-0002", Total: decimal.RequireFromString("24.50")}, nil
	}}

	resp := httptest.NewRecorder()
	CartCheckout(carts, placer, nil).ServeHTTP(resp, checkoutRequest("sess-2"))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d (%s)", resp.Code, resp.Body.String())
	}
	if len(carts.cleared) != 0 {
		t.Fatalf("checkout must not wipe the whole cart, cleared=%v", carts.cleared)
	}
	removed := carts.removed["sess-2"]
	if len(removed) != 1 || removed[0].Quantity != 2 {
		t.Fatalf("expected the ordered line removed, got %+v", removed)
	}
	input := placer.inputs[0]
	if input.Source != enums.OrderSourceStorefront || len(input.Items) != 1 || input.Items[0].Quantity != 2 {
		t.Fatalf("unexpected checkout input %+v", input)
	}
}

func TestCartCheckoutKeepsCartOnFailure(t *testing.T) {
	carts := &stubCarts{cart: filledCart()}
	placer := &stubPlacer{placeFn: func(ctx context.Context, input checkout.Input) (*checkout.Receipt, error) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock for Tote Bag")
	}}

	resp := httptest.NewRecorder()
	CartCheckout(carts, placer, nil).ServeHTTP(resp, checkoutRequest("sess-3"))

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	if len(carts.cleared) != 0 || len(carts.removed) != 0 {
		t.Fatalf("cart must survive a failed checkout, cleared=%v removed=%v", carts.cleared, carts.removed)
	}
}

func TestCartCheckoutRejectsEmptyCart(t *testing.T) {
	carts := &stubCarts{}
	placer := &stubPlacer{placeFn: func(ctx context.Context, input checkout.Input) (*checkout.Receipt, error) {
		t.Fatal("placer should not be called")
		return nil, nil
	}}

	resp := httptest.NewRecorder()
	CartCheckout(carts, placer, nil).ServeHTTP(resp, checkoutRequest("sess-4"))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartCheckoutIgnoresRemovalFailure(t *testing.T) {
	carts := &stubCarts{cart: filledCart(), removeErr: errors.New("redis down")}
	placer := &stubPlacer{placeFn: func(ctx context.Context, input checkout.Input) (*checkout.Receipt, error) {
		return &checkout.Receipt{OrderID: uuid.New(), OrderNumber: "SF-0003", Total: decimal.RequireFromString("24.50")}, nil
	}}

	resp := httptest.NewRecorder()
	CartCheckout(carts, placer, nil).ServeHTTP(resp, checkoutRequest("sess-5"))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
}

func TestCartUpdateItemRequiresQuantity(t *testing.T) {
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/cart/items/"+uuid.NewString(), strings.NewReader(`{"color":"red"}`))
	req = withURLParam(req, "productId", uuid.NewString())
	resp := httptest.NewRecorder()
	CartUpdateItem(&stubCarts{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
