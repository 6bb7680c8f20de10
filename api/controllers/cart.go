package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

func CartFetch(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := middleware.CartSessionFromContext(r.Context())
		c, err := svc.Get(r.Context(), session)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toCartDTO(session, c))
	}
}

type addCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gte=1,lte=100"`
	Color     string    `json:"color" validate:"omitempty,max=40"`
	Size      string    `json:"size" validate:"omitempty,max=40"`
	SourceURL string    `json:"event_source_url" validate:"omitempty,max=2048"`
}

func CartAddItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session := middleware.CartSessionFromContext(r.Context())
		c, err := svc.AddItem(r.Context(), session, cart.AddItemInput{
			ProductID: payload.ProductID,
			Quantity:  payload.Quantity,
			Variant:   cart.Variant{Color: payload.Color, Size: payload.Size},
			ClientIP:  middleware.ClientIP(r),
			UserAgent: r.UserAgent(),
			SourceURL: payload.SourceURL,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toCartDTO(session, c))
	}
}

type updateCartItemRequest struct {
	Quantity *int   `json:"quantity" validate:"required,gte=0,lte=100"`
	Color    string `json:"color" validate:"omitempty,max=40"`
	Size     string `json:"size" validate:"omitempty,max=40"`
}

// CartUpdateItem replaces a line quantity. Zero removes the line.
func CartUpdateItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session := middleware.CartSessionFromContext(r.Context())
		c, err := svc.UpdateQuantity(r.Context(), session, productID, *payload.Quantity, cart.Variant{Color: payload.Color, Size: payload.Size})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toCartDTO(session, c))
	}
}

func CartRemoveItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		q := r.URL.Query()
		variant := cart.Variant{Color: strings.TrimSpace(q.Get("color")), Size: strings.TrimSpace(q.Get("size"))}

		session := middleware.CartSessionFromContext(r.Context())
		c, err := svc.RemoveItem(r.Context(), session, productID, variant)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toCartDTO(session, c))
	}
}

func CartClear(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Clear(r.Context(), middleware.CartSessionFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

type cartCheckoutRequest struct {
	customerFields
	attributionFields
}

// CartCheckout turns the session cart into an order. Once the order is
// stored the ordered lines are taken off the cart; anything added meanwhile
// stays. A failed removal is logged and the order still succeeds.
func CartCheckout(carts cart.Service, placer checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload cartCheckoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session := middleware.CartSessionFromContext(r.Context())
		c, err := carts.Get(r.Context(), session)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if c.IsEmpty() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty"))
			return
		}

		receipt, err := placer.PlaceOrder(r.Context(), checkout.Input{
			Source:      enums.OrderSourceStorefront,
			Customer:    payload.toCustomer(),
			Items:       checkout.ItemsFromCart(c),
			Attribution: payload.toAttribution(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if _, err := carts.RemoveOrdered(r.Context(), session, c.Items); err != nil && logg != nil {
			logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "cart.clear_after_checkout_failed")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, receiptFields(receipt))
	}
}
