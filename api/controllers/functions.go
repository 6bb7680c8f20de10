package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/internal/landing"
	"github.com/angelmondragon/storefront-backend/internal/tracking"
	"github.com/angelmondragon/storefront-backend/pkg/conversions"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type createOrderRequest struct {
	customerFields
	attributionFields
	Items []orderItemRequest `json:"items"`
}

// CreateOrder is the order-creation function: validates the form, prices the
// items from the catalog and stores the order with its items.
func CreateOrder(placer checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteFunctionError(r.Context(), logg, w, err)
			return
		}

		receipt, err := placer.PlaceOrder(r.Context(), checkout.Input{
			Source:      enums.OrderSourceStorefront,
			Customer:    payload.toCustomer(),
			Items:       toCheckoutItems(payload.Items),
			Attribution: payload.toAttribution(r),
		})
		if err != nil {
			responses.WriteFunctionError(r.Context(), logg, w, err)
			return
		}
		responses.WriteFunctionSuccess(w, http.StatusCreated, receiptFields(receipt))
	}
}

type createLandingOrderRequest struct {
	customerFields
	attributionFields
	LandingSlug string    `json:"landing_slug"`
	ProductID   uuid.UUID `json:"product_id"`
	Quantity    int       `json:"quantity"`
	Color       string    `json:"color"`
	Size        string    `json:"size"`
}

// CreateLandingOrder is the single-product landing-page order function.
func CreateLandingOrder(svc landing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createLandingOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteFunctionError(r.Context(), logg, w, err)
			return
		}

		receipt, err := svc.PlaceOrder(r.Context(), landing.Input{
			LandingSlug: strings.TrimSpace(payload.LandingSlug),
			ProductID:   payload.ProductID,
			Quantity:    payload.Quantity,
			Color:       payload.Color,
			Size:        payload.Size,
			Customer:    payload.toCustomer(),
			Attribution: payload.toAttribution(r),
		})
		if err != nil {
			responses.WriteFunctionError(r.Context(), logg, w, err)
			return
		}
		responses.WriteFunctionSuccess(w, http.StatusCreated, receiptFields(receipt))
	}
}

type trackEventRequest struct {
	EventName      string           `json:"event_name" validate:"required"`
	EventID        string           `json:"event_id"`
	EventSourceURL string           `json:"event_source_url"`
	EventTime      *int64           `json:"event_time"`
	Value          *decimal.Decimal `json:"value"`
	Currency       string           `json:"currency"`
	ContentIDs     []string         `json:"content_ids" validate:"omitempty,max=50,dive,max=100"`
	ContentName    string           `json:"content_name" validate:"omitempty,max=200"`
	ContentType    string           `json:"content_type" validate:"omitempty,max=50"`
	NumItems       int              `json:"num_items" validate:"gte=0"`
	OrderID        string           `json:"order_id" validate:"omitempty,max=100"`
	Email          string           `json:"email" validate:"omitempty,max=254"`
	Phone          string           `json:"phone" validate:"omitempty,max=32"`
	FirstName      string           `json:"first_name" validate:"omitempty,max=100"`
	City           string           `json:"city" validate:"omitempty,max=100"`
	FBP            string           `json:"fbp" validate:"omitempty,max=255"`
	FBC            string           `json:"fbc" validate:"omitempty,max=255"`
}

// TrackEvent forwards one conversion event synchronously and reports how
// many events the upstream accepted.
func TrackEvent(svc tracking.Service, now func() time.Time, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload trackEventRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteFunctionError(r.Context(), logg, w, err)
			return
		}

		occurred := now()
		if payload.EventTime != nil && *payload.EventTime > 0 {
			occurred = time.Unix(*payload.EventTime, 0)
		}

		resp, err := svc.Forward(r.Context(), tracking.Event{
			Name:       enums.TrackingEvent(strings.TrimSpace(payload.EventName)),
			EventID:    strings.TrimSpace(payload.EventID),
			SourceURL:  strings.TrimSpace(payload.EventSourceURL),
			OccurredAt: occurred,
			Customer: conversions.Customer{
				Email:     payload.Email,
				Phone:     payload.Phone,
				FirstName: payload.FirstName,
				City:      payload.City,
				ClientIP:  middleware.ClientIP(r),
				UserAgent: r.UserAgent(),
				FBP:       payload.FBP,
				FBC:       payload.FBC,
			},
			Value:       payload.Value,
			Currency:    strings.ToUpper(strings.TrimSpace(payload.Currency)),
			ContentIDs:  payload.ContentIDs,
			ContentName: payload.ContentName,
			ContentType: payload.ContentType,
			NumItems:    payload.NumItems,
			OrderID:     payload.OrderID,
		})
		if err != nil {
			responses.WriteFunctionError(r.Context(), logg, w, err)
			return
		}
		responses.WriteFunctionSuccess(w, http.StatusOK, map[string]any{"events_received": resp.EventsReceived})
	}
}
