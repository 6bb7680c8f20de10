package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/responses"
)

// PublicSettings are the storefront preference flags the browser reads at boot.
type PublicSettings struct {
	PixelID          string `json:"pixel_id,omitempty"`
	TrackingEnabled  bool   `json:"tracking_enabled"`
	Currency         string `json:"currency"`
	ShippingFee      string `json:"shipping_fee"`
	FreeShippingOver string `json:"free_shipping_over"`
}

func PublicSettingsHandler(settings PublicSettings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=300")
		responses.WriteSuccess(w, settings)
	}
}
