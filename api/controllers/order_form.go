package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
)

// customerFields is the delivery contact shared by every order form.
type customerFields struct {
	CustomerName    string `json:"customer_name"`
	CustomerPhone   string `json:"customer_phone"`
	CustomerEmail   string `json:"customer_email"`
	ShippingAddress string `json:"shipping_address"`
	City            string `json:"city"`
	Notes           string `json:"notes"`
}

func (c customerFields) toCustomer() checkout.Customer {
	return checkout.Customer{
		Name:    c.CustomerName,
		Phone:   c.CustomerPhone,
		Email:   c.CustomerEmail,
		Address: c.ShippingAddress,
		City:    c.City,
		Notes:   c.Notes,
	}
}

// attributionFields are the browser identifiers that deduplicate server events.
type attributionFields struct {
	EventID        string `json:"event_id" validate:"omitempty,max=100"`
	EventSourceURL string `json:"event_source_url" validate:"omitempty,max=2048"`
	FBP            string `json:"fbp" validate:"omitempty,max=255"`
	FBC            string `json:"fbc" validate:"omitempty,max=255"`
}

func (a attributionFields) toAttribution(r *http.Request) checkout.Attribution {
	return checkout.Attribution{
		EventID:   strings.TrimSpace(a.EventID),
		SourceURL: strings.TrimSpace(a.EventSourceURL),
		ClientIP:  middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
		FBP:       strings.TrimSpace(a.FBP),
		FBC:       strings.TrimSpace(a.FBC),
	}
}

type orderItemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Color     string    `json:"color"`
	Size      string    `json:"size"`
}

func toCheckoutItems(items []orderItemRequest) []checkout.Item {
	out := make([]checkout.Item, 0, len(items))
	for _, item := range items {
		out = append(out, checkout.Item{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Color:     item.Color,
			Size:      item.Size,
		})
	}
	return out
}

func receiptFields(receipt *checkout.Receipt) map[string]any {
	return map[string]any{
		"order_id":     receipt.OrderID,
		"order_number": receipt.OrderNumber,
		"total":        receipt.Total,
	}
}
