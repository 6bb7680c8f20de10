// Package landing places single-product orders from campaign landing pages.
package landing

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// MaxQuantity caps a landing-page order.
const MaxQuantity = 20

// Input is a landing-page order form submission.
type Input struct {
	LandingSlug string
	ProductID   uuid.UUID
	Quantity    int
	Color       string
	Size        string
	Customer    checkout.Customer
	Attribution checkout.Attribution
}

// Service places landing-page orders.
type Service interface {
	PlaceOrder(ctx context.Context, input Input) (*checkout.Receipt, error)
}

type service struct {
	checkout checkout.Service
}

// NewService builds the landing order service on top of checkout.
func NewService(placer checkout.Service) (Service, error) {
	if placer == nil {
		return nil, fmt.Errorf("checkout service required")
	}
	return &service{checkout: placer}, nil
}

func (s *service) PlaceOrder(ctx context.Context, input Input) (*checkout.Receipt, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_id is required")
	}
	if input.Quantity < 1 || input.Quantity > MaxQuantity {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "quantity must be between 1 and %d", MaxQuantity).
			WithDetails(map[string]any{"quantity": input.Quantity})
	}
	return s.checkout.PlaceOrder(ctx, checkout.Input{
		Source:      enums.OrderSourceLanding,
		LandingSlug: input.LandingSlug,
		Customer:    input.Customer,
		Items: []checkout.Item{{
			ProductID: input.ProductID,
			Quantity:  input.Quantity,
			Color:     input.Color,
			Size:      input.Size,
		}},
		Attribution: input.Attribution,
	})
}
