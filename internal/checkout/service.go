// Package checkout places cash-on-delivery orders: it prices lines from the
// catalog, inserts the order and decrements stock in a single transaction.
package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/tracking"
	"github.com/angelmondragon/storefront-backend/pkg/conversions"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

// Receipt summarizes a placed order.
type Receipt struct {
	Order       *models.Order
	OrderID     uuid.UUID
	OrderNumber string
	Total       decimal.Decimal
}

// Service places orders.
type Service interface {
	PlaceOrder(ctx context.Context, input Input) (*Receipt, error)
}

type service struct {
	tx       db.TxRunner
	orders   orders.Repository
	products *products.Repository
	notifier tracking.Notifier
	pricing  Pricing
	metrics  *metrics.StorefrontMetrics
	logg     *logger.Logger
}

// NewService builds the checkout service. A nil notifier disables Purchase
// events.
func NewService(
	tx db.TxRunner,
	ordersRepo orders.Repository,
	productRepo *products.Repository,
	notifier tracking.Notifier,
	pricing Pricing,
	m *metrics.StorefrontMetrics,
	logg *logger.Logger,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if pricing.ShippingFee.IsNegative() || pricing.FreeShippingOver.IsNegative() {
		return nil, fmt.Errorf("shipping settings must not be negative")
	}
	if notifier == nil {
		notifier = tracking.Noop{}
	}
	pricing.Currency = strings.ToUpper(strings.TrimSpace(pricing.Currency))
	return &service{
		tx:       tx,
		orders:   ordersRepo,
		products: productRepo,
		notifier: notifier,
		pricing:  pricing,
		metrics:  m,
		logg:     logg,
	}, nil
}

func (s *service) PlaceOrder(ctx context.Context, input Input) (*Receipt, error) {
	if input.Source == "" {
		input.Source = enums.OrderSourceStorefront
	}
	if !input.Source.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order source")
	}
	input.LandingSlug = strings.TrimSpace(input.LandingSlug)
	if err := validateLandingSlug(input.LandingSlug); err != nil {
		return nil, err
	}
	input.Customer.normalize()
	if err := input.Customer.validate(); err != nil {
		return nil, err
	}
	items, err := normalizeItems(input.Items)
	if err != nil {
		return nil, err
	}

	var order *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		productRepo := s.products.WithTx(tx)
		ordersRepo := s.orders.WithTx(tx)

		catalog, err := productRepo.FindByIDs(ctx, productIDs(items))
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load products")
		}
		lines, subtotal, err := priceLines(items, catalog)
		if err != nil {
			return err
		}

		number, err := orders.AssignNumber(ctx, ordersRepo)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "assign order number")
		}
		shipping := s.pricing.ShippingFor(subtotal)
		order = &models.Order{
			OrderNumber:     number,
			Source:          input.Source,
			Status:          enums.OrderStatusPending,
			CustomerName:    input.Customer.Name,
			CustomerPhone:   input.Customer.Phone,
			CustomerEmail:   optional(input.Customer.Email),
			ShippingAddress: input.Customer.Address,
			City:            input.Customer.City,
			Notes:           optional(input.Customer.Notes),
			LandingSlug:     optional(input.LandingSlug),
			Subtotal:        subtotal,
			ShippingFee:     shipping,
			Total:           subtotal.Add(shipping),
			Items:           lines,
		}
		if err := ordersRepo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert order")
		}

		for _, item := range items {
			ok, err := productRepo.DecrementStock(ctx, item.ProductID, item.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrement stock")
			}
			if !ok {
				s.metrics.IncStockConflict()
				return stockError(catalog[item.ProductID], item.Quantity)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncOrder(order.Source.String())
	logCtx := s.logg.WithOrder(ctx, order.ID.String(), order.OrderNumber)
	logCtx = s.logg.WithFields(logCtx, map[string]any{
		"source": order.Source.String(),
		"total":  order.Total.StringFixed(2),
	})
	s.logg.Info(logCtx, "checkout.order_placed")

	s.notifier.Notify(ctx, s.purchaseEvent(order, input))
	return &Receipt{Order: order, OrderID: order.ID, OrderNumber: order.OrderNumber, Total: order.Total}, nil
}

func (s *service) purchaseEvent(order *models.Order, input Input) tracking.Event {
	ids := make([]string, 0, len(order.Items))
	seen := map[string]struct{}{}
	count := 0
	for _, item := range order.Items {
		count += item.Quantity
		if item.ProductID == nil {
			continue
		}
		id := item.ProductID.String()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	eventID := input.Attribution.EventID
	if strings.TrimSpace(eventID) == "" {
		eventID = order.ID.String()
	}
	total := order.Total
	return tracking.Event{
		Name:      enums.TrackingEventPurchase,
		EventID:   eventID,
		SourceURL: input.Attribution.SourceURL,
		Customer: conversions.Customer{
			Email:     input.Customer.Email,
			Phone:     input.Customer.Phone,
			FirstName: firstName(input.Customer.Name),
			City:      input.Customer.City,
			ClientIP:  input.Attribution.ClientIP,
			UserAgent: input.Attribution.UserAgent,
			FBP:       input.Attribution.FBP,
			FBC:       input.Attribution.FBC,
		},
		Value:       &total,
		Currency:    s.pricing.Currency,
		ContentIDs:  ids,
		ContentType: "product",
		NumItems:    count,
		OrderID:     order.OrderNumber,
	}
}

// priceLines snapshots each requested line against the catalog and returns
// the order subtotal.
func priceLines(items []Item, catalog map[uuid.UUID]models.Product) ([]models.OrderItem, decimal.Decimal, error) {
	lines := make([]models.OrderItem, 0, len(items))
	subtotal := decimal.Zero
	for _, item := range items {
		product, ok := catalog[item.ProductID]
		if !ok || !product.IsActive {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, "product not available").
				WithDetails(map[string]any{"product_id": item.ProductID.String()})
		}
		if !product.OffersColor(item.Color) || !product.OffersSize(item.Size) {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "variant not offered").
				WithDetails(map[string]any{
					"product_id": item.ProductID.String(),
					"color":      item.Color,
					"size":       item.Size,
				})
		}
		unit := product.Price.Round(2)
		total := unit.Mul(decimal.NewFromInt(int64(item.Quantity)))
		productID := product.ID
		lines = append(lines, models.OrderItem{
			ProductID:   &productID,
			ProductName: product.Name,
			UnitPrice:   unit,
			Quantity:    item.Quantity,
			Color:       optional(item.Color),
			Size:        optional(item.Size),
			LineTotal:   total,
		})
		subtotal = subtotal.Add(total)
	}
	return lines, subtotal, nil
}

func stockError(product models.Product, requested int) error {
	return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").
		WithDetails(map[string]any{
			"product_id": product.ID.String(),
			"product":    product.Name,
			"requested":  requested,
			"available":  product.Stock,
		})
}

func productIDs(items []Item) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(items))
	seen := map[uuid.UUID]struct{}{}
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

func firstName(name string) string {
	if fields := strings.Fields(name); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
