package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/tracking"
	"github.com/angelmondragon/storefront-backend/pkg/conversions"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// MaxLineQuantity caps the quantity of one product across a cart.
const MaxLineQuantity = 100

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// AddItemInput is a validated add-to-cart request.
type AddItemInput struct {
	ProductID uuid.UUID
	Quantity  int
	Variant   Variant
	ClientIP  string
	UserAgent string
	SourceURL string
}

// Service mutates session carts against the live catalog.
type Service interface {
	Get(ctx context.Context, sessionID string) (*Cart, error)
	AddItem(ctx context.Context, sessionID string, input AddItemInput) (*Cart, error)
	UpdateQuantity(ctx context.Context, sessionID string, productID uuid.UUID, quantity int, variant Variant) (*Cart, error)
	RemoveItem(ctx context.Context, sessionID string, productID uuid.UUID, variant Variant) (*Cart, error)
	Clear(ctx context.Context, sessionID string) error
	RemoveOrdered(ctx context.Context, sessionID string, ordered []Line) (*Cart, error)
}

type service struct {
	store    Store
	products productLoader
	notifier tracking.Notifier
	currency string
	logg     *logger.Logger
	locks    *sessionLocks
}

// NewService builds the cart service. A nil notifier disables AddToCart events.
func NewService(store Store, products productLoader, notifier tracking.Notifier, currency string, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if notifier == nil {
		notifier = tracking.Noop{}
	}
	return &service{
		store:    store,
		products: products,
		notifier: notifier,
		currency: strings.ToUpper(strings.TrimSpace(currency)),
		logg:     logg,
		locks:    newSessionLocks(),
	}, nil
}

func (s *service) Get(ctx context.Context, sessionID string) (*Cart, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return c, nil
}

func (s *service) AddItem(ctx context.Context, sessionID string, input AddItemInput) (*Cart, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	variant := normalizeVariant(input.Variant)

	product, err := s.loadProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if err := checkVariant(product, variant); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(sessionID)
	defer unlock()

	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	resulting := c.QuantityOf(product.ID) + input.Quantity
	if err := checkQuantity(product, resulting); err != nil {
		return nil, err
	}

	c.AddItem(refFor(product), input.Quantity, variant)
	if err := s.store.Save(ctx, sessionID, c); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}

	value := product.Price.Mul(decimal.NewFromInt(int64(input.Quantity)))
	s.notifier.Notify(ctx, tracking.Event{
		Name:        enums.TrackingEventAddToCart,
		SourceURL:   input.SourceURL,
		Customer:    conversions.Customer{ClientIP: input.ClientIP, UserAgent: input.UserAgent},
		Value:       &value,
		Currency:    s.currency,
		ContentIDs:  []string{product.ID.String()},
		ContentName: product.Name,
		NumItems:    input.Quantity,
	})
	return c, nil
}

func (s *service) UpdateQuantity(ctx context.Context, sessionID string, productID uuid.UUID, quantity int, variant Variant) (*Cart, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
	}
	variant = normalizeVariant(variant)

	var product *models.Product
	if quantity > 0 {
		p, err := s.loadProduct(ctx, productID)
		if err != nil {
			return nil, err
		}
		product = p
	}

	unlock := s.locks.lock(sessionID)
	defer unlock()

	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if product != nil {
		line, ok := c.Line(productID, variant)
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
		}
		resulting := c.QuantityOf(productID) - line.Quantity + quantity
		if err := checkQuantity(product, resulting); err != nil {
			return nil, err
		}
	}

	c.UpdateQuantity(productID, quantity, variant)
	if err := s.store.Save(ctx, sessionID, c); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return c, nil
}

func (s *service) RemoveItem(ctx context.Context, sessionID string, productID uuid.UUID, variant Variant) (*Cart, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	unlock := s.locks.lock(sessionID)
	defer unlock()

	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	c.RemoveItem(productID, normalizeVariant(variant))
	if err := s.store.Save(ctx, sessionID, c); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return c, nil
}

func (s *service) Clear(ctx context.Context, sessionID string) error {
	if err := requireSession(sessionID); err != nil {
		return err
	}
	unlock := s.locks.lock(sessionID)
	defer unlock()

	if err := s.store.Delete(ctx, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

// RemoveOrdered subtracts the lines of a placed order from the current cart.
// Items added while the order was being placed stay in the cart.
func (s *service) RemoveOrdered(ctx context.Context, sessionID string, ordered []Line) (*Cart, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	unlock := s.locks.lock(sessionID)
	defer unlock()

	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	c.Subtract(ordered)
	if c.IsEmpty() {
		if err := s.store.Delete(ctx, sessionID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}
		return c, nil
	}
	if err := s.store.Save(ctx, sessionID, c); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return c, nil
}

func (s *service) loadProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_id is required")
	}
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if product == nil || !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func checkVariant(product *models.Product, variant Variant) error {
	if !product.OffersColor(variant.Color) {
		return pkgerrors.New(pkgerrors.CodeValidation, "color not offered").
			WithDetails(map[string]any{"color": variant.Color, "available": product.Colors})
	}
	if !product.OffersSize(variant.Size) {
		return pkgerrors.New(pkgerrors.CodeValidation, "size not offered").
			WithDetails(map[string]any{"size": variant.Size, "available": product.Sizes})
	}
	return nil
}

func checkQuantity(product *models.Product, resulting int) error {
	if resulting > MaxLineQuantity {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "at most %d units per product", MaxLineQuantity)
	}
	if resulting > product.Stock {
		return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").
			WithDetails(map[string]any{"product_id": product.ID.String(), "available": product.Stock})
	}
	return nil
}

func requireSession(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart session is required")
	}
	return nil
}

func refFor(p *models.Product) ProductRef {
	return ProductRef{
		ID:    p.ID,
		Name:  p.Name,
		Slug:  p.Slug,
		Price: p.Price,
		Image: p.PrimaryImage(),
	}
}
