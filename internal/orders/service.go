// Package orders implements the admin side of cash-on-delivery orders.
package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

// ListInput filters the admin listing.
type ListInput struct {
	Status *enums.OrderStatus
	Source *enums.OrderSource
	Search string
	Limit  int
	Cursor string
}

// Service defines admin order operations.
type Service interface {
	List(ctx context.Context, input ListInput) (*pagination.Page[models.Order], error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, next enums.OrderStatus) (*models.Order, error)
}

type service struct {
	repo      Repository
	tx        db.TxRunner
	inventory StockRestorer
	logg      *logger.Logger
}

// NewService builds the admin order service.
func NewService(repo Repository, tx db.TxRunner, inventory StockRestorer, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if inventory == nil {
		return nil, fmt.Errorf("stock restorer required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, inventory: inventory, logg: logg}, nil
}

func (s *service) List(ctx context.Context, input ListInput) (*pagination.Page[models.Order], error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
	}
	if input.Source != nil && !input.Source.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid source")
	}
	if _, err := pagination.ParseCursor(input.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	page, err := s.repo.List(ctx, ListQuery{
		Status:     input.Status,
		Source:     input.Source,
		Search:     input.Search,
		Pagination: pagination.Params{Limit: input.Limit, Cursor: input.Cursor},
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return page, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err)
	}
	return order, nil
}

// UpdateStatus applies an admin status transition. Repeating the current
// status is a no-op; cancelling returns every item's units to stock.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, next enums.OrderStatus) (*models.Order, error) {
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status").
			WithDetails(map[string]any{"status": next.String()})
	}

	var result *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, id)
		if err != nil {
			return loadError(err)
		}
		if order.Status == next {
			result = order
			return nil
		}
		if !order.Status.CanTransitionTo(next) {
			return transitionError(order.Status, next)
		}

		moved, err := repo.UpdateStatus(ctx, order.ID, order.Status, next)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed concurrently")
		}

		if next == enums.OrderStatusCancelled {
			for _, item := range order.Items {
				if item.ProductID == nil || item.Quantity <= 0 {
					continue
				}
				if err := s.inventory.Restore(ctx, tx, *item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}

		order.Status = next
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"order_id":     result.ID.String(),
		"order_number": result.OrderNumber,
		"status":       result.Status.String(),
	})
	s.logg.Info(ctx, "orders.status_updated")
	return result, nil
}

func transitionError(from, to enums.OrderStatus) error {
	return pkgerrors.Newf(pkgerrors.CodeStateConflict, "cannot move order from %s to %s", from, to).
		WithDetails(map[string]any{"from": from.String(), "to": to.String()})
}

func loadError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
}

type inventoryRestorer struct{}

// NewStockRestorer returns the default restorer, which increments product
// stock through the catalog repository bound to the transaction.
func NewStockRestorer() StockRestorer {
	return inventoryRestorer{}
}

func (inventoryRestorer) Restore(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return nil
	}
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock restore")
	}
	if err := products.NewRepository(tx).IncrementStock(ctx, productID, qty); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "restore stock")
	}
	return nil
}
