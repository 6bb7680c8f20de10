package reviews

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

// Repository persists product reviews.
type Repository struct {
	repo.Base
}

// NewRepository binds a review repository to db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// ListQuery selects reviews. A nil ProductID lists every product; a nil
// Approved lists both states.
type ListQuery struct {
	ProductID  *uuid.UUID
	Approved   *bool
	Pagination pagination.Params
}

// List returns reviews newest first.
func (r *Repository) List(ctx context.Context, query ListQuery) (*pagination.Page[models.Review], error) {
	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, err
	}

	qb := r.DB(ctx).Model(&models.Review{})
	if query.ProductID != nil {
		qb = qb.Where("product_id = ?", *query.ProductID)
	}
	if query.Approved != nil {
		qb = qb.Where("is_approved = ?", *query.Approved)
	}

	var rows []models.Review
	err = qb.Scopes(pagination.Keyset(cursor), pagination.NewestFirst).
		Limit(pagination.LimitWithBuffer(query.Pagination.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	page := pagination.Build(rows, query.Pagination.Limit, func(last models.Review) string {
		return pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	})
	return page, nil
}

func (r *Repository) Create(ctx context.Context, review *models.Review) error {
	return r.DB(ctx).Create(review).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var review models.Review
	if err := r.DB(ctx).Where("id = ?", id).First(&review).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// Approve publishes a review; it reports false when no row matched.
func (r *Repository) Approve(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.DB(ctx).Model(&models.Review{}).Where("id = ?", id).Update("is_approved", true)
	return res.RowsAffected > 0, res.Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.DB(ctx).Where("id = ?", id).Delete(&models.Review{})
	return res.RowsAffected > 0, res.Error
}

type summaryRow struct {
	Count   int64
	Average float64
}

// Summary returns the average rating (one decimal place) and count of the
// approved reviews of a product.
func (r *Repository) Summary(ctx context.Context, productID uuid.UUID) (decimal.Decimal, int64, error) {
	var row summaryRow
	err := r.DB(ctx).Model(&models.Review{}).
		Select("COUNT(*) AS count, COALESCE(AVG(rating), 0) AS average").
		Where("product_id = ? AND is_approved = ?", productID, true).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, 0, err
	}
	return decimal.NewFromFloat(row.Average).Round(1), row.Count, nil
}
