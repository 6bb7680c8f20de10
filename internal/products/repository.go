package products

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

// Repository persists catalog products.
type Repository struct {
	repo.Base
}

// NewRepository binds a product repository to db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx rebinds the repository to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Base.WithTx(tx)}
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDs loads products keyed by id. Missing ids are absent from the map.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	out := make(map[uuid.UUID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Product
	if err := r.DB(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	if err := r.DB(ctx).Where("slug = ?", slug).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// SlugTaken reports whether another product already uses slug.
func (r *Repository) SlugTaken(ctx context.Context, slug string, exclude uuid.UUID) (bool, error) {
	var count int64
	q := r.DB(ctx).Model(&models.Product{}).Where("slug = ?", slug)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.DB(ctx).Create(product).Error
}

func (r *Repository) Save(ctx context.Context, product *models.Product) error {
	return r.DB(ctx).Save(product).Error
}

// Delete removes the product and its reviews. Order items keep their
// snapshot of the product.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if err := r.DB(ctx).Where("product_id = ?", id).Delete(&models.Review{}).Error; err != nil {
		return false, err
	}
	res := r.DB(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DecrementStock removes qty units when at least qty remain. It reports
// false when the guard rejected the update.
func (r *Repository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	res := r.DB(ctx).Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// IncrementStock returns qty units to a product.
func (r *Repository) IncrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	return r.DB(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		Update("stock", gorm.Expr("stock + ?", qty)).Error
}

// ListQuery filters a product listing.
type ListQuery struct {
	CategoryIDs     []uuid.UUID
	Query           string
	Featured        *bool
	MinPrice        *decimal.Decimal
	MaxPrice        *decimal.Decimal
	Sort            enums.ProductSort
	IncludeInactive bool
	Pagination      pagination.Params
}

// List returns one page of products. Newest-first pages use a keyset cursor;
// the price and name orderings page by offset.
func (r *Repository) List(ctx context.Context, query ListQuery) (*pagination.Page[models.Product], error) {
	qb := r.DB(ctx).Model(&models.Product{})
	if !query.IncludeInactive {
		qb = qb.Where("is_active = ?", true)
	}
	if query.CategoryIDs != nil {
		if len(query.CategoryIDs) == 0 {
			return &pagination.Page[models.Product]{Items: []models.Product{}}, nil
		}
		qb = qb.Where("category_id IN ?", query.CategoryIDs)
	}
	if search := strings.TrimSpace(query.Query); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(name) LIKE ? OR LOWER(COALESCE(description, '')) LIKE ?)", pattern, pattern)
	}
	if query.Featured != nil {
		qb = qb.Where("is_featured = ?", *query.Featured)
	}
	if query.MinPrice != nil {
		qb = qb.Where("price >= ?", *query.MinPrice)
	}
	if query.MaxPrice != nil {
		qb = qb.Where("price <= ?", *query.MaxPrice)
	}

	sort := query.Sort
	if sort == "" {
		sort = enums.ProductSortNewest
	}

	next := func(last models.Product) string {
		return pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	if sort == enums.ProductSortNewest {
		cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
		if err != nil {
			return nil, err
		}
		qb = qb.Scopes(pagination.Keyset(cursor))
	} else {
		offset, err := pagination.ParseOffsetCursor(query.Pagination.Cursor)
		if err != nil {
			return nil, err
		}
		qb = qb.Offset(offset)
		next = func(models.Product) string {
			return pagination.EncodeOffsetCursor(offset + pagination.NormalizeLimit(query.Pagination.Limit))
		}
	}

	var rows []models.Product
	if err := qb.Order(orderFor(sort)).Limit(pagination.LimitWithBuffer(query.Pagination.Limit)).Find(&rows).Error; err != nil {
		return nil, err
	}

	page := pagination.Build(rows, query.Pagination.Limit, next)
	return page, nil
}

func orderFor(sort enums.ProductSort) clause.OrderBy {
	column := func(name string, desc bool) clause.OrderByColumn {
		return clause.OrderByColumn{Column: clause.Column{Name: name}, Desc: desc}
	}
	switch sort {
	case enums.ProductSortPriceAsc:
		return clause.OrderBy{Columns: []clause.OrderByColumn{column("price", false), column("id", false)}}
	case enums.ProductSortPriceDesc:
		return clause.OrderBy{Columns: []clause.OrderByColumn{column("price", true), column("id", false)}}
	case enums.ProductSortName:
		return clause.OrderBy{Columns: []clause.OrderByColumn{column("name", false), column("id", false)}}
	default:
		return clause.OrderBy{Columns: []clause.OrderByColumn{column("created_at", true), column("id", true)}}
	}
}
