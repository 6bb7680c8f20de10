// Package products serves the storefront catalog and its admin CRUD.
package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

const (
	maxNameLength   = 200
	maxImages       = 10
	maxVariantCount = 30
)

// RatingSummary aggregates approved reviews.
type RatingSummary struct {
	Average decimal.Decimal `json:"average"`
	Count   int64           `json:"count"`
}

// Detail is a product page.
type Detail struct {
	Product models.Product
	Rating  RatingSummary
}

// ListInput filters a listing. CategorySlug includes the category's
// descendants.
type ListInput struct {
	CategorySlug string
	Query        string
	Featured     *bool
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	Sort         enums.ProductSort
	Limit        int
	Cursor       string
}

// CreateInput holds a new product.
type CreateInput struct {
	Name           string
	Slug           string
	Description    *string
	Price          decimal.Decimal
	CompareAtPrice *decimal.Decimal
	Stock          int
	CategoryID     *uuid.UUID
	Images         []string
	Colors         []string
	Sizes          []string
	IsActive       bool
	IsFeatured     bool
}

// UpdateInput holds optional product changes. SetCategory with a nil
// CategoryID clears the category.
type UpdateInput struct {
	Name           *string
	Slug           *string
	Description    *string
	Price          *decimal.Decimal
	CompareAtPrice *decimal.Decimal
	ClearCompareAt bool
	Stock          *int
	SetCategory    bool
	CategoryID     *uuid.UUID
	Images         *[]string
	Colors         *[]string
	Sizes          *[]string
	IsActive       *bool
	IsFeatured     *bool
}

type categoryResolver interface {
	SubtreeIDs(ctx context.Context, slug string) ([]uuid.UUID, error)
}

type ratingSource interface {
	Summary(ctx context.Context, productID uuid.UUID) (decimal.Decimal, int64, error)
}

// Service exposes catalog reads and admin mutations.
type Service interface {
	List(ctx context.Context, input ListInput) (*pagination.Page[models.Product], error)
	GetBySlug(ctx context.Context, slug string) (*Detail, error)
	AdminList(ctx context.Context, input ListInput) (*pagination.Page[models.Product], error)
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Create(ctx context.Context, input CreateInput) (*models.Product, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo       *Repository
	tx         db.TxRunner
	categories categoryResolver
	ratings    ratingSource
}

// NewService builds the catalog service.
func NewService(repo *Repository, tx db.TxRunner, categories categoryResolver, ratings ratingSource) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if categories == nil {
		return nil, fmt.Errorf("category resolver required")
	}
	if ratings == nil {
		return nil, fmt.Errorf("rating source required")
	}
	return &service{repo: repo, tx: tx, categories: categories, ratings: ratings}, nil
}

func (s *service) List(ctx context.Context, input ListInput) (*pagination.Page[models.Product], error) {
	return s.list(ctx, input, false)
}

func (s *service) AdminList(ctx context.Context, input ListInput) (*pagination.Page[models.Product], error) {
	return s.list(ctx, input, true)
}

func (s *service) list(ctx context.Context, input ListInput, includeInactive bool) (*pagination.Page[models.Product], error) {
	if input.MinPrice != nil && input.MaxPrice != nil && input.MinPrice.GreaterThan(*input.MaxPrice) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "min_price must not exceed max_price")
	}
	sort := input.Sort
	if sort == "" {
		sort = enums.ProductSortNewest
	}
	if !sort.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid sort")
	}

	query := ListQuery{
		Query:           input.Query,
		Featured:        input.Featured,
		MinPrice:        input.MinPrice,
		MaxPrice:        input.MaxPrice,
		Sort:            sort,
		IncludeInactive: includeInactive,
		Pagination:      pagination.Params{Limit: input.Limit, Cursor: input.Cursor},
	}
	if categorySlug := strings.TrimSpace(input.CategorySlug); categorySlug != "" {
		ids, err := s.categories.SubtreeIDs(ctx, categorySlug)
		if err != nil {
			return nil, err
		}
		query.CategoryIDs = ids
	}

	if err := validateCursor(sort, input.Cursor); err != nil {
		return nil, err
	}

	page, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	return page, nil
}

func (s *service) GetBySlug(ctx context.Context, value string) (*Detail, error) {
	product, err := s.repo.FindBySlug(ctx, strings.TrimSpace(value))
	if err != nil {
		return nil, notFound(err)
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	average, count, err := s.ratings.Summary(ctx, product.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load rating summary")
	}
	return &Detail{Product: *product, Rating: RatingSummary{Average: average, Count: count}}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return product, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Product, error) {
	product := &models.Product{
		Name:           strings.TrimSpace(input.Name),
		Description:    trimOptional(input.Description),
		Price:          input.Price,
		CompareAtPrice: input.CompareAtPrice,
		Stock:          input.Stock,
		CategoryID:     input.CategoryID,
		Images:         cleanList(input.Images),
		Colors:         cleanList(input.Colors),
		Sizes:          cleanList(input.Sizes),
		IsActive:       input.IsActive,
		IsFeatured:     input.IsFeatured,
	}
	productSlug, err := resolveSlug(input.Slug, product.Name)
	if err != nil {
		return nil, err
	}
	product.Slug = productSlug
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := ensureCategory(ctx, tx, product.CategoryID); err != nil {
			return err
		}
		if err := ensureSlugFree(ctx, repo, product.Slug, uuid.Nil); err != nil {
			return err
		}
		if err := repo.Create(ctx, product); err != nil {
			if db.IsUniqueViolation(err, "") {
				return slugTakenError(product.Slug)
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Product, error) {
	var updated *models.Product
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		product, err := repo.FindByID(ctx, id)
		if err != nil {
			return notFound(err)
		}

		if input.Name != nil {
			product.Name = strings.TrimSpace(*input.Name)
		}
		if input.Slug != nil {
			productSlug, err := resolveSlug(*input.Slug, product.Name)
			if err != nil {
				return err
			}
			if productSlug != product.Slug {
				if err := ensureSlugFree(ctx, repo, productSlug, product.ID); err != nil {
					return err
				}
				product.Slug = productSlug
			}
		}
		if input.Description != nil {
			product.Description = trimOptional(input.Description)
		}
		if input.Price != nil {
			product.Price = *input.Price
		}
		if input.ClearCompareAt {
			product.CompareAtPrice = nil
		} else if input.CompareAtPrice != nil {
			compareAt := *input.CompareAtPrice
			product.CompareAtPrice = &compareAt
		}
		if input.Stock != nil {
			product.Stock = *input.Stock
		}
		if input.SetCategory {
			product.CategoryID = input.CategoryID
			if err := ensureCategory(ctx, tx, product.CategoryID); err != nil {
				return err
			}
		}
		if input.Images != nil {
			product.Images = cleanList(*input.Images)
		}
		if input.Colors != nil {
			product.Colors = cleanList(*input.Colors)
		}
		if input.Sizes != nil {
			product.Sizes = cleanList(*input.Sizes)
		}
		if input.IsActive != nil {
			product.IsActive = *input.IsActive
		}
		if input.IsFeatured != nil {
			product.IsFeatured = *input.IsFeatured
		}

		if err := validateProduct(product); err != nil {
			return err
		}
		if err := repo.Save(ctx, product); err != nil {
			if db.IsUniqueViolation(err, "") {
				return slugTakenError(product.Slug)
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product")
		}
		updated = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		deleted, err := s.repo.WithTx(tx).Delete(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
		}
		if !deleted {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil
	})
}

func validateProduct(p *models.Product) error {
	switch {
	case p.Name == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	case len([]rune(p.Name)) > maxNameLength:
		return pkgerrors.Newf(pkgerrors.CodeValidation, "name must be at most %d characters", maxNameLength)
	case p.Price.IsNegative():
		return pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	case p.CompareAtPrice != nil && !p.CompareAtPrice.GreaterThan(p.Price):
		return pkgerrors.New(pkgerrors.CodeValidation, "compare_at_price must exceed price")
	case p.Stock < 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "stock must not be negative")
	case len(p.Images) > maxImages:
		return pkgerrors.Newf(pkgerrors.CodeValidation, "at most %d images", maxImages)
	case len(p.Colors) > maxVariantCount || len(p.Sizes) > maxVariantCount:
		return pkgerrors.Newf(pkgerrors.CodeValidation, "at most %d colors and sizes", maxVariantCount)
	}
	p.Price = p.Price.Round(2)
	if p.CompareAtPrice != nil {
		rounded := p.CompareAtPrice.Round(2)
		p.CompareAtPrice = &rounded
	}
	return nil
}

func ensureCategory(ctx context.Context, tx *gorm.DB, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	var count int64
	if err := tx.WithContext(ctx).Model(&models.Category{}).Where("id = ?", *id).Count(&count).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check category")
	}
	if count == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "category not found").
			WithDetails(map[string]any{"category_id": id.String()})
	}
	return nil
}

func ensureSlugFree(ctx context.Context, repo *Repository, productSlug string, exclude uuid.UUID) error {
	taken, err := repo.SlugTaken(ctx, productSlug, exclude)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check product slug")
	}
	if taken {
		return slugTakenError(productSlug)
	}
	return nil
}

func resolveSlug(raw, name string) (string, error) {
	source := strings.TrimSpace(raw)
	if source == "" {
		source = name
	}
	out := slug.Make(source)
	if !slug.IsSlug(out) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "slug must contain letters or digits")
	}
	return out, nil
}

func slugTakenError(value string) error {
	return pkgerrors.New(pkgerrors.CodeConflict, "product slug already in use").
		WithDetails(map[string]any{"slug": value})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
}

func validateCursor(sort enums.ProductSort, cursor string) error {
	var err error
	if sort == enums.ProductSortNewest {
		_, err = pagination.ParseCursor(cursor)
	} else {
		_, err = pagination.ParseOffsetCursor(cursor)
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	return nil
}

// cleanList trims entries and drops blanks and duplicates, keeping order.
func cleanList(values []string) []string {
	out := []string{}
	seen := map[string]struct{}{}
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
