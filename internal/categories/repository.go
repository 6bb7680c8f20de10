package categories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// Repository persists categories.
type Repository struct {
	repo.Base
}

// NewRepository binds a category repository to db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx rebinds the repository to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Base.WithTx(tx)}
}

// List returns every category ordered by name.
func (r *Repository) List(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	var rows []models.Category
	q := r.DB(ctx).Order("name ASC").Order("id ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var row models.Category
	if err := r.DB(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var row models.Category
	if err := r.DB(ctx).Where("slug = ?", slug).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// SlugTaken reports whether another category already uses slug.
func (r *Repository) SlugTaken(ctx context.Context, slug string, exclude uuid.UUID) (bool, error) {
	var count int64
	q := r.DB(ctx).Model(&models.Category{}).Where("slug = ?", slug)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) Create(ctx context.Context, row *models.Category) error {
	return r.DB(ctx).Create(row).Error
}

func (r *Repository) Save(ctx context.Context, row *models.Category) error {
	return r.DB(ctx).Save(row).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.DB(ctx).Where("id = ?", id).Delete(&models.Category{}).Error
}

// Reparent moves every direct child of from under to (nil makes them roots).
func (r *Repository) Reparent(ctx context.Context, from uuid.UUID, to *uuid.UUID) error {
	return r.DB(ctx).Model(&models.Category{}).
		Where("parent_id = ?", from).
		Update("parent_id", to).Error
}

// DetachProducts clears the category of every product in id.
func (r *Repository) DetachProducts(ctx context.Context, id uuid.UUID) error {
	return r.DB(ctx).Model(&models.Product{}).
		Where("category_id = ?", id).
		Update("category_id", nil).Error
}

// UpdateLevel stores a recomputed level.
func (r *Repository) UpdateLevel(ctx context.Context, id uuid.UUID, level int) error {
	return r.DB(ctx).Model(&models.Category{}).
		Where("id = ?", id).
		Update("level", level).Error
}
