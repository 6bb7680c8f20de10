package banners

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Repository persists banners.
type Repository struct {
	repo.Base
}

// NewRepository binds a banner repository to db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// List returns banners in display order. A nil placement lists every slot;
// activeOnly skips disabled rows but leaves schedule checks to the caller.
func (r *Repository) List(ctx context.Context, placement *enums.BannerPlacement, activeOnly bool) ([]models.Banner, error) {
	q := r.DB(ctx).Order("placement ASC").Order("sort_order ASC").Order("created_at ASC").Order("id ASC")
	if placement != nil {
		q = q.Where("placement = ?", *placement)
	}
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var rows []models.Banner
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Banner, error) {
	var row models.Banner
	if err := r.DB(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) Create(ctx context.Context, row *models.Banner) error {
	return r.DB(ctx).Create(row).Error
}

func (r *Repository) Save(ctx context.Context, row *models.Banner) error {
	return r.DB(ctx).Save(row).Error
}

// Delete reports whether a row was removed.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.DB(ctx).Where("id = ?", id).Delete(&models.Banner{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
