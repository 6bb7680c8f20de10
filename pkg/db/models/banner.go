package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Banner is a promotional image scheduled into a storefront placement.
type Banner struct {
	ID        uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	Title     string                `gorm:"column:title;not null"`
	Subtitle  *string               `gorm:"column:subtitle"`
	ImageURL  string                `gorm:"column:image_url;not null"`
	LinkURL   *string               `gorm:"column:link_url"`
	Placement enums.BannerPlacement `gorm:"column:placement;type:text;not null;index"`
	SortOrder int                   `gorm:"column:sort_order;not null"`
	IsActive  bool                  `gorm:"column:is_active;not null"`
	StartsAt  *time.Time            `gorm:"column:starts_at"`
	EndsAt    *time.Time            `gorm:"column:ends_at"`
	CreatedAt time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// LiveAt reports whether the banner is active and inside its schedule at now.
func (b Banner) LiveAt(now time.Time) bool {
	if !b.IsActive {
		return false
	}
	if b.StartsAt != nil && now.Before(*b.StartsAt) {
		return false
	}
	if b.EndsAt != nil && !now.Before(*b.EndsAt) {
		return false
	}
	return true
}
