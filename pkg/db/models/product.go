package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable catalog listing. Colors and sizes are the variant
// options a cart line or order item may select.
type Product struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Name           string           `gorm:"column:name;not null"`
	Slug           string           `gorm:"column:slug;not null;uniqueIndex"`
	Description    *string          `gorm:"column:description"`
	Price          decimal.Decimal  `gorm:"column:price;type:numeric(12,2);not null"`
	CompareAtPrice *decimal.Decimal `gorm:"column:compare_at_price;type:numeric(12,2)"`
	Stock          int              `gorm:"column:stock;not null"`
	CategoryID     *uuid.UUID       `gorm:"column:category_id;type:uuid;index"`
	Images         []string         `gorm:"column:images;type:jsonb;serializer:json;not null"`
	Colors         []string         `gorm:"column:colors;type:jsonb;serializer:json;not null"`
	Sizes          []string         `gorm:"column:sizes;type:jsonb;serializer:json;not null"`
	IsActive       bool             `gorm:"column:is_active;not null"`
	IsFeatured     bool             `gorm:"column:is_featured;not null"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// PrimaryImage returns the first image url, if any.
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// OffersColor reports whether color is empty or one of the product's colors.
func (p Product) OffersColor(color string) bool {
	return offers(p.Colors, color)
}

// OffersSize reports whether size is empty or one of the product's sizes.
func (p Product) OffersSize(size string) bool {
	return offers(p.Sizes, size)
}

func offers(options []string, value string) bool {
	if value == "" {
		return true
	}
	for _, option := range options {
		if option == value {
			return true
		}
	}
	return false
}
