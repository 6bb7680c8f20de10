package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is a node of the storefront taxonomy (at most three levels deep).
type Category struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Name        string     `gorm:"column:name;not null"`
	Slug        string     `gorm:"column:slug;not null;uniqueIndex"`
	ParentID    *uuid.UUID `gorm:"column:parent_id;type:uuid;index"`
	Level       int        `gorm:"column:level;not null"`
	Description *string    `gorm:"column:description"`
	ImageURL    *string    `gorm:"column:image_url"`
	IsActive    bool       `gorm:"column:is_active;not null"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
