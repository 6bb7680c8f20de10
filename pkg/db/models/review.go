package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is a customer rating; only approved reviews are public.
type Review struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ProductID  uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	AuthorName string    `gorm:"column:author_name;not null"`
	Rating     int       `gorm:"column:rating;not null"`
	Comment    *string   `gorm:"column:comment"`
	IsApproved bool      `gorm:"column:is_approved;not null;index"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
