package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// All lists every model owned by the storefront schema.
func All() []any {
	return []any{
		&Category{},
		&Product{},
		&Order{},
		&OrderItem{},
		&Banner{},
		&Review{},
		&AdminUser{},
	}
}

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// BeforeCreate hooks assign ids when the database default is unavailable (sqlite).

func (c *Category) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

func (b *Banner) BeforeCreate(*gorm.DB) error {
	ensureID(&b.ID)
	return nil
}

func (r *Review) BeforeCreate(*gorm.DB) error {
	ensureID(&r.ID)
	return nil
}

func (a *AdminUser) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}
