package models

import (
	"time"

	"gorm.io/gorm"
)

// Product is one series in the badge/stall catalog, e.g.
// "【goodslove】劍影俠光" under the 金屬徽章 category.
type Product struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	CategoryID string         `gorm:"not null;index" json:"categoryId"` // one of a small fixed set of category names
	SeriesName string         `gorm:"not null" json:"seriesName"`
	Specs      []Spec         `gorm:"foreignKey:ProductID" json:"specs"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// Spec is one purchasable variant within a product series. IsActive=false
// means "not currently orderable": the entry persists but is hidden from
// new-order selection, never deleted. No column default on IsActive: gorm
// skips defaulted zero values on insert, which would store an inactive
// spec as active. Callers set the flag explicitly.
type Spec struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ProductID uint           `gorm:"not null;index" json:"product_id"`
	SpecName  string         `gorm:"not null" json:"specName"`
	Price     int            `gorm:"not null" json:"price"`
	ImageURL  string         `json:"imageUrl"`
	IsActive  bool           `gorm:"not null" json:"isActive"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Spec model
func (Spec) TableName() string {
	return "product_specs"
}

// ActiveSpecs returns only the specs currently orderable.
func (p *Product) ActiveSpecs() []Spec {
	active := make([]Spec, 0, len(p.Specs))
	for _, s := range p.Specs {
		if s.IsActive {
			active = append(active, s)
		}
	}
	return active
}
