package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalog listing. Quantity is the aggregate stock count; the
// per-size breakdown lives in ProductSize rows and their quantities are kept
// summing to Quantity by the catalog service.
type Product struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name      string           `gorm:"column:name;not null" json:"name"`
	Code      *string          `gorm:"column:code" json:"code,omitempty"`
	BrandID   *uuid.UUID       `gorm:"column:brand_id;type:uuid" json:"brandId,omitempty"`
	Color     string           `gorm:"column:color;not null" json:"color"`
	Price     decimal.Decimal  `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	SalePrice *decimal.Decimal `gorm:"column:sale_price;type:numeric(12,2)" json:"salePrice,omitempty"`
	Image     string           `gorm:"column:image;not null" json:"image"`
	Quantity  int              `gorm:"column:quantity;not null;default:0;check:quantity >= 0" json:"quantity"`
	Sizes     []ProductSize    `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"sizes,omitempty"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ProductSize is one size/quantity pair of a product's stock breakdown.
type ProductSize struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"-"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;index" json:"-"`
	Size      string    `gorm:"column:size;not null" json:"size"`
	Quantity  int       `gorm:"column:quantity;not null;default:0" json:"quantity"`
}

func (s *ProductSize) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
