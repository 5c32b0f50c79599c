package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lmartins/retail-pos/pkg/enums"
)

// Sale is the immutable record of one finished checkout. No update or delete
// path exists for it anywhere in the API.
type Sale struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	CustomerID     uuid.UUID           `gorm:"column:customer_id;type:uuid;not null;index" json:"customerId"`
	Subtotal       decimal.Decimal     `gorm:"column:subtotal;type:numeric(12,2);not null" json:"subtotal"`
	Discount       decimal.Decimal     `gorm:"column:discount;type:numeric(5,2);not null" json:"discount"`
	Total          decimal.Decimal     `gorm:"column:total;type:numeric(12,2);not null" json:"total"`
	PaymentMethod  enums.PaymentMethod `gorm:"column:payment_method;not null" json:"paymentMethod"`
	OccurredAt     time.Time           `gorm:"column:occurred_at;not null;index" json:"date"`
	IdempotencyKey *string             `gorm:"column:idempotency_key;uniqueIndex" json:"-"`
	Items          []SaleItem          `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime" json:"-"`
}

func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// SaleItem is one cart line frozen at checkout time; UnitPrice is the price
// charged, not the product's current price.
type SaleItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"-"`
	SaleID    uuid.UUID       `gorm:"column:sale_id;type:uuid;not null;index" json:"-"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null" json:"productId"`
	Quantity  int             `gorm:"column:quantity;not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null" json:"price"`
}

func (i *SaleItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
