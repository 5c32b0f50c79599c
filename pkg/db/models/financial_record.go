package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lmartins/retail-pos/pkg/enums"
)

// FinancialRecord is one income or expense ledger entry. Checkout inserts
// income rows automatically; users manage manual entries directly.
type FinancialRecord struct {
	ID          uuid.UUID                 `gorm:"column:id;type:uuid;primaryKey"`
	Type        enums.FinancialRecordType `gorm:"column:type;not null"`
	Amount      decimal.Decimal           `gorm:"column:amount;type:numeric(12,2);not null"`
	Description string                    `gorm:"column:description;not null"`
	OccurredOn  time.Time                 `gorm:"column:occurred_on;type:date;not null"`
	CustomerID  *uuid.UUID                `gorm:"column:customer_id;type:uuid;index"`
	CreatedAt   time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}

func (r *FinancialRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
