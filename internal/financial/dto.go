package financial

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordRequest creates or updates a ledger entry.
type RecordRequest struct {
	Type        string          `json:"type" validate:"required,oneof=income expense"`
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	Description string          `json:"description" validate:"required"`
	Date        string          `json:"date" validate:"required,datetime=2006-01-02"`
	CustomerID  *string         `json:"customerId,omitempty" validate:"omitempty,uuid"`
}

// RecordView is a ledger entry with the attributed customer name resolved.
type RecordView struct {
	ID           uuid.UUID       `json:"id"`
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	Date         time.Time       `json:"date"`
	CustomerID   *uuid.UUID      `json:"customerId,omitempty"`
	CustomerName string          `json:"customerName,omitempty"`
}

// SummaryView aggregates the ledger for the dashboard.
type SummaryView struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}
