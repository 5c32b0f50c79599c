package customers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lmartins/retail-pos/pkg/db/models"
)

// CustomerRequest creates or updates a customer. Birthday is accepted as an
// ISO date (YYYY-MM-DD).
type CustomerRequest struct {
	Name     string   `json:"name" validate:"required"`
	Email    string   `json:"email,omitempty" validate:"omitempty,email"`
	Phone    string   `json:"phone,omitempty"`
	Birthday *string  `json:"birthday,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Tags     []string `json:"tags,omitempty"`
}

// CustomerView is a customer with the tag list decoded.
type CustomerView struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	Points    int        `json:"points"`
	Birthday  *time.Time `json:"birthday,omitempty"`
	Tags      []string   `json:"tags"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// HistoryRequest appends one purchase to a customer's history.
type HistoryRequest struct {
	Amount decimal.Decimal        `json:"amount" validate:"required"`
	Date   *time.Time             `json:"date,omitempty"`
	Items  []models.PurchasedItem `json:"items,omitempty"`
}

// HistoryView is one purchase history entry as returned by the API.
type HistoryView struct {
	ID         uuid.UUID              `json:"id"`
	OccurredAt time.Time              `json:"date"`
	Amount     decimal.Decimal        `json:"amount"`
	Items      []models.PurchasedItem `json:"items"`
}
