package checkout

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lmartins/retail-pos/pkg/db/models"
)

// CheckoutRequest is the POST /vendas payload. The register client sends its
// own id, a precomputed total and per-item prices; those fields are accepted
// but not trusted, the server recomputes every amount from the catalog.
type CheckoutRequest struct {
	ID            *string          `json:"id,omitempty"`
	CustomerID    string           `json:"customerId" validate:"required,uuid"`
	Items         []CheckoutItem   `json:"items" validate:"required,min=1,dive"`
	Total         *decimal.Decimal `json:"total,omitempty"`
	Discount      decimal.Decimal  `json:"discount"`
	PaymentMethod string           `json:"paymentMethod" validate:"required"`
	Date          *time.Time       `json:"date,omitempty"`
}

// CheckoutItem is one cart line. Price is the client's display price and is
// ignored in favor of the stored product price.
type CheckoutItem struct {
	ProductID string           `json:"productId" validate:"required,uuid"`
	Quantity  int              `json:"quantity" validate:"required,gt=0"`
	Price     *decimal.Decimal `json:"price,omitempty"`
}

// Result is the outcome of a finalized checkout. Replayed is true when the
// idempotency token matched an earlier sale and no new mutation happened.
type Result struct {
	Sale     *models.Sale `json:"sale"`
	Replayed bool         `json:"replayed,omitempty"`
}
