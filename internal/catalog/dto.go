package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/lmartins/retail-pos/pkg/db/models"
)

// CreateProductRequest is the POST /products payload.
type CreateProductRequest struct {
	Name      string           `json:"name" validate:"required"`
	Code      *string          `json:"code,omitempty"`
	BrandID   string           `json:"brandId" validate:"required,uuid"`
	Color     string           `json:"color,omitempty"`
	Price     decimal.Decimal  `json:"price" validate:"required"`
	SalePrice *decimal.Decimal `json:"salePrice,omitempty"`
	Image     string           `json:"image,omitempty"`
	Quantity  *int             `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	Sizes     []SizeInput      `json:"sizes,omitempty" validate:"omitempty,dive"`
}

// SizeInput is one size/quantity pair of a product creation payload.
type SizeInput struct {
	Size     string `json:"size" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=0"`
}

// SetStockRequest is the PATCH /products/{id} payload.
type SetStockRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=0"`
}

// AdjustQuantityRequest is the POST /update-quantity payload.
type AdjustQuantityRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Delta     *int   `json:"delta" validate:"required"`
}

// BrandRequest creates or updates a brand.
type BrandRequest struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone,omitempty"`
}

// ProductView is a product joined with its resolved brand name.
type ProductView struct {
	models.Product
	BrandName string `json:"brandName"`
}
