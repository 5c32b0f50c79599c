package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lmartins/retail-pos/internal/catalog"
	"github.com/lmartins/retail-pos/internal/customers"
	"github.com/lmartins/retail-pos/internal/financial"
	"github.com/lmartins/retail-pos/internal/sales"
	"github.com/lmartins/retail-pos/pkg/db"
	"github.com/lmartins/retail-pos/pkg/db/models"
	"github.com/lmartins/retail-pos/pkg/enums"
	pkgerrors "github.com/lmartins/retail-pos/pkg/errors"
	"github.com/lmartins/retail-pos/pkg/logger"
)

var oneHundred = decimal.NewFromInt(100)

// TxRunner executes a function inside one database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams groups dependencies for the checkout orchestrator.
type ServiceParams struct {
	Tx        TxRunner
	Catalog   catalog.Repository
	Customers customers.Repository
	Sales     sales.Repository
	Financial financial.Repository
	Logger    *logger.Logger
	Now       func() time.Time
}

// Service finalizes sales. Every finalization runs as one transaction:
// stock decrement, sale insert, purchase history append, loyalty points and
// the income ledger entry all commit together or not at all.
type Service struct {
	tx        TxRunner
	catalog   catalog.Repository
	customers customers.Repository
	sales     sales.Repository
	financial financial.Repository
	logg      *logger.Logger
	now       func() time.Time
}

// NewService builds a checkout service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Tx == nil {
		return nil, errors.New("tx runner is required")
	}
	if params.Catalog == nil {
		return nil, errors.New("catalog repo is required")
	}
	if params.Customers == nil {
		return nil, errors.New("customers repo is required")
	}
	if params.Sales == nil {
		return nil, errors.New("sales repo is required")
	}
	if params.Financial == nil {
		return nil, errors.New("financial repo is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		tx:        params.Tx,
		catalog:   params.Catalog,
		customers: params.Customers,
		sales:     params.Sales,
		financial: params.Financial,
		logg:      params.Logger,
		now:       now,
	}, nil
}

type checkoutLine struct {
	productID uuid.UUID
	quantity  int
	unitPrice decimal.Decimal
}

// Finalize runs the checkout. idempotencyKey may be empty; when present, a
// sale already recorded under the same key is returned untouched.
func (s *Service) Finalize(ctx context.Context, in CheckoutRequest, idempotencyKey string) (*Result, error) {
	customerID, paymentMethod, err := s.validate(in)
	if err != nil {
		return nil, err
	}

	occurredAt := s.now()
	if in.Date != nil {
		occurredAt = *in.Date
	}

	var result *Result
	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		catalogRepo := s.catalog.WithTx(tx)
		customersRepo := s.customers.WithTx(tx)
		salesRepo := s.sales.WithTx(tx)
		financialRepo := s.financial.WithTx(tx)

		if idempotencyKey != "" {
			existing, err := salesRepo.FindByIdempotencyKey(ctx, idempotencyKey)
			if err != nil {
				return err
			}
			if existing != nil {
				result = &Result{Sale: existing, Replayed: true}
				return nil
			}
		}

		customer, err := customersRepo.FindCustomerByID(ctx, customerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}

		lines, err := s.decrementStock(ctx, catalogRepo, in.Items)
		if err != nil {
			return err
		}

		subtotal := decimal.Zero
		items := make([]models.SaleItem, 0, len(lines))
		for _, line := range lines {
			subtotal = subtotal.Add(line.unitPrice.Mul(decimal.NewFromInt(int64(line.quantity))))
			items = append(items, models.SaleItem{
				ProductID: line.productID,
				Quantity:  line.quantity,
				UnitPrice: line.unitPrice,
			})
		}
		total := subtotal.Mul(oneHundred.Sub(in.Discount)).Div(oneHundred).Round(2)

		sale := &models.Sale{
			CustomerID:    customerID,
			Subtotal:      subtotal.Round(2),
			Discount:      in.Discount,
			Total:         total,
			PaymentMethod: paymentMethod,
			OccurredAt:    occurredAt,
			Items:         items,
		}
		if idempotencyKey != "" {
			sale.IdempotencyKey = &idempotencyKey
		}
		if err := salesRepo.CreateSale(ctx, sale); err != nil {
			// A concurrent request with the same token won the insert race.
			if idempotencyKey != "" && db.IsUniqueViolation(err, "idx_sales_idempotency_key") {
				return pkgerrors.Wrap(pkgerrors.CodeIdempotency, err, "sale already recorded for this idempotency key")
			}
			return err
		}

		if err := s.recordPurchase(ctx, customersRepo, financialRepo, sale); err != nil {
			return err
		}

		result = &Result{Sale: sale}
		return nil
	})
	if txErr != nil {
		return nil, classify(txErr)
	}

	if s.logg != nil && result != nil && result.Sale != nil {
		logCtx := s.logg.WithSaleID(ctx, result.Sale.ID.String())
		logCtx = s.logg.WithField(logCtx, "replayed", result.Replayed)
		s.logg.Info(logCtx, "checkout.finalized")
	}
	return result, nil
}

func (s *Service) validate(in CheckoutRequest) (uuid.UUID, enums.PaymentMethod, error) {
	customerID, err := uuid.Parse(in.CustomerID)
	if err != nil {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeValidation, "customerId must be a valid uuid")
	}
	paymentMethod, err := enums.ParsePaymentMethod(in.PaymentMethod)
	if err != nil {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method").
			WithDetails(map[string]any{"paymentMethod": in.PaymentMethod})
	}
	if in.Discount.IsNegative() || in.Discount.GreaterThan(oneHundred) {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeValidation, "discount must be between 0 and 100")
	}
	if len(in.Items) == 0 {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeValidation, "cart must not be empty")
	}
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeValidation, "item quantities must be greater than zero")
		}
	}
	return customerID, paymentMethod, nil
}

// decrementStock subtracts each line with a guarded conditional update; the
// guard keeps concurrent checkouts from driving stock below zero.
func (s *Service) decrementStock(ctx context.Context, repo catalog.Repository, items []CheckoutItem) ([]checkoutLine, error) {
	lines := make([]checkoutLine, 0, len(items))
	for _, item := range items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "productId must be a valid uuid")
		}

		product, err := repo.FindProductByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s not found", productID))
		}

		rows, err := repo.DecrementStockGuarded(ctx, productID, item.Quantity)
		if err != nil {
			return nil, err
		}
		if rows == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock,
				fmt.Sprintf("insufficient stock for %s", product.Name)).
				WithDetails(map[string]any{
					"productId": productID,
					"requested": item.Quantity,
					"available": product.Quantity,
				})
		}

		unitPrice := product.Price
		if product.SalePrice != nil {
			unitPrice = *product.SalePrice
		}
		lines = append(lines, checkoutLine{
			productID: productID,
			quantity:  item.Quantity,
			unitPrice: unitPrice,
		})
	}
	return lines, nil
}

func (s *Service) recordPurchase(ctx context.Context, customersRepo customers.Repository, financialRepo financial.Repository, sale *models.Sale) error {
	purchased := make([]models.PurchasedItem, 0, len(sale.Items))
	for _, item := range sale.Items {
		purchased = append(purchased, models.PurchasedItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	itemsPayload, err := encodeItems(purchased)
	if err != nil {
		return err
	}
	if err := customersRepo.AppendPurchaseHistory(ctx, &models.PurchaseHistoryEntry{
		CustomerID: sale.CustomerID,
		OccurredAt: sale.OccurredAt,
		Amount:     sale.Total,
		Items:      itemsPayload,
	}); err != nil {
		return err
	}

	if points := int(sale.Total.IntPart()); points > 0 {
		if _, err := customersRepo.AddPoints(ctx, sale.CustomerID, points); err != nil {
			return err
		}
	}

	occurredOn := time.Date(
		sale.OccurredAt.Year(), sale.OccurredAt.Month(), sale.OccurredAt.Day(),
		0, 0, 0, 0, sale.OccurredAt.Location(),
	)
	customerID := sale.CustomerID
	return financialRepo.CreateRecord(ctx, &models.FinancialRecord{
		Type:        enums.FinancialRecordTypeIncome,
		Amount:      sale.Total,
		Description: fmt.Sprintf("Venda %s", sale.ID),
		OccurredOn:  occurredOn,
		CustomerID:  &customerID,
	})
}

func encodeItems(items []models.PurchasedItem) (json.RawMessage, error) {
	payload, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// classify keeps client-facing errors as-is and folds everything else into
// the retryable transaction error; the rollback already undid every step.
func classify(err error) error {
	if typed := pkgerrors.As(err); typed != nil {
		switch typed.Code() {
		case pkgerrors.CodeValidation,
			pkgerrors.CodeNotFound,
			pkgerrors.CodeConflict,
			pkgerrors.CodeInsufficientStock,
			pkgerrors.CodeIdempotency:
			return typed
		}
	}
	return pkgerrors.Wrap(pkgerrors.CodeTransaction, err, "checkout failed, no changes were applied")
}
