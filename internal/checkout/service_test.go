package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lmartins/retail-pos/internal/catalog"
	"github.com/lmartins/retail-pos/internal/customers"
	"github.com/lmartins/retail-pos/internal/financial"
	"github.com/lmartins/retail-pos/internal/sales"
	"github.com/lmartins/retail-pos/pkg/db"
	"github.com/lmartins/retail-pos/pkg/db/models"
	pkgerrors "github.com/lmartins/retail-pos/pkg/errors"
)

type fixture struct {
	conn *gorm.DB
	svc  *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := "file:checkout_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.Brand{},
		&models.Product{},
		&models.ProductSize{},
		&models.Customer{},
		&models.PurchaseHistoryEntry{},
		&models.Sale{},
		&models.SaleItem{},
		&models.FinancialRecord{},
	))

	svc, err := NewService(ServiceParams{
		Tx:        db.FromConn(conn),
		Catalog:   catalog.NewRepository(conn),
		Customers: customers.NewRepository(conn),
		Sales:     sales.NewRepository(conn),
		Financial: financial.NewRepository(conn),
	})
	require.NoError(t, err)
	return &fixture{conn: conn, svc: svc}
}

func (f *fixture) seedCustomer(t *testing.T) *models.Customer {
	t.Helper()
	customer := &models.Customer{Name: "Maria", Tags: "[]"}
	require.NoError(t, f.conn.Create(customer).Error)
	return customer
}

func (f *fixture) seedProduct(t *testing.T, price string, quantity int) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:     "Tee",
		Color:    "blue",
		Price:    decimal.RequireFromString(price),
		Image:    "tee.jpg",
		Quantity: quantity,
	}
	require.NoError(t, f.conn.Create(product).Error)
	return product
}

func (f *fixture) productQuantity(t *testing.T, id uuid.UUID) int {
	t.Helper()
	var product models.Product
	require.NoError(t, f.conn.First(&product, "id = ?", id).Error)
	return product.Quantity
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.conn.Model(model).Count(&count).Error)
	return count
}

func TestFinalizeHappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	customer := f.seedCustomer(t)
	product := f.seedProduct(t, "10.00", 5)

	result, err := f.svc.Finalize(ctx, CheckoutRequest{
		CustomerID:    customer.ID.String(),
		Items:         []CheckoutItem{{ProductID: product.ID.String(), Quantity: 2}},
		Discount:      decimal.NewFromInt(10),
		PaymentMethod: "pix",
	}, "")
	require.NoError(t, err)
	require.False(t, result.Replayed)

	sale := result.Sale
	require.True(t, sale.Subtotal.Equal(decimal.RequireFromString("20.00")), "subtotal %s", sale.Subtotal)
	require.True(t, sale.Total.Equal(decimal.RequireFromString("18.00")), "total %s", sale.Total)
	require.Len(t, sale.Items, 1)
	require.True(t, sale.Items[0].UnitPrice.Equal(decimal.RequireFromString("10.00")))

	require.Equal(t, 3, f.productQuantity(t, product.ID))

	var reloaded models.Customer
	require.NoError(t, f.conn.First(&reloaded, "id = ?", customer.ID).Error)
	require.Equal(t, 18, reloaded.Points)

	var history models.PurchaseHistoryEntry
	require.NoError(t, f.conn.First(&history, "customer_id = ?", customer.ID).Error)
	require.True(t, history.Amount.Equal(sale.Total))

	var record models.FinancialRecord
	require.NoError(t, f.conn.First(&record, "customer_id = ?", customer.ID).Error)
	require.True(t, record.Amount.Equal(sale.Total))
	require.Contains(t, record.Description, sale.ID.String())
}

func TestFinalizeUsesSalePriceWhenSet(t *testing.T) {
	f := newFixture(t)
	customer := f.seedCustomer(t)
	product := f.seedProduct(t, "10.00", 5)
	salePrice := decimal.RequireFromString("8.00")
	require.NoError(t, f.conn.Model(product).Update("sale_price", salePrice).Error)

	result, err := f.svc.Finalize(context.Background(), CheckoutRequest{
		CustomerID:    customer.ID.String(),
		Items:         []CheckoutItem{{ProductID: product.ID.String(), Quantity: 1}},
		PaymentMethod: "cash",
	}, "")
	require.NoError(t, err)
	require.True(t, result.Sale.Total.Equal(salePrice))
}

func TestFinalizeInsufficientStockLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	customer := f.seedCustomer(t)
	cheap := f.seedProduct(t, "5.00", 10)
	scarce := f.seedProduct(t, "10.00", 1)

	_, err := f.svc.Finalize(ctx, CheckoutRequest{
		CustomerID: customer.ID.String(),
		Items: []CheckoutItem{
			{ProductID: cheap.ID.String(), Quantity: 2},
			{ProductID: scarce.ID.String(), Quantity: 3},
		},
		PaymentMethod: "cash",
	}, "")
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeInsufficientStock, pkgerrors.As(err).Code())

	require.Equal(t, 10, f.productQuantity(t, cheap.ID), "earlier decrement must roll back")
	require.Equal(t, 1, f.productQuantity(t, scarce.ID))
	require.EqualValues(t, 0, f.count(t, &models.Sale{}))
	require.EqualValues(t, 0, f.count(t, &models.PurchaseHistoryEntry{}))
	require.EqualValues(t, 0, f.count(t, &models.FinancialRecord{}))
}

func TestFinalizeUnknownCustomerAndProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	product := f.seedProduct(t, "10.00", 5)

	_, err := f.svc.Finalize(ctx, CheckoutRequest{
		CustomerID:    uuid.NewString(),
		Items:         []CheckoutItem{{ProductID: product.ID.String(), Quantity: 1}},
		PaymentMethod: "cash",
	}, "")
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	customer := f.seedCustomer(t)
	_, err = f.svc.Finalize(ctx, CheckoutRequest{
		CustomerID:    customer.ID.String(),
		Items:         []CheckoutItem{{ProductID: uuid.NewString(), Quantity: 1}},
		PaymentMethod: "cash",
	}, "")
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestFinalizeValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customer := f.seedCustomer(t)
	product := f.seedProduct(t, "10.00", 5)

	cases := []CheckoutRequest{
		{CustomerID: customer.ID.String(), PaymentMethod: "pix"},
		{CustomerID: customer.ID.String(), PaymentMethod: "check",
			Items: []CheckoutItem{{ProductID: product.ID.String(), Quantity: 1}}},
		{CustomerID: customer.ID.String(), PaymentMethod: "pix",
			Discount: decimal.NewFromInt(150),
			Items:    []CheckoutItem{{ProductID: product.ID.String(), Quantity: 1}}},
		{CustomerID: customer.ID.String(), PaymentMethod: "pix",
			Items: []CheckoutItem{{ProductID: product.ID.String(), Quantity: 0}}},
	}
	for i, in := range cases {
		_, err := f.svc.Finalize(ctx, in, "")
		require.Error(t, err, "case %d", i)
		require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code(), "case %d", i)
	}
	require.Equal(t, 5, f.productQuantity(t, product.ID))
}

func TestFinalizeIdempotentReplay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customer := f.seedCustomer(t)
	product := f.seedProduct(t, "10.00", 5)

	in := CheckoutRequest{
		CustomerID:    customer.ID.String(),
		Items:         []CheckoutItem{{ProductID: product.ID.String(), Quantity: 2}},
		PaymentMethod: "pix",
	}

	first, err := f.svc.Finalize(ctx, in, "tok-1")
	require.NoError(t, err)
	require.False(t, first.Replayed)

	second, err := f.svc.Finalize(ctx, in, "tok-1")
	require.NoError(t, err)
	require.True(t, second.Replayed)
	require.Equal(t, first.Sale.ID, second.Sale.ID)

	require.Equal(t, 3, f.productQuantity(t, product.ID), "replay must not decrement again")
	require.EqualValues(t, 1, f.count(t, &models.Sale{}))
	require.EqualValues(t, 1, f.count(t, &models.PurchaseHistoryEntry{}))
	require.EqualValues(t, 1, f.count(t, &models.FinancialRecord{}))
}

func TestFinalizeStockExhaustion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customer := f.seedCustomer(t)
	product := f.seedProduct(t, "10.00", 2)

	in := CheckoutRequest{
		CustomerID:    customer.ID.String(),
		Items:         []CheckoutItem{{ProductID: product.ID.String(), Quantity: 2}},
		PaymentMethod: "cash",
	}

	_, err := f.svc.Finalize(ctx, in, "")
	require.NoError(t, err)

	_, err = f.svc.Finalize(ctx, in, "")
	require.Equal(t, pkgerrors.CodeInsufficientStock, pkgerrors.As(err).Code())
	require.Equal(t, 0, f.productQuantity(t, product.ID))
}

func TestFinalizeConcurrentExhaustion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customer := f.seedCustomer(t)
	product := f.seedProduct(t, "10.00", 5)

	// One pooled connection serializes the sqlite file while the callers
	// still race through Finalize concurrently.
	sqlDB, err := f.conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	in := CheckoutRequest{
		CustomerID:    customer.ID.String(),
		Items:         []CheckoutItem{{ProductID: product.ID.String(), Quantity: 2}},
		PaymentMethod: "cash",
	}

	const attempts = 4
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Finalize(ctx, in, "")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded, outOfStock := 0, 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case pkgerrors.As(err) != nil && pkgerrors.As(err).Code() == pkgerrors.CodeInsufficientStock:
			outOfStock++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	require.Equal(t, 2, succeeded, "only whole-cart quantities may commit")
	require.Equal(t, attempts-2, outOfStock)
	require.Equal(t, 1, f.productQuantity(t, product.ID), "stock must never go negative")
	require.EqualValues(t, 2, f.count(t, &models.Sale{}))
	require.EqualValues(t, 2, f.count(t, &models.FinancialRecord{}))
}

type failingFinancialRepo struct {
	financial.Repository
}

func (r *failingFinancialRepo) WithTx(tx *gorm.DB) financial.Repository {
	return &failingFinancialRepo{Repository: r.Repository.WithTx(tx)}
}

func (r *failingFinancialRepo) CreateRecord(context.Context, *models.FinancialRecord) error {
	return errors.New("ledger write refused")
}

func TestFinalizeLateFailureRollsEverythingBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customer := f.seedCustomer(t)
	product := f.seedProduct(t, "10.00", 5)

	svc, err := NewService(ServiceParams{
		Tx:        db.FromConn(f.conn),
		Catalog:   catalog.NewRepository(f.conn),
		Customers: customers.NewRepository(f.conn),
		Sales:     sales.NewRepository(f.conn),
		Financial: &failingFinancialRepo{Repository: financial.NewRepository(f.conn)},
	})
	require.NoError(t, err)

	_, err = svc.Finalize(ctx, CheckoutRequest{
		CustomerID:    customer.ID.String(),
		Items:         []CheckoutItem{{ProductID: product.ID.String(), Quantity: 2}},
		PaymentMethod: "pix",
	}, "")
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeTransaction, pkgerrors.As(err).Code())

	require.Equal(t, 5, f.productQuantity(t, product.ID))
	require.EqualValues(t, 0, f.count(t, &models.Sale{}))
	require.EqualValues(t, 0, f.count(t, &models.PurchaseHistoryEntry{}))
	require.EqualValues(t, 0, f.count(t, &models.FinancialRecord{}))

	var reloaded models.Customer
	require.NoError(t, f.conn.First(&reloaded, "id = ?", customer.ID).Error)
	require.Equal(t, 0, reloaded.Points)
}

func TestFinalizeDefaultsOccurredAt(t *testing.T) {
	f := newFixture(t)
	customer := f.seedCustomer(t)
	product := f.seedProduct(t, "10.00", 5)

	when := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	result, err := f.svc.Finalize(context.Background(), CheckoutRequest{
		CustomerID:    customer.ID.String(),
		Items:         []CheckoutItem{{ProductID: product.ID.String(), Quantity: 1}},
		PaymentMethod: "cash",
		Date:          &when,
	}, "")
	require.NoError(t, err)
	require.True(t, result.Sale.OccurredAt.Equal(when))

	var record models.FinancialRecord
	require.NoError(t, f.conn.First(&record, "customer_id = ?", customer.ID).Error)
	require.Equal(t, when.Year(), record.OccurredOn.Year())
	require.Equal(t, when.Month(), record.OccurredOn.Month())
	require.Equal(t, when.Day(), record.OccurredOn.Day())
}
