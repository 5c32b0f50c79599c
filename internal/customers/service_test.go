package customers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lmartins/retail-pos/pkg/db/models"
	"github.com/lmartins/retail-pos/pkg/enums"
	pkgerrors "github.com/lmartins/retail-pos/pkg/errors"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	dsn := "file:customers_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.Customer{},
		&models.PurchaseHistoryEntry{},
		&models.Sale{},
	))
	svc, err := NewService(ServiceParams{Repo: NewRepository(conn)})
	require.NoError(t, err)
	return svc, conn
}

func TestCustomerLifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateCustomer(ctx, CustomerRequest{
		Name:  "Maria",
		Email: "maria@example.com",
		Tags:  []string{"vip"},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"vip"}, created.Tags)
	require.Equal(t, 0, created.Points)

	updated, err := svc.UpdateCustomer(ctx, created.ID, CustomerRequest{
		Name: "Maria Silva",
		Tags: []string{"vip", "wholesale"},
	})
	require.NoError(t, err)
	require.Equal(t, "Maria Silva", updated.Name)
	require.Equal(t, []string{"vip", "wholesale"}, updated.Tags)

	_, err = svc.UpdateCustomer(ctx, uuid.New(), CustomerRequest{Name: "Ghost"})
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	require.NoError(t, svc.DeleteCustomer(ctx, created.ID))
	err = svc.DeleteCustomer(ctx, created.ID)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestDeleteCustomerWithSalesRefused(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	customer, err := svc.CreateCustomer(ctx, CustomerRequest{Name: "Maria"})
	require.NoError(t, err)

	require.NoError(t, conn.Create(&models.Sale{
		CustomerID:    customer.ID,
		Subtotal:      decimal.NewFromInt(20),
		Discount:      decimal.Zero,
		Total:         decimal.NewFromInt(20),
		PaymentMethod: enums.PaymentMethodCash,
		OccurredAt:    time.Now(),
	}).Error)

	err = svc.DeleteCustomer(ctx, customer.ID)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())

	var reloaded models.Customer
	require.NoError(t, conn.First(&reloaded, "id = ?", customer.ID).Error)
	require.Equal(t, "Maria", reloaded.Name, "customer must survive the refused delete")
}

func TestListCustomersToleratesCorruptTags(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	require.NoError(t, conn.Create(&models.Customer{Name: "Ana", Tags: `["ok"]`}).Error)
	require.NoError(t, conn.Create(&models.Customer{Name: "Bruno", Tags: `{broken`}).Error)

	views, err := svc.ListCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)

	byName := map[string][]string{}
	for _, view := range views {
		byName[view.Name] = view.Tags
	}
	require.Equal(t, []string{"ok"}, byName["Ana"])
	require.Equal(t, []string{}, byName["Bruno"])
}

func TestCreateCustomerParsesBirthday(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	day := "1990-04-12"
	created, err := svc.CreateCustomer(ctx, CustomerRequest{Name: "Ana", Birthday: &day})
	require.NoError(t, err)
	require.NotNil(t, created.Birthday)
	require.Equal(t, 1990, created.Birthday.Year())

	bad := "12/04/1990"
	_, err = svc.CreateCustomer(ctx, CustomerRequest{Name: "Ana", Birthday: &bad})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestAppendPurchaseHistory(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	customer, err := svc.CreateCustomer(ctx, CustomerRequest{Name: "Maria"})
	require.NoError(t, err)

	_, err = svc.AppendPurchaseHistory(ctx, customer.ID, HistoryRequest{
		Amount: decimal.Zero,
	})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.AppendPurchaseHistory(ctx, uuid.New(), HistoryRequest{
		Amount: decimal.NewFromInt(10),
	})
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	first := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	second := time.Date(2026, 2, 5, 9, 30, 0, 0, time.UTC)
	for _, occurred := range []time.Time{second, first} {
		when := occurred
		_, err = svc.AppendPurchaseHistory(ctx, customer.ID, HistoryRequest{
			Amount: decimal.RequireFromString("42.50"),
			Date:   &when,
			Items:  []models.PurchasedItem{{ProductID: uuid.New(), Quantity: 2}},
		})
		require.NoError(t, err)
	}

	history, err := svc.GetPurchaseHistory(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.True(t, history[0].OccurredAt.Before(history[1].OccurredAt), "history must be ordered oldest first")
	require.Len(t, history[0].Items, 1)
}

func TestGetPurchaseHistoryEmpty(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	customer, err := svc.CreateCustomer(ctx, CustomerRequest{Name: "Maria"})
	require.NoError(t, err)

	history, err := svc.GetPurchaseHistory(ctx, customer.ID)
	require.NoError(t, err)
	require.Empty(t, history)
	require.NotNil(t, history)

	_, err = svc.GetPurchaseHistory(ctx, uuid.New())
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
