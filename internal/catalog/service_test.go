package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lmartins/retail-pos/pkg/db/models"
	pkgerrors "github.com/lmartins/retail-pos/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:catalog_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.Brand{},
		&models.Product{},
		&models.ProductSize{},
	))
	return conn
}

func newTestService(t *testing.T) (*Service, Repository, *gorm.DB) {
	t.Helper()
	conn := newTestDB(t)
	repo := NewRepository(conn)
	svc, err := NewService(ServiceParams{Repo: repo})
	require.NoError(t, err)
	return svc, repo, conn
}

func seedBrand(t *testing.T, conn *gorm.DB, name string) *models.Brand {
	t.Helper()
	brand := &models.Brand{Name: name}
	require.NoError(t, conn.Create(brand).Error)
	return brand
}

func intPtr(v int) *int { return &v }

func TestListProductsResolvesBrandNames(t *testing.T) {
	svc, _, conn := newTestService(t)
	ctx := context.Background()

	brand := seedBrand(t, conn, "Acme")
	require.NoError(t, conn.Create(&models.Product{
		Name: "Tee", BrandID: &brand.ID, Color: "blue",
		Price: decimal.NewFromInt(10), Image: "tee.jpg",
	}).Error)
	require.NoError(t, conn.Create(&models.Product{
		Name: "Orphan", Color: "red",
		Price: decimal.NewFromInt(5), Image: "orphan.jpg",
	}).Error)

	views, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)

	byName := map[string]string{}
	for _, view := range views {
		byName[view.Name] = view.BrandName
	}
	require.Equal(t, "Acme", byName["Tee"])
	require.Equal(t, BrandlessName, byName["Orphan"])
}

func TestListProductsEmptyCatalogIsNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.ListProducts(context.Background())
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestCreateProductAppliesDefaults(t *testing.T) {
	svc, _, conn := newTestService(t)
	brand := seedBrand(t, conn, "Acme")

	product, err := svc.CreateProduct(context.Background(), CreateProductRequest{
		Name:    "Plain tee",
		BrandID: brand.ID.String(),
		Price:   decimal.RequireFromString("29.90"),
	})
	require.NoError(t, err)
	require.Equal(t, "Desconhecido", product.Color)
	require.Equal(t, "sem-imagem.jpg", product.Image)
	require.Equal(t, 0, product.Quantity)
	require.NotEqual(t, uuid.Nil, product.ID)
}

func TestCreateProductSizesDriveQuantity(t *testing.T) {
	svc, _, conn := newTestService(t)
	brand := seedBrand(t, conn, "Acme")
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, CreateProductRequest{
		Name:    "Sized tee",
		BrandID: brand.ID.String(),
		Price:   decimal.NewFromInt(10),
		Sizes: []SizeInput{
			{Size: "M", Quantity: 3},
			{Size: "L", Quantity: 2},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 5, product.Quantity)
	require.Len(t, product.Sizes, 2)

	_, err = svc.CreateProduct(ctx, CreateProductRequest{
		Name:     "Broken tee",
		BrandID:  brand.ID.String(),
		Price:    decimal.NewFromInt(10),
		Quantity: intPtr(9),
		Sizes:    []SizeInput{{Size: "M", Quantity: 3}},
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestCreateProductUnknownBrand(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CreateProduct(context.Background(), CreateProductRequest{
		Name:    "Tee",
		BrandID: uuid.NewString(),
		Price:   decimal.NewFromInt(10),
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestSetStock(t *testing.T) {
	svc, _, conn := newTestService(t)
	brand := seedBrand(t, conn, "Acme")
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, CreateProductRequest{
		Name: "Tee", BrandID: brand.ID.String(), Price: decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	updated, err := svc.SetStock(ctx, created.ID, 7)
	require.NoError(t, err)
	require.Equal(t, 7, updated.Quantity)

	_, err = svc.SetStock(ctx, uuid.New(), 7)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	_, err = svc.SetStock(ctx, created.ID, -1)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestAdjustStockFloorsAtZero(t *testing.T) {
	svc, _, conn := newTestService(t)
	brand := seedBrand(t, conn, "Acme")
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, CreateProductRequest{
		Name: "Tee", BrandID: brand.ID.String(), Price: decimal.NewFromInt(10),
		Quantity: intPtr(4),
	})
	require.NoError(t, err)

	updated, err := svc.AdjustStock(ctx, created.ID, -10)
	require.NoError(t, err)
	require.Equal(t, 0, updated.Quantity)

	updated, err = svc.AdjustStock(ctx, created.ID, 3)
	require.NoError(t, err)
	require.Equal(t, 3, updated.Quantity)

	_, err = svc.AdjustStock(ctx, uuid.New(), 1)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestGuardedDecrement(t *testing.T) {
	_, repo, conn := newTestService(t)
	ctx := context.Background()

	product := &models.Product{
		Name: "Tee", Color: "blue", Price: decimal.NewFromInt(10),
		Image: "tee.jpg", Quantity: 2,
	}
	require.NoError(t, conn.Create(product).Error)

	rows, err := repo.DecrementStockGuarded(ctx, product.ID, 2)
	require.NoError(t, err)
	require.EqualValues(t, 1, rows)

	rows, err = repo.DecrementStockGuarded(ctx, product.ID, 1)
	require.NoError(t, err)
	require.EqualValues(t, 0, rows, "short stock must not decrement")

	var reloaded models.Product
	require.NoError(t, conn.First(&reloaded, "id = ?", product.ID).Error)
	require.Equal(t, 0, reloaded.Quantity)
}

func TestBrandLifecycle(t *testing.T) {
	svc, _, conn := newTestService(t)
	ctx := context.Background()

	brand, err := svc.CreateBrand(ctx, BrandRequest{Name: "Acme", Phone: "11 99999-0000"})
	require.NoError(t, err)

	updated, err := svc.UpdateBrand(ctx, brand.ID, BrandRequest{Name: "Acme Ltda"})
	require.NoError(t, err)
	require.Equal(t, "Acme Ltda", updated.Name)

	_, err = svc.UpdateBrand(ctx, uuid.New(), BrandRequest{Name: "Ghost"})
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	require.NoError(t, conn.Create(&models.Product{
		Name: "Tee", BrandID: &brand.ID, Color: "blue",
		Price: decimal.NewFromInt(10), Image: "tee.jpg",
	}).Error)

	err = svc.DeleteBrand(ctx, brand.ID)
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())

	require.NoError(t, conn.Where("brand_id = ?", brand.ID).Delete(&models.Product{}).Error)
	require.NoError(t, svc.DeleteBrand(ctx, brand.ID))

	err = svc.DeleteBrand(ctx, brand.ID)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
