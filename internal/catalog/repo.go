package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lmartins/retail-pos/pkg/db/models"
)

// Repository handles catalog persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListProducts(ctx context.Context) ([]models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	SetStock(ctx context.Context, id uuid.UUID, quantity int) (int64, error)
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int64, error)
	DecrementStockGuarded(ctx context.Context, id uuid.UUID, quantity int) (int64, error)
	ReplaceSizes(ctx context.Context, productID uuid.UUID, sizes []models.ProductSize) error
	ListBrands(ctx context.Context) ([]models.Brand, error)
	BrandNamesByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
	CreateBrand(ctx context.Context, brand *models.Brand) error
	FindBrandByID(ctx context.Context, id uuid.UUID) (*models.Brand, error)
	UpdateBrand(ctx context.Context, brand *models.Brand) (int64, error)
	DeleteBrand(ctx context.Context, id uuid.UUID) (int64, error)
	CountProductsByBrand(ctx context.Context, brandID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).
		Preload("Sizes").
		Order("created_at DESC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) CreateProduct(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *repository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Preload("Sizes").
		Where("id = ?", id).
		First(&product).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *repository) SetStock(ctx context.Context, id uuid.UUID, quantity int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Update("quantity", quantity)
	return result.RowsAffected, result.Error
}

// AdjustStock applies a signed delta, flooring at zero so an over-large
// negative adjustment empties the stock instead of violating the check
// constraint.
func (r *repository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Update("quantity", gorm.Expr(
			"CASE WHEN quantity + ? < 0 THEN 0 ELSE quantity + ? END", delta, delta,
		))
	return result.RowsAffected, result.Error
}

// DecrementStockGuarded subtracts quantity only when enough stock remains.
// Zero rows affected means the row is missing or the stock is short; callers
// separate the two with FindProductByID.
func (r *repository) DecrementStockGuarded(ctx context.Context, id uuid.UUID, quantity int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND quantity >= ?", id, quantity).
		Update("quantity", gorm.Expr("quantity - ?", quantity))
	return result.RowsAffected, result.Error
}

func (r *repository) ReplaceSizes(ctx context.Context, productID uuid.UUID, sizes []models.ProductSize) error {
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&models.ProductSize{}).Error; err != nil {
		return err
	}
	if len(sizes) == 0 {
		return nil
	}
	for i := range sizes {
		sizes[i].ProductID = productID
	}
	return r.db.WithContext(ctx).Create(&sizes).Error
}

func (r *repository) ListBrands(ctx context.Context) ([]models.Brand, error) {
	var brands []models.Brand
	if err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&brands).Error; err != nil {
		return nil, err
	}
	return brands, nil
}

func (r *repository) BrandNamesByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := map[uuid.UUID]string{}
	if len(ids) == 0 {
		return names, nil
	}
	var brands []models.Brand
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&brands).Error; err != nil {
		return nil, err
	}
	for _, brand := range brands {
		names[brand.ID] = brand.Name
	}
	return names, nil
}

func (r *repository) CreateBrand(ctx context.Context, brand *models.Brand) error {
	return r.db.WithContext(ctx).Create(brand).Error
}

func (r *repository) FindBrandByID(ctx context.Context, id uuid.UUID) (*models.Brand, error) {
	var brand models.Brand
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&brand).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &brand, nil
}

func (r *repository) UpdateBrand(ctx context.Context, brand *models.Brand) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Brand{}).
		Where("id = ?", brand.ID).
		Updates(map[string]any{
			"name":  brand.Name,
			"phone": brand.Phone,
		})
	return result.RowsAffected, result.Error
}

func (r *repository) DeleteBrand(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Brand{})
	return result.RowsAffected, result.Error
}

func (r *repository) CountProductsByBrand(ctx context.Context, brandID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("brand_id = ?", brandID).
		Count(&count).Error
	return count, err
}
