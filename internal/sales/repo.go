package sales

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/lmartins/retail-pos/pkg/db/models"
)

// Repository handles sale persistence. Sales are append-only; there is no
// update or delete path.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateSale(ctx context.Context, sale *models.Sale) error
	ListBetween(ctx context.Context, from, to time.Time) ([]models.Sale, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*models.Sale, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a sales repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateSale(ctx context.Context, sale *models.Sale) error {
	return r.db.WithContext(ctx).Create(sale).Error
}

func (r *repository) ListBetween(ctx context.Context, from, to time.Time) ([]models.Sale, error) {
	var sales []models.Sale
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("occurred_at >= ? AND occurred_at < ?", from, to).
		Order("occurred_at DESC").
		Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *repository) FindByIdempotencyKey(ctx context.Context, key string) (*models.Sale, error) {
	var sale models.Sale
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("idempotency_key = ?", key).
		First(&sale).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &sale, nil
}
