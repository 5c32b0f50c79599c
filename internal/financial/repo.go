package financial

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lmartins/retail-pos/pkg/db/models"
	"github.com/lmartins/retail-pos/pkg/enums"
)

// Repository handles ledger persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateRecord(ctx context.Context, record *models.FinancialRecord) error
	UpdateRecord(ctx context.Context, record *models.FinancialRecord) (int64, error)
	DeleteRecord(ctx context.Context, id uuid.UUID) (int64, error)
	ListRecords(ctx context.Context) ([]models.FinancialRecord, error)
	FindRecordByID(ctx context.Context, id uuid.UUID) (*models.FinancialRecord, error)
	CustomerNamesByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
	SumByType(ctx context.Context, recordType enums.FinancialRecordType) (decimal.Decimal, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateRecord(ctx context.Context, record *models.FinancialRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) UpdateRecord(ctx context.Context, record *models.FinancialRecord) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.FinancialRecord{}).
		Where("id = ?", record.ID).
		Updates(map[string]any{
			"type":        record.Type,
			"amount":      record.Amount,
			"description": record.Description,
			"occurred_on": record.OccurredOn,
			"customer_id": record.CustomerID,
		})
	return result.RowsAffected, result.Error
}

func (r *repository) DeleteRecord(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.FinancialRecord{})
	return result.RowsAffected, result.Error
}

func (r *repository) ListRecords(ctx context.Context) ([]models.FinancialRecord, error) {
	var records []models.FinancialRecord
	if err := r.db.WithContext(ctx).
		Order("occurred_on DESC, created_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) FindRecordByID(ctx context.Context, id uuid.UUID) (*models.FinancialRecord, error) {
	var record models.FinancialRecord
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&record).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *repository) CustomerNamesByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := map[uuid.UUID]string{}
	if len(ids) == 0 {
		return names, nil
	}
	var customers []models.Customer
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&customers).Error; err != nil {
		return nil, err
	}
	for _, customer := range customers {
		names[customer.ID] = customer.Name
	}
	return names, nil
}

func (r *repository) SumByType(ctx context.Context, recordType enums.FinancialRecordType) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&models.FinancialRecord{}).
		Where("type = ?", recordType).
		Select("SUM(amount)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
