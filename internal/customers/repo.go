package customers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lmartins/retail-pos/pkg/db/models"
)

// Repository handles customer persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	CreateCustomer(ctx context.Context, customer *models.Customer) error
	FindCustomerByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	UpdateCustomer(ctx context.Context, customer *models.Customer) (int64, error)
	DeleteCustomer(ctx context.Context, id uuid.UUID) (int64, error)
	CountSalesByCustomer(ctx context.Context, id uuid.UUID) (int64, error)
	AddPoints(ctx context.Context, id uuid.UUID, points int) (int64, error)
	AppendPurchaseHistory(ctx context.Context, entry *models.PurchaseHistoryEntry) error
	ListPurchaseHistory(ctx context.Context, customerID uuid.UUID) ([]models.PurchaseHistoryEntry, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a customers repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	if err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *repository) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *repository) FindCustomerByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&customer).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

func (r *repository) UpdateCustomer(ctx context.Context, customer *models.Customer) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", customer.ID).
		Updates(map[string]any{
			"name":     customer.Name,
			"email":    customer.Email,
			"phone":    customer.Phone,
			"birthday": customer.Birthday,
			"tags":     customer.Tags,
		})
	return result.RowsAffected, result.Error
}

func (r *repository) DeleteCustomer(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Customer{})
	return result.RowsAffected, result.Error
}

func (r *repository) CountSalesByCustomer(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where("customer_id = ?", id).
		Count(&count).Error
	return count, err
}

func (r *repository) AddPoints(ctx context.Context, id uuid.UUID, points int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", id).
		Update("points", gorm.Expr("points + ?", points))
	return result.RowsAffected, result.Error
}

func (r *repository) AppendPurchaseHistory(ctx context.Context, entry *models.PurchaseHistoryEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListPurchaseHistory(ctx context.Context, customerID uuid.UUID) ([]models.PurchaseHistoryEntry, error) {
	var entries []models.PurchaseHistoryEntry
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("occurred_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
