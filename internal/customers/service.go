package customers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lmartins/retail-pos/pkg/db/models"
	pkgerrors "github.com/lmartins/retail-pos/pkg/errors"
	"github.com/lmartins/retail-pos/pkg/logger"
)

// ServiceParams groups dependencies for the customers service.
type ServiceParams struct {
	Repo   Repository
	Logger *logger.Logger
}

// Service orchestrates customer and purchase history operations.
type Service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds a customers service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	return &Service{repo: params.Repo, logg: params.Logger}, nil
}

// ListCustomers returns every customer with tags decoded. A row whose tags
// column holds corrupt JSON is returned with an empty tag list instead of
// failing the whole listing.
func (s *Service) ListCustomers(ctx context.Context) ([]CustomerView, error) {
	customers, err := s.repo.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]CustomerView, 0, len(customers))
	for _, customer := range customers {
		views = append(views, s.toView(ctx, customer))
	}
	return views, nil
}

// CreateCustomer registers a customer.
func (s *Service) CreateCustomer(ctx context.Context, in CustomerRequest) (*CustomerView, error) {
	customer := &models.Customer{
		Name:  in.Name,
		Email: in.Email,
		Phone: in.Phone,
		Tags:  encodeTags(in.Tags),
	}
	birthday, err := parseBirthday(in.Birthday)
	if err != nil {
		return nil, err
	}
	customer.Birthday = birthday

	if err := s.repo.CreateCustomer(ctx, customer); err != nil {
		return nil, err
	}
	view := s.toView(ctx, *customer)
	return &view, nil
}

// UpdateCustomer overwrites a customer's profile fields.
func (s *Service) UpdateCustomer(ctx context.Context, id uuid.UUID, in CustomerRequest) (*CustomerView, error) {
	customer := &models.Customer{
		ID:    id,
		Name:  in.Name,
		Email: in.Email,
		Phone: in.Phone,
		Tags:  encodeTags(in.Tags),
	}
	birthday, err := parseBirthday(in.Birthday)
	if err != nil {
		return nil, err
	}
	customer.Birthday = birthday

	rows, err := s.repo.UpdateCustomer(ctx, customer)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}

	reloaded, err := s.repo.FindCustomerByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := s.toView(ctx, *reloaded)
	return &view, nil
}

// DeleteCustomer removes a customer and, via cascade, their purchase
// history. Deletion is refused while recorded sales still reference the
// customer; sales are immutable, so those customers stay on file.
func (s *Service) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	salesCount, err := s.repo.CountSalesByCustomer(ctx, id)
	if err != nil {
		return err
	}
	if salesCount > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("customer has %d recorded sale(s)", salesCount))
	}
	rows, err := s.repo.DeleteCustomer(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}
	return nil
}

// AppendPurchaseHistory records one past purchase for the customer. Amounts
// must be positive; there is no duplicate detection, every call appends.
func (s *Service) AppendPurchaseHistory(ctx context.Context, customerID uuid.UUID, in HistoryRequest) (*HistoryView, error) {
	if !in.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be greater than zero")
	}
	customer, err := s.repo.FindCustomerByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}

	occurredAt := time.Now()
	if in.Date != nil {
		occurredAt = *in.Date
	}
	items, err := json.Marshal(itemsOrEmpty(in.Items))
	if err != nil {
		return nil, err
	}

	entry := &models.PurchaseHistoryEntry{
		CustomerID: customerID,
		OccurredAt: occurredAt,
		Amount:     in.Amount,
		Items:      items,
	}
	if err := s.repo.AppendPurchaseHistory(ctx, entry); err != nil {
		return nil, err
	}

	return &HistoryView{
		ID:         entry.ID,
		OccurredAt: entry.OccurredAt,
		Amount:     entry.Amount,
		Items:      itemsOrEmpty(in.Items),
	}, nil
}

// GetPurchaseHistory returns a customer's purchases ordered oldest first.
func (s *Service) GetPurchaseHistory(ctx context.Context, customerID uuid.UUID) ([]HistoryView, error) {
	customer, err := s.repo.FindCustomerByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}

	entries, err := s.repo.ListPurchaseHistory(ctx, customerID)
	if err != nil {
		return nil, err
	}
	views := make([]HistoryView, 0, len(entries))
	for _, entry := range entries {
		var items []models.PurchasedItem
		if len(entry.Items) > 0 {
			if err := json.Unmarshal(entry.Items, &items); err != nil && s.logg != nil {
				s.logg.Warn(s.logg.WithField(ctx, "entry_id", entry.ID.String()), "history items decode failed")
			}
		}
		views = append(views, HistoryView{
			ID:         entry.ID,
			OccurredAt: entry.OccurredAt,
			Amount:     entry.Amount,
			Items:      itemsOrEmpty(items),
		})
	}
	return views, nil
}

func (s *Service) toView(ctx context.Context, customer models.Customer) CustomerView {
	var tags []string
	if customer.Tags != "" {
		if err := json.Unmarshal([]byte(customer.Tags), &tags); err != nil {
			tags = nil
			if s.logg != nil {
				s.logg.Warn(s.logg.WithCustomerID(ctx, customer.ID.String()), "customer tags decode failed")
			}
		}
	}
	if tags == nil {
		tags = []string{}
	}
	return CustomerView{
		ID:        customer.ID,
		Name:      customer.Name,
		Email:     customer.Email,
		Phone:     customer.Phone,
		Points:    customer.Points,
		Birthday:  customer.Birthday,
		Tags:      tags,
		CreatedAt: customer.CreatedAt,
		UpdatedAt: customer.UpdatedAt,
	}
}

func encodeTags(tags []string) string {
	if len(tags) == 0 {
		return "[]"
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return "[]"
	}
	return string(encoded)
}

func parseBirthday(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", *value)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "birthday must be an ISO date (YYYY-MM-DD)")
	}
	return &parsed, nil
}

func itemsOrEmpty(items []models.PurchasedItem) []models.PurchasedItem {
	if items == nil {
		return []models.PurchasedItem{}
	}
	return items
}
