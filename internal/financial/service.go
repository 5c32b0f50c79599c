package financial

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/lmartins/retail-pos/pkg/db/models"
	"github.com/lmartins/retail-pos/pkg/enums"
	pkgerrors "github.com/lmartins/retail-pos/pkg/errors"
	"github.com/lmartins/retail-pos/pkg/logger"
)

// ServiceParams groups dependencies for the ledger service.
type ServiceParams struct {
	Repo   Repository
	Logger *logger.Logger
}

// Service orchestrates ledger operations.
type Service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds a ledger service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	return &Service{repo: params.Repo, logg: params.Logger}, nil
}

// CreateRecord inserts a manual ledger entry.
func (s *Service) CreateRecord(ctx context.Context, in RecordRequest) (*RecordView, error) {
	record, err := s.fromRequest(in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateRecord(ctx, record); err != nil {
		return nil, err
	}
	return s.toView(ctx, *record), nil
}

// UpdateRecord overwrites a ledger entry.
func (s *Service) UpdateRecord(ctx context.Context, id uuid.UUID, in RecordRequest) (*RecordView, error) {
	record, err := s.fromRequest(in)
	if err != nil {
		return nil, err
	}
	record.ID = id

	rows, err := s.repo.UpdateRecord(ctx, record)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "financial record not found")
	}

	reloaded, err := s.repo.FindRecordByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toView(ctx, *reloaded), nil
}

// DeleteRecord removes a ledger entry.
func (s *Service) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	rows, err := s.repo.DeleteRecord(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "financial record not found")
	}
	return nil
}

// ListRecords returns the ledger newest first, with customer names resolved
// for the entries checkout attributed to a customer.
func (s *Service) ListRecords(ctx context.Context) ([]RecordView, error) {
	records, err := s.repo.ListRecords(ctx)
	if err != nil {
		return nil, err
	}

	customerIDs := make([]uuid.UUID, 0, len(records))
	seen := map[uuid.UUID]bool{}
	for _, record := range records {
		if record.CustomerID != nil && !seen[*record.CustomerID] {
			seen[*record.CustomerID] = true
			customerIDs = append(customerIDs, *record.CustomerID)
		}
	}
	names, err := s.repo.CustomerNamesByID(ctx, customerIDs)
	if err != nil {
		return nil, err
	}

	views := make([]RecordView, 0, len(records))
	for _, record := range records {
		view := *s.toView(ctx, record)
		if record.CustomerID != nil {
			view.CustomerName = names[*record.CustomerID]
		}
		views = append(views, view)
	}
	return views, nil
}

// Summary totals the ledger per type and derives the balance.
func (s *Service) Summary(ctx context.Context) (*SummaryView, error) {
	income, err := s.repo.SumByType(ctx, enums.FinancialRecordTypeIncome)
	if err != nil {
		return nil, err
	}
	expense, err := s.repo.SumByType(ctx, enums.FinancialRecordTypeExpense)
	if err != nil {
		return nil, err
	}
	return &SummaryView{
		Income:  income,
		Expense: expense,
		Balance: income.Sub(expense),
	}, nil
}

func (s *Service) fromRequest(in RecordRequest) (*models.FinancialRecord, error) {
	recordType, err := enums.ParseFinancialRecordType(in.Type)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "type must be income or expense")
	}
	if !in.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be greater than zero")
	}
	occurredOn, err := time.Parse("2006-01-02", in.Date)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date must be an ISO date (YYYY-MM-DD)")
	}

	record := &models.FinancialRecord{
		Type:        recordType,
		Amount:      in.Amount,
		Description: in.Description,
		OccurredOn:  occurredOn,
	}
	if in.CustomerID != nil {
		customerID, err := uuid.Parse(*in.CustomerID)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "customerId must be a valid uuid")
		}
		record.CustomerID = &customerID
	}
	return record, nil
}

func (s *Service) toView(_ context.Context, record models.FinancialRecord) *RecordView {
	return &RecordView{
		ID:          record.ID,
		Type:        string(record.Type),
		Amount:      record.Amount,
		Description: record.Description,
		Date:        record.OccurredOn,
		CustomerID:  record.CustomerID,
	}
}
