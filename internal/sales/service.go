package sales

import (
	"context"
	"errors"
	"time"

	"github.com/lmartins/retail-pos/pkg/db/models"
	"github.com/lmartins/retail-pos/pkg/logger"
)

// ServiceParams groups dependencies for the sales service.
type ServiceParams struct {
	Repo   Repository
	Logger *logger.Logger
	Now    func() time.Time
}

// Service exposes read access over finished sales.
type Service struct {
	repo Repository
	logg *logger.Logger
	now  func() time.Time
}

// NewService builds a sales service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{repo: params.Repo, logg: params.Logger, now: now}, nil
}

// ListToday returns the sales of the current server-local calendar day,
// newest first.
func (s *Service) ListToday(ctx context.Context) ([]models.Sale, error) {
	current := s.now()
	start := time.Date(current.Year(), current.Month(), current.Day(), 0, 0, 0, 0, current.Location())
	end := start.AddDate(0, 0, 1)

	listed, err := s.repo.ListBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if listed == nil {
		listed = []models.Sale{}
	}
	return listed, nil
}
