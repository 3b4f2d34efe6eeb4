// Package financial serves the payment history and building report use
// cases. Both transport surfaces call the same methods, so neither can drift
// into a stub.
package financial

import (
	"context"
	"errors"

	apperrors "github.com/domunity/backend/internal/errors"

	"github.com/domunity/backend/internal/app/aggregate"
	"github.com/domunity/backend/internal/app/domain/finance"
	"github.com/domunity/backend/internal/app/storage"
	"github.com/domunity/backend/pkg/logger"
)

// Service implements the financial use cases.
type Service struct {
	buildings storage.BuildingStore
	payments  storage.PaymentStore
	records   storage.FinancialRecordStore
	log       *logger.Logger
}

// New creates a configured financial service.
func New(buildings storage.BuildingStore, payments storage.PaymentStore, records storage.FinancialRecordStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("financial")
	}
	return &Service{
		buildings: buildings,
		payments:  payments,
		records:   records,
		log:       log,
	}
}

// GetPaymentHistory returns the per-user financial summary.
func (s *Service) GetPaymentHistory(ctx context.Context, userID int64) (aggregate.UserSummary, error) {
	payments, err := s.payments.ListPaymentsByUser(ctx, userID)
	if err != nil {
		return aggregate.UserSummary{}, apperrors.Store(err)
	}
	return aggregate.SummarizeUserPayments(payments), nil
}

// GetFinancialReport returns the building-wide cost breakdown report.
func (s *Service) GetFinancialReport(ctx context.Context, buildingID int64) (aggregate.BuildingReport, error) {
	if _, err := s.buildings.GetBuilding(ctx, buildingID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return aggregate.BuildingReport{}, apperrors.NotFound("building not found")
		}
		return aggregate.BuildingReport{}, apperrors.Store(err)
	}

	apartments, err := s.buildings.ListApartments(ctx, buildingID)
	if err != nil {
		return aggregate.BuildingReport{}, apperrors.Store(err)
	}

	records, err := s.records.ListLatestRecords(ctx, buildingID)
	if err != nil {
		return aggregate.BuildingReport{}, apperrors.Store(err)
	}

	latest := make(map[int64]finance.Record, len(records))
	for _, rec := range records {
		latest[rec.ApartmentID] = rec
	}

	return aggregate.BuildFinancialReport(apartments, latest), nil
}
