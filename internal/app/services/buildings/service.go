// Package buildings serves building-level views: the floor-grouped debt
// overview, maintenance records and the admin resident roster.
package buildings

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "github.com/domunity/backend/internal/errors"

	"github.com/domunity/backend/internal/app/aggregate"
	"github.com/domunity/backend/internal/app/domain/building"
	"github.com/domunity/backend/internal/app/domain/finance"
	"github.com/domunity/backend/internal/app/domain/user"
	"github.com/domunity/backend/internal/app/storage"
	"github.com/domunity/backend/pkg/logger"
)

// ResidentDebt is one row of the admin roster: a user joined with its
// apartment, building and profile, plus the outstanding payment total.
type ResidentDebt struct {
	User      user.User
	Apartment *building.Apartment
	Building  *building.Building
	Profile   *user.Profile
	TotalDebt decimal.Decimal
}

// Service implements the building-scoped use cases.
type Service struct {
	users       storage.UserStore
	store       storage.BuildingStore
	payments    storage.PaymentStore
	maintenance storage.MaintenanceStore
	log         *logger.Logger
}

// New creates a configured buildings service.
func New(users storage.UserStore, store storage.BuildingStore, payments storage.PaymentStore, maintenance storage.MaintenanceStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("buildings")
	}
	return &Service{
		users:       users,
		store:       store,
		payments:    payments,
		maintenance: maintenance,
		log:         log,
	}
}

// Get returns one building.
func (s *Service) Get(ctx context.Context, id int64) (building.Building, error) {
	bld, err := s.store.GetBuilding(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return building.Building{}, apperrors.NotFound("building not found")
		}
		return building.Building{}, apperrors.Store(err)
	}
	return bld, nil
}

// Delete removes a building. Buildings with apartments are rejected.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.store.DeleteBuilding(ctx, id)
	switch {
	case err == nil:
		s.log.WithField("building_id", id).Info("building deleted")
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return apperrors.NotFound("building not found")
	case errors.Is(err, storage.ErrHasDependents):
		return apperrors.Validation("building still has apartments")
	default:
		return apperrors.Store(err)
	}
}

// CreateApartment registers an apartment in a building. Apartment numbers
// are unique per building.
func (s *Service) CreateApartment(ctx context.Context, apt building.Apartment) (building.Apartment, error) {
	if strings.TrimSpace(apt.Number) == "" {
		return building.Apartment{}, apperrors.Validation("number is required")
	}

	created, err := s.store.CreateApartment(ctx, apt)
	switch {
	case err == nil:
		return created, nil
	case errors.Is(err, storage.ErrNotFound):
		return building.Apartment{}, apperrors.NotFound("building not found")
	case errors.Is(err, storage.ErrDuplicate):
		return building.Apartment{}, apperrors.Validation("apartment number already exists in this building")
	default:
		return building.Apartment{}, apperrors.Store(err)
	}
}

// ListApartmentDebt returns the floor-grouped debt view for a building.
func (s *Service) ListApartmentDebt(ctx context.Context, buildingID int64) ([]aggregate.FloorGroup, error) {
	if _, err := s.Get(ctx, buildingID); err != nil {
		return nil, err
	}

	apartments, err := s.store.ListApartments(ctx, buildingID)
	if err != nil {
		return nil, apperrors.Store(err)
	}

	payments, err := s.payments.ListPaymentsByBuilding(ctx, buildingID)
	if err != nil {
		return nil, apperrors.Store(err)
	}

	byApartment := make(map[int64][]finance.Payment)
	for _, p := range payments {
		byApartment[p.ApartmentID] = append(byApartment[p.ApartmentID], p)
	}

	return aggregate.GroupApartmentDebt(apartments, byApartment), nil
}

// ListMaintenance returns the building's maintenance records, newest first.
func (s *Service) ListMaintenance(ctx context.Context, buildingID int64) ([]finance.MaintenanceRecord, error) {
	if _, err := s.Get(ctx, buildingID); err != nil {
		return nil, err
	}

	records, err := s.maintenance.ListMaintenance(ctx, buildingID)
	if err != nil {
		return nil, apperrors.Store(err)
	}
	return records, nil
}

// CreateMaintenance records a maintenance entry. Admin-only at the transport
// boundary.
func (s *Service) CreateMaintenance(ctx context.Context, rec finance.MaintenanceRecord) (finance.MaintenanceRecord, error) {
	if strings.TrimSpace(rec.Description) == "" {
		return finance.MaintenanceRecord{}, apperrors.Validation("description is required")
	}
	if rec.Date.IsZero() {
		return finance.MaintenanceRecord{}, apperrors.Validation("date is required")
	}
	if rec.Status == "" {
		rec.Status = finance.MaintenancePlanned
	}
	if rec.Status != finance.MaintenancePlanned && rec.Status != finance.MaintenanceCompleted {
		return finance.MaintenanceRecord{}, apperrors.Validation("status must be planned or completed")
	}

	created, err := s.maintenance.CreateMaintenance(ctx, rec)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return finance.MaintenanceRecord{}, apperrors.NotFound("building not found")
		}
		return finance.MaintenanceRecord{}, apperrors.Store(err)
	}

	s.log.WithField("building_id", rec.BuildingID).Info("maintenance record created")
	return created, nil
}

// ResidentRoster lists every user joined with apartment, building and
// profile data plus the outstanding debt total. Admin-only at the transport
// boundary.
func (s *Service) ResidentRoster(ctx context.Context) ([]ResidentDebt, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, apperrors.Store(err)
	}

	roster := make([]ResidentDebt, 0, len(users))
	for _, u := range users {
		entry := ResidentDebt{User: u, TotalDebt: decimal.Zero}

		if apt, err := s.store.GetApartmentByUser(ctx, u.ID); err == nil {
			entry.Apartment = &apt
			if bld, err := s.store.GetBuilding(ctx, apt.BuildingID); err == nil {
				entry.Building = &bld
			}
		} else if !errors.Is(err, storage.ErrNotFound) {
			return nil, apperrors.Store(err)
		}

		if profile, err := s.users.GetProfile(ctx, u.ID); err == nil {
			entry.Profile = &profile
		} else if !errors.Is(err, storage.ErrNotFound) {
			return nil, apperrors.Store(err)
		}

		payments, err := s.payments.ListPaymentsByUser(ctx, u.ID)
		if err != nil {
			return nil, apperrors.Store(err)
		}
		entry.TotalDebt = aggregate.OutstandingTotal(payments)

		roster = append(roster, entry)
	}
	return roster, nil
}
