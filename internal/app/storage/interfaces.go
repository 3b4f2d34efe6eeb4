// Package storage defines the persistence contracts for the credential and
// ledger data. Implementations live in the memory and postgres subpackages.
package storage

import (
	"context"
	"errors"

	"github.com/domunity/backend/internal/app/domain/building"
	"github.com/domunity/backend/internal/app/domain/contact"
	"github.com/domunity/backend/internal/app/domain/event"
	"github.com/domunity/backend/internal/app/domain/finance"
	"github.com/domunity/backend/internal/app/domain/user"
)

// Sentinel errors shared by all implementations. Services classify these into
// the user-facing error taxonomy; raw driver errors never leave a store.
var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicate     = errors.New("duplicate record")
	ErrHasDependents = errors.New("record has dependents")
)

// UserStore persists users and their 1:1 profiles.
type UserStore interface {
	// CreateUserWithProfile inserts the user and its profile atomically.
	// Returns ErrDuplicate when the email is already registered.
	CreateUserWithProfile(ctx context.Context, u user.User, p user.Profile) (user.User, error)
	GetUser(ctx context.Context, id int64) (user.User, error)
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
	UpdateUser(ctx context.Context, u user.User) (user.User, error)
	ListUsers(ctx context.Context) ([]user.User, error)
	GetProfile(ctx context.Context, userID int64) (user.Profile, error)
}

// BuildingStore persists buildings and apartments.
type BuildingStore interface {
	CreateBuilding(ctx context.Context, b building.Building) (building.Building, error)
	GetBuilding(ctx context.Context, id int64) (building.Building, error)
	// DeleteBuilding fails with ErrHasDependents while apartments reference
	// the building.
	DeleteBuilding(ctx context.Context, id int64) error
	// CreateApartment enforces apartment-number uniqueness per building and
	// returns ErrDuplicate on a collision.
	CreateApartment(ctx context.Context, apt building.Apartment) (building.Apartment, error)
	ListApartments(ctx context.Context, buildingID int64) ([]building.Apartment, error)
	GetApartmentByUser(ctx context.Context, userID int64) (building.Apartment, error)
}

// PaymentStore persists payments. Listings are ordered by creation time
// descending so the first paid row is the most recent one.
type PaymentStore interface {
	CreatePayment(ctx context.Context, p finance.Payment) (finance.Payment, error)
	ListPaymentsByUser(ctx context.Context, userID int64) ([]finance.Payment, error)
	ListPaymentsByBuilding(ctx context.Context, buildingID int64) ([]finance.Payment, error)
}

// MaintenanceStore persists building maintenance records.
type MaintenanceStore interface {
	CreateMaintenance(ctx context.Context, rec finance.MaintenanceRecord) (finance.MaintenanceRecord, error)
	ListMaintenance(ctx context.Context, buildingID int64) ([]finance.MaintenanceRecord, error)
}

// FinancialRecordStore persists monthly cost breakdowns per apartment.
type FinancialRecordStore interface {
	CreateFinancialRecord(ctx context.Context, rec finance.Record) (finance.Record, error)
	// ListLatestRecords returns at most one record per apartment of the
	// building: the most recently created one.
	ListLatestRecords(ctx context.Context, buildingID int64) ([]finance.Record, error)
}

// EventStore persists building announcements.
type EventStore interface {
	CreateEvent(ctx context.Context, ev event.Event) (event.Event, error)
	// ListEvents returns events for the building ordered by date descending,
	// capped at limit when limit > 0.
	ListEvents(ctx context.Context, buildingID int64, limit int) ([]event.Event, error)
}

// ContactStore persists public contact-form submissions.
type ContactStore interface {
	CreateContactRequest(ctx context.Context, req contact.Request) (contact.Request, error)
}
