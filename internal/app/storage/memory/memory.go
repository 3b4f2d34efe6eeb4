// Package memory provides a thread-safe in-memory implementation of the
// storage interfaces. It is used by tests and as the default wiring when no
// database is configured.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/domunity/backend/internal/app/domain/building"
	"github.com/domunity/backend/internal/app/domain/contact"
	"github.com/domunity/backend/internal/app/domain/event"
	"github.com/domunity/backend/internal/app/domain/finance"
	"github.com/domunity/backend/internal/app/domain/user"
	"github.com/domunity/backend/internal/app/storage"
)

// Store keeps every table in maps and ordered slices guarded by one mutex. It
// is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	nextID int64

	users          map[int64]user.User
	emails         map[string]int64
	profiles       map[int64]user.Profile
	buildings      map[int64]building.Building
	apartments     map[int64]building.Apartment
	apartmentOrder []int64
	payments       []finance.Payment
	maintenance    []finance.MaintenanceRecord
	records        []finance.Record
	events         []event.Event
	contacts       []contact.Request
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.BuildingStore = (*Store)(nil)
var _ storage.PaymentStore = (*Store)(nil)
var _ storage.MaintenanceStore = (*Store)(nil)
var _ storage.FinancialRecordStore = (*Store)(nil)
var _ storage.EventStore = (*Store)(nil)
var _ storage.ContactStore = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		nextID:     1,
		users:      make(map[int64]user.User),
		emails:     make(map[string]int64),
		profiles:   make(map[int64]user.Profile),
		buildings:  make(map[int64]building.Building),
		apartments: make(map[int64]building.Apartment),
	}
}

func (s *Store) nextIDLocked() int64 {
	id := s.nextID
	s.nextID++
	return id
}

// UserStore implementation ----------------------------------------------------

func (s *Store) CreateUserWithProfile(_ context.Context, u user.User, p user.Profile) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(strings.TrimSpace(u.Email))
	if _, exists := s.emails[key]; exists {
		return user.User{}, storage.ErrDuplicate
	}

	u.ID = s.nextIDLocked()
	u.CreatedAt = time.Now().UTC()
	s.users[u.ID] = u
	s.emails[key] = u.ID

	p.UserID = u.ID
	s.profiles[u.ID] = cloneProfile(p)

	return u, nil
}

func (s *Store) GetUser(_ context.Context, id int64) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return user.User{}, storage.ErrNotFound
	}
	return s.users[id], nil
}

func (s *Store) UpdateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.users[u.ID]
	if !ok {
		return user.User{}, storage.ErrNotFound
	}

	u.Email = original.Email
	u.CreatedAt = original.CreatedAt
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) ListUsers(_ context.Context) ([]user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]user.User, 0, len(s.users))
	for _, u := range s.users {
		result = append(result, u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *Store) GetProfile(_ context.Context, userID int64) (user.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return user.Profile{}, storage.ErrNotFound
	}
	return cloneProfile(p), nil
}

// BuildingStore implementation ------------------------------------------------

func (s *Store) CreateBuilding(_ context.Context, b building.Building) (building.Building, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b.ID = s.nextIDLocked()
	s.buildings[b.ID] = b
	return b, nil
}

func (s *Store) GetBuilding(_ context.Context, id int64) (building.Building, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.buildings[id]
	if !ok {
		return building.Building{}, storage.ErrNotFound
	}
	return b, nil
}

func (s *Store) DeleteBuilding(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.buildings[id]; !ok {
		return storage.ErrNotFound
	}
	for _, apt := range s.apartments {
		if apt.BuildingID == id {
			return storage.ErrHasDependents
		}
	}
	delete(s.buildings, id)
	return nil
}

func (s *Store) CreateApartment(_ context.Context, apt building.Apartment) (building.Apartment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.buildings[apt.BuildingID]; !ok {
		return building.Apartment{}, storage.ErrNotFound
	}
	for _, existing := range s.apartments {
		if existing.BuildingID == apt.BuildingID && existing.Number == apt.Number {
			return building.Apartment{}, storage.ErrDuplicate
		}
	}

	apt.ID = s.nextIDLocked()
	s.apartments[apt.ID] = cloneApartment(apt)
	s.apartmentOrder = append(s.apartmentOrder, apt.ID)
	return apt, nil
}

func (s *Store) ListApartments(_ context.Context, buildingID int64) ([]building.Apartment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]building.Apartment, 0)
	for _, id := range s.apartmentOrder {
		apt := s.apartments[id]
		if apt.BuildingID == buildingID {
			result = append(result, cloneApartment(apt))
		}
	}
	return result, nil
}

func (s *Store) GetApartmentByUser(_ context.Context, userID int64) (building.Apartment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.apartmentOrder {
		apt := s.apartments[id]
		if apt.UserID != nil && *apt.UserID == userID {
			return cloneApartment(apt), nil
		}
	}
	return building.Apartment{}, storage.ErrNotFound
}

// PaymentStore implementation -------------------------------------------------

func (s *Store) CreatePayment(_ context.Context, p finance.Payment) (finance.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = s.nextIDLocked()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	s.payments = append(s.payments, clonePayment(p))
	return p, nil
}

func (s *Store) ListPaymentsByUser(_ context.Context, userID int64) ([]finance.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Payments are appended in creation order; walk backwards for the
	// newest-first contract.
	result := make([]finance.Payment, 0)
	for i := len(s.payments) - 1; i >= 0; i-- {
		if s.payments[i].UserID == userID {
			result = append(result, clonePayment(s.payments[i]))
		}
	}
	return result, nil
}

func (s *Store) ListPaymentsByBuilding(_ context.Context, buildingID int64) ([]finance.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]finance.Payment, 0)
	for i := len(s.payments) - 1; i >= 0; i-- {
		p := s.payments[i]
		apt, ok := s.apartments[p.ApartmentID]
		if ok && apt.BuildingID == buildingID {
			result = append(result, clonePayment(p))
		}
	}
	return result, nil
}

// MaintenanceStore implementation ---------------------------------------------

func (s *Store) CreateMaintenance(_ context.Context, rec finance.MaintenanceRecord) (finance.MaintenanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.buildings[rec.BuildingID]; !ok {
		return finance.MaintenanceRecord{}, storage.ErrNotFound
	}
	rec.ID = s.nextIDLocked()
	s.maintenance = append(s.maintenance, rec)
	return rec, nil
}

func (s *Store) ListMaintenance(_ context.Context, buildingID int64) ([]finance.MaintenanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]finance.MaintenanceRecord, 0)
	for _, rec := range s.maintenance {
		if rec.BuildingID == buildingID {
			result = append(result, rec)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Date.After(result[j].Date) })
	return result, nil
}

// FinancialRecordStore implementation -----------------------------------------

func (s *Store) CreateFinancialRecord(_ context.Context, rec finance.Record) (finance.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ID = s.nextIDLocked()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	s.records = append(s.records, rec)
	return rec, nil
}

func (s *Store) ListLatestRecords(_ context.Context, buildingID int64) ([]finance.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Records are appended in creation order; later entries win.
	latest := make(map[int64]finance.Record)
	for _, rec := range s.records {
		apt, ok := s.apartments[rec.ApartmentID]
		if !ok || apt.BuildingID != buildingID {
			continue
		}
		latest[rec.ApartmentID] = rec
	}

	result := make([]finance.Record, 0, len(latest))
	for _, id := range s.apartmentOrder {
		if rec, ok := latest[id]; ok {
			result = append(result, rec)
		}
	}
	return result, nil
}

// EventStore implementation ---------------------------------------------------

func (s *Store) CreateEvent(_ context.Context, ev event.Event) (event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.buildings[ev.BuildingID]; !ok {
		return event.Event{}, storage.ErrNotFound
	}
	ev.ID = s.nextIDLocked()
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	s.events = append(s.events, ev)
	return ev, nil
}

func (s *Store) ListEvents(_ context.Context, buildingID int64, limit int) ([]event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]event.Event, 0)
	for _, ev := range s.events {
		if ev.BuildingID == buildingID {
			result = append(result, ev)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Date.After(result[j].Date) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// ContactStore implementation -------------------------------------------------

func (s *Store) CreateContactRequest(_ context.Context, req contact.Request) (contact.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req.ID = s.nextIDLocked()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	s.contacts = append(s.contacts, req)
	return req, nil
}

// ContactRequests returns all stored submissions, oldest first.
func (s *Store) ContactRequests() []contact.Request {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]contact.Request, len(s.contacts))
	copy(result, s.contacts)
	return result
}

// Helpers ---------------------------------------------------------------------

func cloneProfile(p user.Profile) user.Profile {
	if p.ContractEndDate != nil {
		d := *p.ContractEndDate
		p.ContractEndDate = &d
	}
	return p
}

func cloneApartment(apt building.Apartment) building.Apartment {
	if apt.UserID != nil {
		id := *apt.UserID
		apt.UserID = &id
	}
	return apt
}

func clonePayment(p finance.Payment) finance.Payment {
	if p.PaidDate != nil {
		d := *p.PaidDate
		p.PaidDate = &d
	}
	return p
}
