// Package users serves resident-facing profile and apartment views.
package users

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/domunity/backend/internal/errors"

	"github.com/domunity/backend/internal/app/aggregate"
	"github.com/domunity/backend/internal/app/domain/building"
	"github.com/domunity/backend/internal/app/domain/event"
	"github.com/domunity/backend/internal/app/domain/user"
	"github.com/domunity/backend/internal/app/storage"
	"github.com/domunity/backend/pkg/logger"
)

const upcomingEventsLimit = 10

// ProfileView joins the user with its management profile.
type ProfileView struct {
	User    user.User
	Profile user.Profile
}

// ApartmentView is the composite resident dashboard: apartment, building,
// recent events and the financial summary.
type ApartmentView struct {
	Apartment building.Apartment
	Building  building.Building
	Events    []event.Event
	Summary   aggregate.UserSummary
}

// Service implements the user-scoped use cases.
type Service struct {
	users     storage.UserStore
	buildings storage.BuildingStore
	payments  storage.PaymentStore
	events    storage.EventStore
	log       *logger.Logger
}

// New creates a configured users service.
func New(users storage.UserStore, buildings storage.BuildingStore, payments storage.PaymentStore, events storage.EventStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("users")
	}
	return &Service{
		users:     users,
		buildings: buildings,
		payments:  payments,
		events:    events,
		log:       log,
	}
}

// GetProfile returns the user together with its profile. A user without a
// profile row gets an empty profile rather than an error.
func (s *Service) GetProfile(ctx context.Context, userID int64) (ProfileView, error) {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ProfileView{}, apperrors.NotFound("user not found")
		}
		return ProfileView{}, apperrors.Store(err)
	}

	profile, err := s.users.GetProfile(ctx, userID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return ProfileView{}, apperrors.Store(err)
	}
	profile.UserID = u.ID

	return ProfileView{User: u, Profile: profile}, nil
}

// UpdateProfile changes the user's full name and phone. Email and role are
// immutable here.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, fullName, phone string) (user.User, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return user.User{}, apperrors.Validation("full_name is required")
	}

	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return user.User{}, apperrors.NotFound("user not found")
		}
		return user.User{}, apperrors.Store(err)
	}

	u.FullName = fullName
	u.Phone = strings.TrimSpace(phone)

	updated, err := s.users.UpdateUser(ctx, u)
	if err != nil {
		return user.User{}, apperrors.Store(err)
	}

	s.log.WithField("user_id", userID).Info("profile updated")
	return updated, nil
}

// GetApartment assembles the resident dashboard for the user's apartment.
func (s *Service) GetApartment(ctx context.Context, userID int64) (ApartmentView, error) {
	apt, err := s.buildings.GetApartmentByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ApartmentView{}, apperrors.NotFound("no apartment assigned")
		}
		return ApartmentView{}, apperrors.Store(err)
	}

	bld, err := s.buildings.GetBuilding(ctx, apt.BuildingID)
	if err != nil {
		return ApartmentView{}, apperrors.Store(err)
	}

	events, err := s.events.ListEvents(ctx, apt.BuildingID, upcomingEventsLimit)
	if err != nil {
		return ApartmentView{}, apperrors.Store(err)
	}

	payments, err := s.payments.ListPaymentsByUser(ctx, userID)
	if err != nil {
		return ApartmentView{}, apperrors.Store(err)
	}

	return ApartmentView{
		Apartment: apt,
		Building:  bld,
		Events:    events,
		Summary:   aggregate.SummarizeUserPayments(payments),
	}, nil
}
