// Package events serves building announcements.
package events

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/domunity/backend/internal/errors"

	"github.com/domunity/backend/internal/app/domain/event"
	"github.com/domunity/backend/internal/app/storage"
	"github.com/domunity/backend/pkg/logger"
)

const defaultListLimit = 10

// Service implements the event use cases.
type Service struct {
	buildings storage.BuildingStore
	store     storage.EventStore
	log       *logger.Logger
}

// New creates a configured events service.
func New(buildings storage.BuildingStore, store storage.EventStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("events")
	}
	return &Service{buildings: buildings, store: store, log: log}
}

// List returns the building's events, newest first. A non-positive limit
// selects the default of 10.
func (s *Service) List(ctx context.Context, buildingID int64, limit int) ([]event.Event, error) {
	if _, err := s.buildings.GetBuilding(ctx, buildingID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperrors.NotFound("building not found")
		}
		return nil, apperrors.Store(err)
	}

	if limit <= 0 {
		limit = defaultListLimit
	}

	events, err := s.store.ListEvents(ctx, buildingID, limit)
	if err != nil {
		return nil, apperrors.Store(err)
	}
	return events, nil
}

// Create records a building announcement. Admin-only at the transport
// boundary.
func (s *Service) Create(ctx context.Context, ev event.Event) (event.Event, error) {
	ev.Title = strings.TrimSpace(ev.Title)
	if ev.Title == "" {
		return event.Event{}, apperrors.Validation("title is required")
	}
	if ev.Date.IsZero() {
		return event.Event{}, apperrors.Validation("date is required")
	}

	created, err := s.store.CreateEvent(ctx, ev)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return event.Event{}, apperrors.NotFound("building not found")
		}
		return event.Event{}, apperrors.Store(err)
	}

	s.log.WithField("building_id", ev.BuildingID).WithField("event_id", created.ID).Info("event created")
	return created, nil
}
