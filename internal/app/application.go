package app

import (
	"context"
	"fmt"
	"time"

	"github.com/domunity/backend/internal/app/services/auth"
	"github.com/domunity/backend/internal/app/services/buildings"
	"github.com/domunity/backend/internal/app/services/contacts"
	"github.com/domunity/backend/internal/app/services/events"
	"github.com/domunity/backend/internal/app/services/financial"
	"github.com/domunity/backend/internal/app/services/health"
	"github.com/domunity/backend/internal/app/services/users"
	"github.com/domunity/backend/internal/app/storage"
	"github.com/domunity/backend/internal/app/storage/memory"
	"github.com/domunity/backend/internal/app/system"
	"github.com/domunity/backend/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Users            storage.UserStore
	Buildings        storage.BuildingStore
	Payments         storage.PaymentStore
	Maintenance      storage.MaintenanceStore
	FinancialRecords storage.FinancialRecordStore
	Events           storage.EventStore
	Contacts         storage.ContactStore
}

// Config carries the application-level settings that are not store wiring.
type Config struct {
	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// DB, when set, is probed by the health service. Nil means the
	// application runs on the in-memory stores.
	DB health.Pinger
}

// Application ties domain services together and manages their lifecycle.
type Application struct {
	manager *system.Manager
	log     *logger.Logger

	Auth      *auth.Service
	Users     *users.Service
	Buildings *buildings.Service
	Financial *financial.Service
	Events    *events.Service
	Contacts  *contacts.Service
	Health    *health.Service
}

// New builds a fully initialised application with the provided stores.
func New(cfg Config, stores Stores, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 24 * time.Hour
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 30 * 24 * time.Hour
	}

	mem := memory.New()
	if stores.Users == nil {
		stores.Users = mem
	}
	if stores.Buildings == nil {
		stores.Buildings = mem
	}
	if stores.Payments == nil {
		stores.Payments = mem
	}
	if stores.Maintenance == nil {
		stores.Maintenance = mem
	}
	if stores.FinancialRecords == nil {
		stores.FinancialRecords = mem
	}
	if stores.Events == nil {
		stores.Events = mem
	}
	if stores.Contacts == nil {
		stores.Contacts = mem
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("configure token service: %w", err)
	}

	manager := system.NewManager()

	authService := auth.New(stores.Users, tokens, log)
	userService := users.New(stores.Users, stores.Buildings, stores.Payments, stores.Events, log)
	buildingService := buildings.New(stores.Users, stores.Buildings, stores.Payments, stores.Maintenance, log)
	financialService := financial.New(stores.Buildings, stores.Payments, stores.FinancialRecords, log)
	eventService := events.New(stores.Buildings, stores.Events, log)
	contactService := contacts.New(stores.Contacts, log)
	healthService := health.New(cfg.DB, log)

	for _, name := range []string{"auth", "users", "buildings", "financial", "events", "contacts"} {
		if err := manager.Register(system.NoopService{ServiceName: name}); err != nil {
			return nil, fmt.Errorf("register %s service: %w", name, err)
		}
	}

	return &Application{
		manager:   manager,
		log:       log,
		Auth:      authService,
		Users:     userService,
		Buildings: buildingService,
		Financial: financialService,
		Events:    eventService,
		Contacts:  contactService,
		Health:    healthService,
	}, nil
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
