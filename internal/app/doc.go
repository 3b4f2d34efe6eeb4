// Package app composes the back-office application. It wires stores,
// services and lifecycle management together; business logic lives in
// internal/app/services/*.
//
//	internal/app/
//	├── application.go      # Application struct, wiring, and lifecycle
//	├── aggregate/          # Decimal-safe financial aggregation
//	├── api/                # Wire DTOs shared by REST and RPC
//	├── domain/             # Domain models (pure data structures)
//	│   ├── user/           # Users and profiles
//	│   ├── building/       # Buildings and apartments
//	│   ├── finance/        # Payments, maintenance, financial records
//	│   ├── event/          # Building events
//	│   └── contact/        # Contact requests
//	├── storage/            # Store interfaces and implementations
//	│   ├── interfaces.go   # UserStore, BuildingStore, PaymentStore, ...
//	│   ├── memory/         # In-memory implementation, default wiring
//	│   └── postgres/       # PostgreSQL implementation with migrations
//	├── services/           # Use-case services shared by both surfaces
//	├── httpapi/            # REST adapter (chi)
//	├── rpcapi/             # RPC adapter (grpc with a JSON codec)
//	├── metrics/            # Prometheus collectors
//	└── system/             # Lifecycle manager
//
// Dependency direction: cmd/server -> internal/app -> services -> storage.
// Transport adapters depend on services only through the Application struct
// so both surfaces stay semantically identical.
package app
