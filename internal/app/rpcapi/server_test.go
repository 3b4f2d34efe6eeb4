package rpcapi

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	app "github.com/domunity/backend/internal/app"
	"github.com/domunity/backend/internal/app/api"
	"github.com/domunity/backend/internal/app/domain/building"
	"github.com/domunity/backend/internal/app/domain/finance"
	"github.com/domunity/backend/internal/app/domain/user"
	"github.com/domunity/backend/internal/app/storage/memory"
)

func startTestServer(t *testing.T) (*memory.Store, *grpc.ClientConn) {
	t.Helper()
	store := memory.New()
	application, err := app.New(app.Config{JWTSecret: "test-secret"}, app.Stores{
		Users:            store,
		Buildings:        store,
		Payments:         store,
		Maintenance:      store,
		FinancialRecords: store,
		Events:           store,
		Contacts:         store,
	}, nil)
	if err != nil {
		t.Fatalf("build application: %v", err)
	}

	srv := NewServer(application, "127.0.0.1:0", nil)
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("start server: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Stop(ctx)
	})

	conn, err := grpc.NewClient(srv.Addr(),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(jsonCodec{})),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return store, conn
}

func seedUser(t *testing.T, store *memory.Store, email, password string, role user.Role) user.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u, err := store.CreateUserWithProfile(context.Background(), user.User{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     "Seeded User",
		Role:         role,
		Active:       true,
	}, user.Profile{})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func invoke(t *testing.T, conn *grpc.ClientConn, ctx context.Context, method string, req, resp interface{}) error {
	t.Helper()
	callCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return conn.Invoke(callCtx, method, req, resp)
}

func authedContext(token string) context.Context {
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+token)
}

func TestLoginAndProfile(t *testing.T) {
	store, conn := startTestServer(t)
	seedUser(t, store, "ana@example.com", "secret1", user.RoleUser)

	var session api.LoginResponse
	err := invoke(t, conn, context.Background(), "/domunity.AuthService/Login",
		api.LoginRequest{Email: "ana@example.com", Password: "secret1"}, &session)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.AccessToken == "" || session.User.Email != "ana@example.com" {
		t.Fatalf("session = %+v", session)
	}

	// Unauthenticated profile access.
	var profile api.ProfileResponse
	err = invoke(t, conn, context.Background(), "/domunity.UserService/GetProfile", Empty{}, &profile)
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("unauthenticated code = %v, want Unauthenticated", status.Code(err))
	}

	err = invoke(t, conn, authedContext(session.AccessToken), "/domunity.UserService/GetProfile", Empty{}, &profile)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.User.Email != "ana@example.com" || profile.Balance != "0.00" {
		t.Fatalf("profile = %+v", profile)
	}
}

func TestLoginFailureCode(t *testing.T) {
	store, conn := startTestServer(t)
	seedUser(t, store, "ana@example.com", "secret1", user.RoleUser)

	var session api.LoginResponse
	err := invoke(t, conn, context.Background(), "/domunity.AuthService/Login",
		api.LoginRequest{Email: "ana@example.com", Password: "wrong"}, &session)
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("code = %v, want Unauthenticated", status.Code(err))
	}
	if status.Convert(err).Message() != "invalid email or password" {
		t.Fatalf("message = %q", status.Convert(err).Message())
	}
}

func TestAdminEnforcement(t *testing.T) {
	store, conn := startTestServer(t)
	seedUser(t, store, "resident@example.com", "secret1", user.RoleUser)
	seedUser(t, store, "admin@example.com", "secret1", user.RoleAdmin)

	bld, err := store.CreateBuilding(context.Background(), building.Building{Address: "test"})
	if err != nil {
		t.Fatalf("create building: %v", err)
	}

	var resident, admin api.LoginResponse
	if err := invoke(t, conn, context.Background(), "/domunity.AuthService/Login",
		api.LoginRequest{Email: "resident@example.com", Password: "secret1"}, &resident); err != nil {
		t.Fatalf("resident login: %v", err)
	}
	if err := invoke(t, conn, context.Background(), "/domunity.AuthService/Login",
		api.LoginRequest{Email: "admin@example.com", Password: "secret1"}, &admin); err != nil {
		t.Fatalf("admin login: %v", err)
	}

	req := CreateEventRequest{BuildingID: bld.ID, Date: "2026-09-15", Title: "assembly"}

	var created api.EventResponse
	err = invoke(t, conn, authedContext(resident.AccessToken), "/domunity.EventService/CreateEvent", req, &created)
	if status.Code(err) != codes.PermissionDenied {
		t.Fatalf("resident code = %v, want PermissionDenied", status.Code(err))
	}

	err = invoke(t, conn, authedContext(admin.AccessToken), "/domunity.EventService/CreateEvent", req, &created)
	if err != nil {
		t.Fatalf("admin create event: %v", err)
	}
	if created.Title != "assembly" || created.BuildingID != bld.ID {
		t.Fatalf("created = %+v", created)
	}

	var events ListEventsResponse
	err = invoke(t, conn, authedContext(resident.AccessToken), "/domunity.EventService/ListEvents",
		ListEventsRequest{BuildingID: bld.ID}, &events)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events.Events) != 1 {
		t.Fatalf("listed %d events, want 1", len(events.Events))
	}
}

func TestGetApartment(t *testing.T) {
	store, conn := startTestServer(t)
	u := seedUser(t, store, "ana@example.com", "secret1", user.RoleUser)

	bld, err := store.CreateBuilding(context.Background(), building.Building{Address: "zh.k. Mladost 3"})
	if err != nil {
		t.Fatalf("create building: %v", err)
	}
	if _, err := store.CreateApartment(context.Background(), building.Apartment{
		BuildingID: bld.ID, Number: "15", Floor: 5, UserID: &u.ID,
	}); err != nil {
		t.Fatalf("create apartment: %v", err)
	}
	if _, err := store.CreatePayment(context.Background(), finance.Payment{
		UserID: u.ID, Amount: decimal.RequireFromString("45.50"), Status: finance.PaymentPending,
	}); err != nil {
		t.Fatalf("create payment: %v", err)
	}

	var session api.LoginResponse
	if err := invoke(t, conn, context.Background(), "/domunity.AuthService/Login",
		api.LoginRequest{Email: "ana@example.com", Password: "secret1"}, &session); err != nil {
		t.Fatalf("login: %v", err)
	}

	var view api.ApartmentViewResponse
	if err := invoke(t, conn, authedContext(session.AccessToken), "/domunity.UserService/GetApartment", Empty{}, &view); err != nil {
		t.Fatalf("get apartment: %v", err)
	}
	if view.Building.Address != "zh.k. Mladost 3" || view.Apartment.Number != "15" {
		t.Fatalf("view = %+v", view)
	}
	if view.Summary.PendingTotal != "45.50" {
		t.Fatalf("pending total = %s, want 45.50", view.Summary.PendingTotal)
	}

	// A user without an apartment gets NotFound.
	seedUser(t, store, "bez@example.com", "secret1", user.RoleUser)
	var other api.LoginResponse
	if err := invoke(t, conn, context.Background(), "/domunity.AuthService/Login",
		api.LoginRequest{Email: "bez@example.com", Password: "secret1"}, &other); err != nil {
		t.Fatalf("login: %v", err)
	}
	err = invoke(t, conn, authedContext(other.AccessToken), "/domunity.UserService/GetApartment", Empty{}, &view)
	if status.Code(err) != codes.NotFound {
		t.Fatalf("code = %v, want NotFound", status.Code(err))
	}
}

func TestResidentRoster(t *testing.T) {
	store, conn := startTestServer(t)
	seedUser(t, store, "resident@example.com", "secret1", user.RoleUser)
	seedUser(t, store, "admin@example.com", "secret1", user.RoleAdmin)

	var resident, admin api.LoginResponse
	if err := invoke(t, conn, context.Background(), "/domunity.AuthService/Login",
		api.LoginRequest{Email: "resident@example.com", Password: "secret1"}, &resident); err != nil {
		t.Fatalf("resident login: %v", err)
	}
	if err := invoke(t, conn, context.Background(), "/domunity.AuthService/Login",
		api.LoginRequest{Email: "admin@example.com", Password: "secret1"}, &admin); err != nil {
		t.Fatalf("admin login: %v", err)
	}

	var roster api.ResidentListResponse
	err := invoke(t, conn, authedContext(resident.AccessToken), "/domunity.UserService/ListResidents", Empty{}, &roster)
	if status.Code(err) != codes.PermissionDenied {
		t.Fatalf("resident code = %v, want PermissionDenied", status.Code(err))
	}

	if err := invoke(t, conn, authedContext(admin.AccessToken), "/domunity.UserService/ListResidents", Empty{}, &roster); err != nil {
		t.Fatalf("admin roster: %v", err)
	}
	if len(roster.Residents) != 2 {
		t.Fatalf("roster has %d residents, want 2", len(roster.Residents))
	}
}

func TestCreateMaintenance(t *testing.T) {
	store, conn := startTestServer(t)
	seedUser(t, store, "resident@example.com", "secret1", user.RoleUser)
	seedUser(t, store, "admin@example.com", "secret1", user.RoleAdmin)

	bld, err := store.CreateBuilding(context.Background(), building.Building{Address: "test"})
	if err != nil {
		t.Fatalf("create building: %v", err)
	}

	var resident, admin api.LoginResponse
	if err := invoke(t, conn, context.Background(), "/domunity.AuthService/Login",
		api.LoginRequest{Email: "resident@example.com", Password: "secret1"}, &resident); err != nil {
		t.Fatalf("resident login: %v", err)
	}
	if err := invoke(t, conn, context.Background(), "/domunity.AuthService/Login",
		api.LoginRequest{Email: "admin@example.com", Password: "secret1"}, &admin); err != nil {
		t.Fatalf("admin login: %v", err)
	}

	req := CreateMaintenanceRequest{
		BuildingID:  bld.ID,
		Date:        "2026-09-01",
		Description: "elevator inspection",
		Cost:        "150.00",
		Status:      "scheduled",
	}

	var created api.MaintenanceResponse
	err = invoke(t, conn, authedContext(resident.AccessToken), "/domunity.BuildingService/CreateMaintenance", req, &created)
	if status.Code(err) != codes.PermissionDenied {
		t.Fatalf("resident code = %v, want PermissionDenied", status.Code(err))
	}

	if err := invoke(t, conn, authedContext(admin.AccessToken), "/domunity.BuildingService/CreateMaintenance", req, &created); err != nil {
		t.Fatalf("admin create maintenance: %v", err)
	}
	if created.Cost != "150.00" || created.Date != "2026-09-01" {
		t.Fatalf("created = %+v", created)
	}

	badCost := req
	badCost.Cost = "abc"
	err = invoke(t, conn, authedContext(admin.AccessToken), "/domunity.BuildingService/CreateMaintenance", badCost, &created)
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("bad cost code = %v, want InvalidArgument", status.Code(err))
	}

	var records ListMaintenanceResponse
	if err := invoke(t, conn, authedContext(resident.AccessToken), "/domunity.BuildingService/ListMaintenance",
		ListMaintenanceRequest{BuildingID: bld.ID}, &records); err != nil {
		t.Fatalf("list maintenance: %v", err)
	}
	if len(records.Maintenance) != 1 {
		t.Fatalf("listed %d records, want 1", len(records.Maintenance))
	}
}

func TestUnknownBuildingMapsToNotFound(t *testing.T) {
	store, conn := startTestServer(t)
	seedUser(t, store, "ana@example.com", "secret1", user.RoleUser)

	var session api.LoginResponse
	if err := invoke(t, conn, context.Background(), "/domunity.AuthService/Login",
		api.LoginRequest{Email: "ana@example.com", Password: "secret1"}, &session); err != nil {
		t.Fatalf("login: %v", err)
	}

	var resp api.BuildingResponse
	err := invoke(t, conn, authedContext(session.AccessToken), "/domunity.BuildingService/GetBuilding",
		GetBuildingRequest{BuildingID: 999}, &resp)
	if status.Code(err) != codes.NotFound {
		t.Fatalf("code = %v, want NotFound", status.Code(err))
	}
}

func TestDiscoveryAndHealth(t *testing.T) {
	_, conn := startTestServer(t)

	var services DiscoveryResponse
	if err := invoke(t, conn, context.Background(), "/domunity.DiscoveryService/ListServices", Empty{}, &services); err != nil {
		t.Fatalf("list services: %v", err)
	}
	want := map[string]bool{
		"domunity.AuthService":      false,
		"domunity.UserService":      false,
		"domunity.BuildingService":  false,
		"domunity.FinancialService": false,
		"domunity.EventService":     false,
		"domunity.ContactService":   false,
		"domunity.HealthService":    false,
		"domunity.DiscoveryService": false,
	}
	for _, name := range services.Services {
		if _, ok := want[name]; ok {
			want[name] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Fatalf("service %s missing from discovery: %v", name, services.Services)
		}
	}

	var health api.HealthResponse
	if err := invoke(t, conn, context.Background(), "/domunity.HealthService/Check", Empty{}, &health); err != nil {
		t.Fatalf("health check: %v", err)
	}
	if health.Status != "healthy" {
		t.Fatalf("health = %+v", health)
	}
}
