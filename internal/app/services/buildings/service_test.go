package buildings

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/domunity/backend/internal/errors"

	"github.com/domunity/backend/internal/app/domain/building"
	"github.com/domunity/backend/internal/app/domain/finance"
	"github.com/domunity/backend/internal/app/domain/user"
	"github.com/domunity/backend/internal/app/storage/memory"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newFixture(t *testing.T) (*Service, *memory.Store, building.Building) {
	t.Helper()
	store := memory.New()
	svc := New(store, store, store, store, nil)

	bld, err := store.CreateBuilding(context.Background(), building.Building{Address: "zh.k. Mladost 3, bl. 325", Entrance: "A"})
	if err != nil {
		t.Fatalf("create building: %v", err)
	}
	return svc, store, bld
}

func TestListApartmentDebtGrouping(t *testing.T) {
	svc, store, bld := newFixture(t)
	ctx := context.Background()

	floors := []int{5, 5, 4, 4, 4}
	numbers := []string{"15", "16", "12", "13", "14"}
	apartments := make([]building.Apartment, 0, len(floors))
	for i := range floors {
		apt, err := store.CreateApartment(ctx, building.Apartment{
			BuildingID: bld.ID, Number: numbers[i], Floor: floors[i],
		})
		if err != nil {
			t.Fatalf("create apartment: %v", err)
		}
		apartments = append(apartments, apt)
	}

	owner, err := store.CreateUserWithProfile(ctx, user.User{Email: "r@example.com", Role: user.RoleUser, Active: true}, user.Profile{})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	statuses := []finance.PaymentStatus{
		finance.PaymentPending, finance.PaymentPaid,
		finance.PaymentOverdue, finance.PaymentPaid, finance.PaymentPaid,
	}
	for i, apt := range apartments {
		_, err := store.CreatePayment(ctx, finance.Payment{
			UserID: owner.ID, ApartmentID: apt.ID,
			Amount: dec("30.00"), Status: statuses[i],
		})
		if err != nil {
			t.Fatalf("create payment: %v", err)
		}
	}

	groups, err := svc.ListApartmentDebt(ctx, bld.ID)
	if err != nil {
		t.Fatalf("list apartment debt: %v", err)
	}

	if len(groups) != 2 || groups[0].Floor != 5 || groups[1].Floor != 4 {
		t.Fatalf("unexpected floor grouping: %+v", groups)
	}
	if groups[0].Apartments[0].Status != finance.PaymentPending {
		t.Fatalf("apartment 15 status = %s, want pending", groups[0].Apartments[0].Status)
	}
	if groups[1].Apartments[0].Status != finance.PaymentOverdue {
		t.Fatalf("apartment 12 status = %s, want overdue", groups[1].Apartments[0].Status)
	}
	if got := groups[1].Apartments[0].AmountDue.StringFixed(2); got != "30.00" {
		t.Fatalf("apartment 12 due = %s, want 30.00", got)
	}
}

func TestListApartmentDebtUnknownBuilding(t *testing.T) {
	svc, _, _ := newFixture(t)
	if _, err := svc.ListApartmentDebt(context.Background(), 9999); !apperrors.Is(err, apperrors.CodeNotFound) {
		t.Fatalf("error = %v, want not found", err)
	}
}

func TestCreateApartmentDuplicateNumber(t *testing.T) {
	svc, _, bld := newFixture(t)
	ctx := context.Background()

	if _, err := svc.CreateApartment(ctx, building.Apartment{BuildingID: bld.ID, Number: "12", Floor: 4}); err != nil {
		t.Fatalf("first apartment: %v", err)
	}
	_, err := svc.CreateApartment(ctx, building.Apartment{BuildingID: bld.ID, Number: "12", Floor: 5})
	if !apperrors.Is(err, apperrors.CodeValidation) {
		t.Fatalf("duplicate number error = %v, want validation error", err)
	}
}

func TestDeleteBuildingWithApartments(t *testing.T) {
	svc, store, bld := newFixture(t)
	ctx := context.Background()

	if _, err := store.CreateApartment(ctx, building.Apartment{BuildingID: bld.ID, Number: "1"}); err != nil {
		t.Fatalf("create apartment: %v", err)
	}
	if err := svc.Delete(ctx, bld.ID); !apperrors.Is(err, apperrors.CodeValidation) {
		t.Fatalf("delete error = %v, want validation error", err)
	}
	if _, err := svc.Get(ctx, bld.ID); err != nil {
		t.Fatalf("building should survive a rejected delete: %v", err)
	}

	empty, err := store.CreateBuilding(ctx, building.Building{Address: "elsewhere"})
	if err != nil {
		t.Fatalf("create building: %v", err)
	}
	if err := svc.Delete(ctx, empty.ID); err != nil {
		t.Fatalf("delete empty building: %v", err)
	}
}

func TestCreateMaintenanceValidation(t *testing.T) {
	svc, _, bld := newFixture(t)
	ctx := context.Background()

	_, err := svc.CreateMaintenance(ctx, finance.MaintenanceRecord{BuildingID: bld.ID, Date: time.Now()})
	if !apperrors.Is(err, apperrors.CodeValidation) {
		t.Fatalf("missing description error = %v, want validation error", err)
	}

	rec, err := svc.CreateMaintenance(ctx, finance.MaintenanceRecord{
		BuildingID:  bld.ID,
		Date:        time.Now(),
		Description: "elevator inspection",
		Cost:        dec("120.00"),
	})
	if err != nil {
		t.Fatalf("create maintenance: %v", err)
	}
	if rec.Status != finance.MaintenancePlanned {
		t.Fatalf("default status = %s, want planned", rec.Status)
	}

	records, err := svc.ListMaintenance(ctx, bld.ID)
	if err != nil {
		t.Fatalf("list maintenance: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
}

func TestResidentRoster(t *testing.T) {
	svc, store, bld := newFixture(t)
	ctx := context.Background()

	resident, err := store.CreateUserWithProfile(ctx,
		user.User{Email: "r@example.com", FullName: "Resident", Role: user.RoleUser, Active: true},
		user.Profile{AccountManager: "Maria", ClientNumber: "CL-100"})
	if err != nil {
		t.Fatalf("create resident: %v", err)
	}
	homeless, err := store.CreateUserWithProfile(ctx,
		user.User{Email: "h@example.com", FullName: "No Apartment", Role: user.RoleUser, Active: true},
		user.Profile{})
	if err != nil {
		t.Fatalf("create second user: %v", err)
	}

	apt, err := store.CreateApartment(ctx, building.Apartment{BuildingID: bld.ID, Number: "7", Floor: 2, UserID: &resident.ID})
	if err != nil {
		t.Fatalf("create apartment: %v", err)
	}

	for _, p := range []finance.Payment{
		{UserID: resident.ID, ApartmentID: apt.ID, Amount: dec("30.00"), Status: finance.PaymentPending},
		{UserID: resident.ID, ApartmentID: apt.ID, Amount: dec("45.50"), Status: finance.PaymentOverdue},
		{UserID: resident.ID, ApartmentID: apt.ID, Amount: dec("30.00"), Status: finance.PaymentPaid},
	} {
		if _, err := store.CreatePayment(ctx, p); err != nil {
			t.Fatalf("create payment: %v", err)
		}
	}

	roster, err := svc.ResidentRoster(ctx)
	if err != nil {
		t.Fatalf("roster: %v", err)
	}
	if len(roster) != 2 {
		t.Fatalf("roster size = %d, want 2", len(roster))
	}

	first := roster[0]
	if first.User.ID != resident.ID {
		t.Fatalf("roster[0] = user %d, want %d", first.User.ID, resident.ID)
	}
	if first.Apartment == nil || first.Apartment.Number != "7" {
		t.Fatalf("roster[0] apartment = %+v", first.Apartment)
	}
	if first.Building == nil || first.Building.ID != bld.ID {
		t.Fatalf("roster[0] building = %+v", first.Building)
	}
	if first.Profile == nil || first.Profile.ClientNumber != "CL-100" {
		t.Fatalf("roster[0] profile = %+v", first.Profile)
	}
	if got := first.TotalDebt.StringFixed(2); got != "75.50" {
		t.Fatalf("roster[0] debt = %s, want 75.50", got)
	}

	second := roster[1]
	if second.User.ID != homeless.ID || second.Apartment != nil {
		t.Fatalf("roster[1] = %+v", second)
	}
	if got := second.TotalDebt.StringFixed(2); got != "0.00" {
		t.Fatalf("roster[1] debt = %s, want 0.00", got)
	}
}
