package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/domunity/backend/internal/app/domain/building"
	"github.com/domunity/backend/internal/app/domain/finance"
)

func TestListMaintenanceOrderedByDate(t *testing.T) {
	store := New()
	ctx := context.Background()

	bld, err := store.CreateBuilding(ctx, building.Building{Address: "test"})
	if err != nil {
		t.Fatalf("create building: %v", err)
	}

	// Inserted out of date order on purpose.
	for _, date := range []string{"2026-03-01", "2026-01-01", "2026-02-01"} {
		day, err := time.Parse("2006-01-02", date)
		if err != nil {
			t.Fatalf("parse date: %v", err)
		}
		if _, err := store.CreateMaintenance(ctx, finance.MaintenanceRecord{
			BuildingID: bld.ID,
			Date:       day,
			Cost:       decimal.Zero,
		}); err != nil {
			t.Fatalf("create maintenance: %v", err)
		}
	}

	records, err := store.ListMaintenance(ctx, bld.ID)
	if err != nil {
		t.Fatalf("list maintenance: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("listed %d records, want 3", len(records))
	}
	for i := 1; i < len(records); i++ {
		if records[i].Date.After(records[i-1].Date) {
			t.Fatalf("records out of order: %s before %s",
				records[i-1].Date.Format("2006-01-02"), records[i].Date.Format("2006-01-02"))
		}
	}
	if got := records[0].Date.Format("2006-01-02"); got != "2026-03-01" {
		t.Fatalf("newest record dated %s, want 2026-03-01", got)
	}
}
