// Package aggregate turns raw payment and financial-record rows into the
// derived views served by the API: per-user summaries, floor-grouped building
// debt, financial reports and roster debt totals. All functions are pure and
// all currency math uses decimal arithmetic; binary floats are never
// accumulated.
package aggregate

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/domunity/backend/internal/app/domain/building"
	"github.com/domunity/backend/internal/app/domain/finance"
)

// PaymentLine echoes one payment back with its formatted amount.
type PaymentLine struct {
	ID       int64
	Amount   decimal.Decimal
	Period   string
	Status   finance.PaymentStatus
	PaidDate *time.Time
}

// LastPayment identifies the most recent settled payment.
type LastPayment struct {
	Amount decimal.Decimal
	Date   *time.Time
}

// UserSummary is the per-user financial summary.
type UserSummary struct {
	YearlyTotal  decimal.Decimal
	PendingTotal decimal.Decimal
	OverdueTotal decimal.Decimal
	LastPayment  *LastPayment
	Payments     []PaymentLine
}

// SummarizeUserPayments computes the per-user summary. The input must be
// ordered by creation time descending; the first paid row is therefore the
// most recent one.
func SummarizeUserPayments(payments []finance.Payment) UserSummary {
	summary := UserSummary{
		YearlyTotal:  decimal.Zero,
		PendingTotal: decimal.Zero,
		OverdueTotal: decimal.Zero,
		Payments:     make([]PaymentLine, 0, len(payments)),
	}

	for _, p := range payments {
		summary.YearlyTotal = summary.YearlyTotal.Add(p.Amount)
		switch p.Status {
		case finance.PaymentPending:
			summary.PendingTotal = summary.PendingTotal.Add(p.Amount)
		case finance.PaymentOverdue:
			summary.OverdueTotal = summary.OverdueTotal.Add(p.Amount)
		case finance.PaymentPaid:
			if summary.LastPayment == nil {
				summary.LastPayment = &LastPayment{Amount: p.Amount, Date: p.PaidDate}
			}
		}
		summary.Payments = append(summary.Payments, PaymentLine{
			ID:       p.ID,
			Amount:   p.Amount,
			Period:   p.Period,
			Status:   p.Status,
			PaidDate: p.PaidDate,
		})
	}
	return summary
}

// ApartmentDebt pairs an apartment with its outstanding amount and a
// tri-state debt status: overdue wins over pending, pending over paid.
type ApartmentDebt struct {
	Apartment building.Apartment
	AmountDue decimal.Decimal
	Status    finance.PaymentStatus
}

// FloorGroup holds the apartments of one floor, in their underlying order.
type FloorGroup struct {
	Floor      int
	Apartments []ApartmentDebt
}

// GroupApartmentDebt computes per-apartment dues and groups them by floor,
// floors sorted descending. Apartments keep their input order within a floor.
func GroupApartmentDebt(apartments []building.Apartment, paymentsByApartment map[int64][]finance.Payment) []FloorGroup {
	byFloor := make(map[int][]ApartmentDebt)
	floors := make([]int, 0)

	for _, apt := range apartments {
		debt := DebtForPayments(paymentsByApartment[apt.ID])
		debt.Apartment = apt
		if _, seen := byFloor[apt.Floor]; !seen {
			floors = append(floors, apt.Floor)
		}
		byFloor[apt.Floor] = append(byFloor[apt.Floor], debt)
	}

	sort.Sort(sort.Reverse(sort.IntSlice(floors)))

	groups := make([]FloorGroup, 0, len(floors))
	for _, floor := range floors {
		groups = append(groups, FloorGroup{Floor: floor, Apartments: byFloor[floor]})
	}
	return groups
}

// DebtForPayments computes the outstanding amount and tri-state status for a
// single payment set.
func DebtForPayments(payments []finance.Payment) ApartmentDebt {
	debt := ApartmentDebt{AmountDue: decimal.Zero, Status: finance.PaymentPaid}
	hasPending := false
	for _, p := range payments {
		switch p.Status {
		case finance.PaymentOverdue:
			debt.AmountDue = debt.AmountDue.Add(p.Amount)
			debt.Status = finance.PaymentOverdue
		case finance.PaymentPending:
			debt.AmountDue = debt.AmountDue.Add(p.Amount)
			hasPending = true
		}
	}
	if debt.Status != finance.PaymentOverdue && hasPending {
		debt.Status = finance.PaymentPending
	}
	return debt
}

// OutstandingTotal sums the pending and overdue amounts of a payment set.
// Used for the admin roster's per-resident debt column.
func OutstandingTotal(payments []finance.Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		if p.Status == finance.PaymentPending || p.Status == finance.PaymentOverdue {
			total = total.Add(p.Amount)
		}
	}
	return total
}

// ApartmentReport joins an apartment with its most recent cost breakdown.
// Apartments without a record get an all-zero breakdown.
type ApartmentReport struct {
	Apartment building.Apartment
	Breakdown finance.Record
}

// BuildingReport is the building-wide financial report.
type BuildingReport struct {
	Apartments []ApartmentReport
	TotalDue   decimal.Decimal
}

// BuildFinancialReport assembles the building report from apartments and
// their latest financial records. latestByApartment maps apartment ID to the
// most recent record; absent entries contribute zero to every component.
func BuildFinancialReport(apartments []building.Apartment, latestByApartment map[int64]finance.Record) BuildingReport {
	report := BuildingReport{
		Apartments: make([]ApartmentReport, 0, len(apartments)),
		TotalDue:   decimal.Zero,
	}
	for _, apt := range apartments {
		rec, ok := latestByApartment[apt.ID]
		if !ok {
			rec = zeroRecord(apt.ID)
		}
		report.Apartments = append(report.Apartments, ApartmentReport{Apartment: apt, Breakdown: rec})
		report.TotalDue = report.TotalDue.Add(rec.TotalDue)
	}
	return report
}

func zeroRecord(apartmentID int64) finance.Record {
	return finance.Record{
		ApartmentID:           apartmentID,
		ElevatorGTP:           decimal.Zero,
		ElevatorElectricity:   decimal.Zero,
		CommonAreaElectricity: decimal.Zero,
		ElevatorMaintenance:   decimal.Zero,
		ManagementFee:         decimal.Zero,
		RepairFund:            decimal.Zero,
		TotalDue:              decimal.Zero,
	}
}

// FormatAmount renders a currency value with two fraction digits.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
