package aggregate

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/domunity/backend/internal/app/domain/building"
	"github.com/domunity/backend/internal/app/domain/finance"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestSummarizeUserPayments(t *testing.T) {
	paidDate := time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)
	// Ordered by creation time descending.
	payments := []finance.Payment{
		{ID: 3, Amount: dec("30.00"), Status: finance.PaymentPending},
		{ID: 2, Amount: dec("40.00"), Status: finance.PaymentPaid, PaidDate: &paidDate},
		{ID: 1, Amount: dec("30.00"), Status: finance.PaymentPaid},
	}

	summary := SummarizeUserPayments(payments)

	if got := summary.PendingTotal.StringFixed(2); got != "30.00" {
		t.Fatalf("pending total = %s, want 30.00", got)
	}
	if got := summary.OverdueTotal.StringFixed(2); got != "0.00" {
		t.Fatalf("overdue total = %s, want 0.00", got)
	}
	if got := summary.YearlyTotal.StringFixed(2); got != "100.00" {
		t.Fatalf("yearly total = %s, want 100.00", got)
	}
	if summary.LastPayment == nil {
		t.Fatal("expected a last payment")
	}
	if got := summary.LastPayment.Amount.StringFixed(2); got != "40.00" {
		t.Fatalf("last payment amount = %s, want 40.00", got)
	}
	if summary.LastPayment.Date == nil || !summary.LastPayment.Date.Equal(paidDate) {
		t.Fatalf("last payment date = %v, want %v", summary.LastPayment.Date, paidDate)
	}
	if len(summary.Payments) != 3 {
		t.Fatalf("echoed %d payments, want 3", len(summary.Payments))
	}
}

func TestSummarizeUserPaymentsEmpty(t *testing.T) {
	summary := SummarizeUserPayments(nil)
	if summary.LastPayment != nil {
		t.Fatal("expected no last payment")
	}
	if got := summary.YearlyTotal.StringFixed(2); got != "0.00" {
		t.Fatalf("yearly total = %s, want 0.00", got)
	}
}

func TestSummarizeUserPaymentsIdempotent(t *testing.T) {
	payments := []finance.Payment{
		{ID: 2, Amount: dec("12.34"), Status: finance.PaymentOverdue},
		{ID: 1, Amount: dec("56.78"), Status: finance.PaymentPending},
	}
	first := SummarizeUserPayments(payments)
	second := SummarizeUserPayments(payments)
	if !first.YearlyTotal.Equal(second.YearlyTotal) ||
		!first.PendingTotal.Equal(second.PendingTotal) ||
		!first.OverdueTotal.Equal(second.OverdueTotal) {
		t.Fatal("repeated summarization changed the totals")
	}
}

func TestSummarizeUserPaymentsNoFloatDrift(t *testing.T) {
	payments := make([]finance.Payment, 0, 10)
	for i := 0; i < 10; i++ {
		payments = append(payments, finance.Payment{Amount: dec("0.10"), Status: finance.PaymentPending})
	}
	summary := SummarizeUserPayments(payments)
	if got := summary.YearlyTotal.StringFixed(2); got != "1.00" {
		t.Fatalf("yearly total = %s, want exactly 1.00", got)
	}
}

func TestGroupApartmentDebt(t *testing.T) {
	apartments := []building.Apartment{
		{ID: 1, Floor: 5, Number: "15"},
		{ID: 2, Floor: 5, Number: "16"},
		{ID: 3, Floor: 4, Number: "12"},
		{ID: 4, Floor: 4, Number: "13"},
		{ID: 5, Floor: 4, Number: "14"},
	}
	payments := map[int64][]finance.Payment{
		1: {{Amount: dec("30.00"), Status: finance.PaymentPending}},
		2: {{Amount: dec("30.00"), Status: finance.PaymentPaid}},
		3: {{Amount: dec("45.50"), Status: finance.PaymentOverdue}},
		4: {},
		5: {{Amount: dec("30.00"), Status: finance.PaymentPaid}},
	}

	groups := GroupApartmentDebt(apartments, payments)

	if len(groups) != 2 {
		t.Fatalf("got %d floor groups, want 2", len(groups))
	}
	if groups[0].Floor != 5 || groups[1].Floor != 4 {
		t.Fatalf("floors ordered %d,%d, want 5,4", groups[0].Floor, groups[1].Floor)
	}
	if len(groups[0].Apartments) != 2 || len(groups[1].Apartments) != 3 {
		t.Fatalf("group sizes = %d,%d, want 2,3", len(groups[0].Apartments), len(groups[1].Apartments))
	}

	wantStatus := []finance.PaymentStatus{
		finance.PaymentPending, finance.PaymentPaid,
		finance.PaymentOverdue, finance.PaymentPaid, finance.PaymentPaid,
	}
	i := 0
	for _, group := range groups {
		for _, apt := range group.Apartments {
			if apt.Status != wantStatus[i] {
				t.Fatalf("apartment %d status = %s, want %s", apt.Apartment.ID, apt.Status, wantStatus[i])
			}
			i++
		}
	}

	if got := groups[1].Apartments[0].AmountDue.StringFixed(2); got != "45.50" {
		t.Fatalf("overdue apartment due = %s, want 45.50", got)
	}
}

func TestDebtForPaymentsStatusPrecedence(t *testing.T) {
	payments := []finance.Payment{
		{Amount: dec("10.00"), Status: finance.PaymentPending},
		{Amount: dec("20.00"), Status: finance.PaymentOverdue},
		{Amount: dec("30.00"), Status: finance.PaymentPaid},
	}
	debt := DebtForPayments(payments)
	if debt.Status != finance.PaymentOverdue {
		t.Fatalf("status = %s, want overdue", debt.Status)
	}
	if got := debt.AmountDue.StringFixed(2); got != "30.00" {
		t.Fatalf("amount due = %s, want 30.00", got)
	}
}

func TestBuildFinancialReport(t *testing.T) {
	apartments := []building.Apartment{
		{ID: 1, Number: "1"},
		{ID: 2, Number: "2"},
	}
	records := map[int64]finance.Record{
		1: {
			ApartmentID:   1,
			ManagementFee: dec("12.00"),
			RepairFund:    dec("8.00"),
			TotalDue:      dec("20.00"),
		},
	}

	report := BuildFinancialReport(apartments, records)

	if got := report.TotalDue.StringFixed(2); got != "20.00" {
		t.Fatalf("building total = %s, want 20.00", got)
	}
	missing := report.Apartments[1].Breakdown
	if got := missing.TotalDue.StringFixed(2); got != "0.00" {
		t.Fatalf("missing record total = %s, want 0.00", got)
	}
	if got := missing.ManagementFee.StringFixed(2); got != "0.00" {
		t.Fatalf("missing record management fee = %s, want 0.00", got)
	}
	// Components left unset on a stored record format as explicit zeros.
	present := report.Apartments[0].Breakdown
	if got := FormatAmount(present.ElevatorGTP); got != "0.00" {
		t.Fatalf("unset component = %s, want 0.00", got)
	}
	if got := FormatAmount(present.ElevatorElectricity); got != "0.00" {
		t.Fatalf("unset component = %s, want 0.00", got)
	}
}

func TestOutstandingTotal(t *testing.T) {
	payments := []finance.Payment{
		{Amount: dec("30.00"), Status: finance.PaymentPending},
		{Amount: dec("45.50"), Status: finance.PaymentOverdue},
		{Amount: dec("99.99"), Status: finance.PaymentPaid},
	}
	if got := OutstandingTotal(payments).StringFixed(2); got != "75.50" {
		t.Fatalf("outstanding = %s, want 75.50", got)
	}
}
