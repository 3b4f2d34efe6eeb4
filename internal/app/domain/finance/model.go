package finance

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus tracks a payment through its lifecycle. Transitions from
// pending to paid or overdue happen outside this service.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentOverdue PaymentStatus = "overdue"
)

// Payment is one billing-cycle charge against a resident.
type Payment struct {
	ID          int64
	UserID      int64
	ApartmentID int64
	Amount      decimal.Decimal
	Period      string
	Status      PaymentStatus
	PaidDate    *time.Time
	CreatedAt   time.Time
}

// MaintenanceStatus tracks planned versus completed building work.
type MaintenanceStatus string

const (
	MaintenancePlanned   MaintenanceStatus = "planned"
	MaintenanceCompleted MaintenanceStatus = "completed"
)

// MaintenanceRecord is a building-level maintenance entry created by staff.
type MaintenanceRecord struct {
	ID          int64
	BuildingID  int64
	Date        time.Time
	Description string
	Cost        decimal.Decimal
	Status      MaintenanceStatus
}

// Record is the monthly cost breakdown for an apartment. Missing components
// default to zero when a report is assembled.
type Record struct {
	ID                    int64
	ApartmentID           int64
	Period                string
	ElevatorGTP           decimal.Decimal
	ElevatorElectricity   decimal.Decimal
	CommonAreaElectricity decimal.Decimal
	ElevatorMaintenance   decimal.Decimal
	ManagementFee         decimal.Decimal
	RepairFund            decimal.Decimal
	TotalDue              decimal.Decimal
	CreatedAt             time.Time
}
