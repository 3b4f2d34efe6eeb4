// Package api defines the wire request and response shapes shared by the
// REST and RPC surfaces. Both adapters encode these structs as JSON, which
// keeps the two surfaces semantically identical by construction. All nullable
// and decimal fields are resolved to explicit strings here, at the boundary,
// never inside the aggregation logic.
package api

import (
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/domunity/backend/internal/errors"

	"github.com/domunity/backend/internal/app/aggregate"
	"github.com/domunity/backend/internal/app/domain/building"
	"github.com/domunity/backend/internal/app/domain/event"
	"github.com/domunity/backend/internal/app/domain/finance"
	"github.com/domunity/backend/internal/app/domain/user"
	"github.com/domunity/backend/internal/app/services/buildings"
	"github.com/domunity/backend/internal/app/services/health"
	"github.com/domunity/backend/internal/app/services/users"
)

const dateLayout = "2006-01-02"

// --- requests ---------------------------------------------------------------

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type UpdateProfileRequest struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

type ContactFormRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type OfferFormRequest struct {
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	City           string `json:"city"`
	NumProperties  int    `json:"num_properties"`
	Address        string `json:"address"`
	AdditionalInfo string `json:"additional_info"`
}

type PresentationFormRequest struct {
	Date           string `json:"date"`
	BuildingType   string `json:"building_type"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	Address        string `json:"address"`
	AdditionalInfo string `json:"additional_info"`
}

type CreateEventRequest struct {
	Date        string `json:"date"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type CreateMaintenanceRequest struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Cost        string `json:"cost"`
	Status      string `json:"status"`
}

// --- responses --------------------------------------------------------------

// UserSummary is the public projection of a user. The password hash never
// appears on the wire.
type UserSummary struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

type LoginResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         UserSummary `json:"user"`
}

type RegisterResponse struct {
	UserID int64 `json:"user_id"`
}

type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ProfileResponse struct {
	User            UserSummary `json:"user"`
	AccountManager  string      `json:"account_manager"`
	Balance         string      `json:"balance"`
	ClientNumber    string      `json:"client_number"`
	ContractEndDate string      `json:"contract_end_date,omitempty"`
}

type BuildingResponse struct {
	ID              int64  `json:"id"`
	Address         string `json:"address"`
	Entrance        string `json:"entrance"`
	TotalApartments int    `json:"total_apartments"`
	TotalResidents  int    `json:"total_residents"`
}

type ApartmentResponse struct {
	ID         int64  `json:"id"`
	BuildingID int64  `json:"building_id"`
	Number     string `json:"number"`
	Floor      int    `json:"floor"`
	Type       string `json:"type"`
	Residents  int    `json:"residents"`
}

type PaymentResponse struct {
	ID       int64  `json:"id"`
	Amount   string `json:"amount"`
	Period   string `json:"period"`
	Status   string `json:"status"`
	PaidDate string `json:"paid_date,omitempty"`
}

type LastPaymentResponse struct {
	Amount string `json:"amount"`
	Date   string `json:"date,omitempty"`
}

type PaymentSummaryResponse struct {
	YearlyTotal  string               `json:"yearly_total"`
	PendingTotal string               `json:"pending_total"`
	OverdueTotal string               `json:"overdue_total"`
	LastPayment  *LastPaymentResponse `json:"last_payment,omitempty"`
	Payments     []PaymentResponse    `json:"payments"`
}

type EventResponse struct {
	ID          int64  `json:"id"`
	BuildingID  int64  `json:"building_id"`
	Date        string `json:"date"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type ApartmentViewResponse struct {
	Apartment ApartmentResponse      `json:"apartment"`
	Building  BuildingResponse       `json:"building"`
	Events    []EventResponse        `json:"events"`
	Summary   PaymentSummaryResponse `json:"summary"`
}

type ApartmentDebtResponse struct {
	Apartment ApartmentResponse `json:"apartment"`
	AmountDue string            `json:"amount_due"`
	Status    string            `json:"status"`
}

type FloorGroupResponse struct {
	Floor      int                     `json:"floor"`
	Apartments []ApartmentDebtResponse `json:"apartments"`
}

type BuildingApartmentsResponse struct {
	BuildingID int64                `json:"building_id"`
	Floors     []FloorGroupResponse `json:"floors"`
}

type MaintenanceResponse struct {
	ID          int64  `json:"id"`
	BuildingID  int64  `json:"building_id"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Cost        string `json:"cost"`
	Status      string `json:"status"`
}

type ApartmentReportResponse struct {
	Apartment             ApartmentResponse `json:"apartment"`
	Period                string            `json:"period"`
	ElevatorGTP           string            `json:"elevator_gtp"`
	ElevatorElectricity   string            `json:"elevator_electricity"`
	CommonAreaElectricity string            `json:"common_area_electricity"`
	ElevatorMaintenance   string            `json:"elevator_maintenance"`
	ManagementFee         string            `json:"management_fee"`
	RepairFund            string            `json:"repair_fund"`
	TotalDue              string            `json:"total_due"`
}

type FinancialReportResponse struct {
	BuildingID int64                     `json:"building_id"`
	TotalDue   string                    `json:"total_due"`
	Apartments []ApartmentReportResponse `json:"apartments"`
}

type ResidentResponse struct {
	User      UserSummary        `json:"user"`
	Apartment *ApartmentResponse `json:"apartment,omitempty"`
	Building  *BuildingResponse  `json:"building,omitempty"`
	Profile   *ProfileResponse   `json:"profile,omitempty"`
	TotalDebt string             `json:"total_debt"`
}

type ResidentListResponse struct {
	Residents []ResidentResponse `json:"residents"`
}

type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	Database      string `json:"database"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Goroutines    int    `json:"goroutines"`
	MemoryRSS     uint64 `json:"memory_rss"`
	Timestamp     string `json:"timestamp"`
}

// --- mappers ----------------------------------------------------------------

func NewUserSummary(u user.User) UserSummary {
	return UserSummary{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Phone:    u.Phone,
		Role:     string(u.Role),
	}
}

func NewProfileResponse(view users.ProfileView) ProfileResponse {
	resp := ProfileResponse{
		User:           NewUserSummary(view.User),
		AccountManager: view.Profile.AccountManager,
		Balance:        aggregate.FormatAmount(view.Profile.Balance),
		ClientNumber:   view.Profile.ClientNumber,
	}
	if view.Profile.ContractEndDate != nil {
		resp.ContractEndDate = view.Profile.ContractEndDate.Format(dateLayout)
	}
	return resp
}

func NewBuildingResponse(b building.Building) BuildingResponse {
	return BuildingResponse(b)
}

func NewApartmentResponse(apt building.Apartment) ApartmentResponse {
	return ApartmentResponse{
		ID:         apt.ID,
		BuildingID: apt.BuildingID,
		Number:     apt.Number,
		Floor:      apt.Floor,
		Type:       apt.Type,
		Residents:  apt.Residents,
	}
}

func NewPaymentSummaryResponse(summary aggregate.UserSummary) PaymentSummaryResponse {
	resp := PaymentSummaryResponse{
		YearlyTotal:  aggregate.FormatAmount(summary.YearlyTotal),
		PendingTotal: aggregate.FormatAmount(summary.PendingTotal),
		OverdueTotal: aggregate.FormatAmount(summary.OverdueTotal),
		Payments:     make([]PaymentResponse, 0, len(summary.Payments)),
	}
	if summary.LastPayment != nil {
		last := &LastPaymentResponse{Amount: aggregate.FormatAmount(summary.LastPayment.Amount)}
		if summary.LastPayment.Date != nil {
			last.Date = summary.LastPayment.Date.Format(dateLayout)
		}
		resp.LastPayment = last
	}
	for _, line := range summary.Payments {
		p := PaymentResponse{
			ID:     line.ID,
			Amount: aggregate.FormatAmount(line.Amount),
			Period: line.Period,
			Status: string(line.Status),
		}
		if line.PaidDate != nil {
			p.PaidDate = line.PaidDate.Format(dateLayout)
		}
		resp.Payments = append(resp.Payments, p)
	}
	return resp
}

func NewEventResponse(ev event.Event) EventResponse {
	return EventResponse{
		ID:          ev.ID,
		BuildingID:  ev.BuildingID,
		Date:        ev.Date.Format(dateLayout),
		Title:       ev.Title,
		Description: ev.Description,
	}
}

func NewEventListResponse(events []event.Event) []EventResponse {
	result := make([]EventResponse, 0, len(events))
	for _, ev := range events {
		result = append(result, NewEventResponse(ev))
	}
	return result
}

func NewApartmentViewResponse(view users.ApartmentView) ApartmentViewResponse {
	return ApartmentViewResponse{
		Apartment: NewApartmentResponse(view.Apartment),
		Building:  NewBuildingResponse(view.Building),
		Events:    NewEventListResponse(view.Events),
		Summary:   NewPaymentSummaryResponse(view.Summary),
	}
}

func NewBuildingApartmentsResponse(buildingID int64, groups []aggregate.FloorGroup) BuildingApartmentsResponse {
	resp := BuildingApartmentsResponse{
		BuildingID: buildingID,
		Floors:     make([]FloorGroupResponse, 0, len(groups)),
	}
	for _, group := range groups {
		floor := FloorGroupResponse{
			Floor:      group.Floor,
			Apartments: make([]ApartmentDebtResponse, 0, len(group.Apartments)),
		}
		for _, apt := range group.Apartments {
			floor.Apartments = append(floor.Apartments, ApartmentDebtResponse{
				Apartment: NewApartmentResponse(apt.Apartment),
				AmountDue: aggregate.FormatAmount(apt.AmountDue),
				Status:    string(apt.Status),
			})
		}
		resp.Floors = append(resp.Floors, floor)
	}
	return resp
}

func NewMaintenanceResponse(rec finance.MaintenanceRecord) MaintenanceResponse {
	return MaintenanceResponse{
		ID:          rec.ID,
		BuildingID:  rec.BuildingID,
		Date:        rec.Date.Format(dateLayout),
		Description: rec.Description,
		Cost:        aggregate.FormatAmount(rec.Cost),
		Status:      string(rec.Status),
	}
}

func NewMaintenanceListResponse(records []finance.MaintenanceRecord) []MaintenanceResponse {
	result := make([]MaintenanceResponse, 0, len(records))
	for _, rec := range records {
		result = append(result, NewMaintenanceResponse(rec))
	}
	return result
}

func NewFinancialReportResponse(buildingID int64, report aggregate.BuildingReport) FinancialReportResponse {
	resp := FinancialReportResponse{
		BuildingID: buildingID,
		TotalDue:   aggregate.FormatAmount(report.TotalDue),
		Apartments: make([]ApartmentReportResponse, 0, len(report.Apartments)),
	}
	for _, apt := range report.Apartments {
		resp.Apartments = append(resp.Apartments, ApartmentReportResponse{
			Apartment:             NewApartmentResponse(apt.Apartment),
			Period:                apt.Breakdown.Period,
			ElevatorGTP:           aggregate.FormatAmount(apt.Breakdown.ElevatorGTP),
			ElevatorElectricity:   aggregate.FormatAmount(apt.Breakdown.ElevatorElectricity),
			CommonAreaElectricity: aggregate.FormatAmount(apt.Breakdown.CommonAreaElectricity),
			ElevatorMaintenance:   aggregate.FormatAmount(apt.Breakdown.ElevatorMaintenance),
			ManagementFee:         aggregate.FormatAmount(apt.Breakdown.ManagementFee),
			RepairFund:            aggregate.FormatAmount(apt.Breakdown.RepairFund),
			TotalDue:              aggregate.FormatAmount(apt.Breakdown.TotalDue),
		})
	}
	return resp
}

func NewResidentListResponse(roster []buildings.ResidentDebt) ResidentListResponse {
	resp := ResidentListResponse{Residents: make([]ResidentResponse, 0, len(roster))}
	for _, entry := range roster {
		resident := ResidentResponse{
			User:      NewUserSummary(entry.User),
			TotalDebt: aggregate.FormatAmount(entry.TotalDebt),
		}
		if entry.Apartment != nil {
			apt := NewApartmentResponse(*entry.Apartment)
			resident.Apartment = &apt
		}
		if entry.Building != nil {
			bld := NewBuildingResponse(*entry.Building)
			resident.Building = &bld
		}
		if entry.Profile != nil {
			profile := ProfileResponse{
				User:           NewUserSummary(entry.User),
				AccountManager: entry.Profile.AccountManager,
				Balance:        aggregate.FormatAmount(entry.Profile.Balance),
				ClientNumber:   entry.Profile.ClientNumber,
			}
			if entry.Profile.ContractEndDate != nil {
				profile.ContractEndDate = entry.Profile.ContractEndDate.Format(dateLayout)
			}
			resident.Profile = &profile
		}
		resp.Residents = append(resp.Residents, resident)
	}
	return resp
}

func NewHealthResponse(status health.Status) HealthResponse {
	return HealthResponse{
		Status:        status.Status,
		Version:       status.Version,
		Database:      status.Database,
		UptimeSeconds: status.UptimeSeconds,
		Goroutines:    status.Goroutines,
		MemoryRSS:     status.MemoryRSS,
		Timestamp:     status.Timestamp.Format(time.RFC3339),
	}
}

// ParseDate parses the wire date format used by event and maintenance
// payloads.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(dateLayout, value)
}

// NewMaintenanceRecord validates a maintenance payload and converts it into
// the domain record. An empty cost defaults to zero.
func NewMaintenanceRecord(buildingID int64, req CreateMaintenanceRequest) (finance.MaintenanceRecord, error) {
	date, err := ParseDate(req.Date)
	if err != nil {
		return finance.MaintenanceRecord{}, apperrors.Validation("invalid date, expected YYYY-MM-DD")
	}
	cost := decimal.Zero
	if req.Cost != "" {
		cost, err = decimal.NewFromString(req.Cost)
		if err != nil {
			return finance.MaintenanceRecord{}, apperrors.Validation("invalid cost amount")
		}
	}
	return finance.MaintenanceRecord{
		BuildingID:  buildingID,
		Date:        date,
		Description: req.Description,
		Cost:        cost,
		Status:      finance.MaintenanceStatus(req.Status),
	}, nil
}
