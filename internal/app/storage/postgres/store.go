// Package postgres implements the storage interfaces on PostgreSQL using
// sqlx. Every query scans into a typed row struct; driver errors are
// classified into the storage sentinel errors before they leave this package.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/domunity/backend/internal/app/domain/building"
	"github.com/domunity/backend/internal/app/domain/contact"
	"github.com/domunity/backend/internal/app/domain/event"
	"github.com/domunity/backend/internal/app/domain/finance"
	"github.com/domunity/backend/internal/app/domain/user"
	"github.com/domunity/backend/internal/app/storage"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sqlx.DB
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.BuildingStore = (*Store)(nil)
var _ storage.PaymentStore = (*Store)(nil)
var _ storage.MaintenanceStore = (*Store)(nil)
var _ storage.FinancialRecordStore = (*Store)(nil)
var _ storage.EventStore = (*Store)(nil)
var _ storage.ContactStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// classifyError maps driver errors onto the storage sentinels.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return storage.ErrDuplicate
		case pqForeignKeyViolation:
			return storage.ErrHasDependents
		}
	}
	return err
}

// --- row types --------------------------------------------------------------

type userRow struct {
	ID           int64          `db:"id"`
	Email        string         `db:"email"`
	PasswordHash string         `db:"password_hash"`
	FullName     string         `db:"full_name"`
	Phone        sql.NullString `db:"phone"`
	Role         string         `db:"role"`
	Active       bool           `db:"is_active"`
	CreatedAt    time.Time      `db:"created_at"`
}

func (r userRow) toDomain() user.User {
	return user.User{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		FullName:     r.FullName,
		Phone:        r.Phone.String,
		Role:         user.Role(r.Role),
		Active:       r.Active,
		CreatedAt:    r.CreatedAt,
	}
}

type profileRow struct {
	UserID          int64           `db:"user_id"`
	AccountManager  sql.NullString  `db:"account_manager"`
	Balance         decimal.Decimal `db:"balance"`
	ClientNumber    sql.NullString  `db:"client_number"`
	ContractEndDate sql.NullTime    `db:"contract_end_date"`
}

func (r profileRow) toDomain() user.Profile {
	p := user.Profile{
		UserID:         r.UserID,
		AccountManager: r.AccountManager.String,
		Balance:        r.Balance,
		ClientNumber:   r.ClientNumber.String,
	}
	if r.ContractEndDate.Valid {
		d := r.ContractEndDate.Time
		p.ContractEndDate = &d
	}
	return p
}

type buildingRow struct {
	ID              int64  `db:"id"`
	Address         string `db:"address"`
	Entrance        string `db:"entrance"`
	TotalApartments int    `db:"total_apartments"`
	TotalResidents  int    `db:"total_residents"`
}

func (r buildingRow) toDomain() building.Building {
	return building.Building(r)
}

type apartmentRow struct {
	ID         int64         `db:"id"`
	BuildingID int64         `db:"building_id"`
	Number     string        `db:"number"`
	Floor      int           `db:"floor"`
	Type       string        `db:"type"`
	Residents  int           `db:"residents"`
	UserID     sql.NullInt64 `db:"user_id"`
}

func (r apartmentRow) toDomain() building.Apartment {
	apt := building.Apartment{
		ID:         r.ID,
		BuildingID: r.BuildingID,
		Number:     r.Number,
		Floor:      r.Floor,
		Type:       r.Type,
		Residents:  r.Residents,
	}
	if r.UserID.Valid {
		id := r.UserID.Int64
		apt.UserID = &id
	}
	return apt
}

type paymentRow struct {
	ID          int64           `db:"id"`
	UserID      int64           `db:"user_id"`
	ApartmentID int64           `db:"apartment_id"`
	Amount      decimal.Decimal `db:"amount"`
	Period      string          `db:"period"`
	Status      string          `db:"status"`
	PaidDate    sql.NullTime    `db:"paid_date"`
	CreatedAt   time.Time       `db:"created_at"`
}

func (r paymentRow) toDomain() finance.Payment {
	p := finance.Payment{
		ID:          r.ID,
		UserID:      r.UserID,
		ApartmentID: r.ApartmentID,
		Amount:      r.Amount,
		Period:      r.Period,
		Status:      finance.PaymentStatus(r.Status),
		CreatedAt:   r.CreatedAt,
	}
	if r.PaidDate.Valid {
		d := r.PaidDate.Time
		p.PaidDate = &d
	}
	return p
}

type maintenanceRow struct {
	ID          int64           `db:"id"`
	BuildingID  int64           `db:"building_id"`
	Date        time.Time       `db:"date"`
	Description string          `db:"description"`
	Cost        decimal.Decimal `db:"cost"`
	Status      string          `db:"status"`
}

func (r maintenanceRow) toDomain() finance.MaintenanceRecord {
	return finance.MaintenanceRecord{
		ID:          r.ID,
		BuildingID:  r.BuildingID,
		Date:        r.Date,
		Description: r.Description,
		Cost:        r.Cost,
		Status:      finance.MaintenanceStatus(r.Status),
	}
}

type financialRecordRow struct {
	ID                    int64           `db:"id"`
	ApartmentID           int64           `db:"apartment_id"`
	Period                string          `db:"period"`
	ElevatorGTP           decimal.Decimal `db:"elevator_gtp"`
	ElevatorElectricity   decimal.Decimal `db:"elevator_electricity"`
	CommonAreaElectricity decimal.Decimal `db:"common_area_electricity"`
	ElevatorMaintenance   decimal.Decimal `db:"elevator_maintenance"`
	ManagementFee         decimal.Decimal `db:"management_fee"`
	RepairFund            decimal.Decimal `db:"repair_fund"`
	TotalDue              decimal.Decimal `db:"total_due"`
	CreatedAt             time.Time       `db:"created_at"`
}

func (r financialRecordRow) toDomain() finance.Record {
	return finance.Record(r)
}

type eventRow struct {
	ID          int64     `db:"id"`
	BuildingID  int64     `db:"building_id"`
	Date        time.Time `db:"date"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r eventRow) toDomain() event.Event {
	return event.Event(r)
}

// --- UserStore --------------------------------------------------------------

func (s *Store) CreateUserWithProfile(ctx context.Context, u user.User, p user.Profile) (user.User, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return user.User{}, err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowxContext(ctx, `
		INSERT INTO users (email, password_hash, full_name, phone, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, u.Email, u.PasswordHash, u.FullName, u.Phone, string(u.Role), u.Active)
	if err := row.Scan(&u.ID, &u.CreatedAt); err != nil {
		return user.User{}, classifyError(err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_profiles (user_id, account_manager, balance, client_number, contract_end_date)
		VALUES ($1, $2, $3, $4, $5)
	`, u.ID, p.AccountManager, p.Balance, p.ClientNumber, toNullTime(p.ContractEndDate))
	if err != nil {
		return user.User{}, classifyError(err)
	}

	if err := tx.Commit(); err != nil {
		return user.User{}, err
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (user.User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row, `
		SELECT id, email, password_hash, full_name, phone, role, is_active, created_at
		FROM users
		WHERE id = $1
	`, id)
	if err != nil {
		return user.User{}, classifyError(err)
	}
	return row.toDomain(), nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row, `
		SELECT id, email, password_hash, full_name, phone, role, is_active, created_at
		FROM users
		WHERE lower(email) = lower($1)
	`, email)
	if err != nil {
		return user.User{}, classifyError(err)
	}
	return row.toDomain(), nil
}

func (s *Store) UpdateUser(ctx context.Context, u user.User) (user.User, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET full_name = $2, phone = $3, role = $4, is_active = $5
		WHERE id = $1
	`, u.ID, u.FullName, u.Phone, string(u.Role), u.Active)
	if err != nil {
		return user.User{}, classifyError(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return user.User{}, storage.ErrNotFound
	}
	return s.GetUser(ctx, u.ID)
}

func (s *Store) ListUsers(ctx context.Context) ([]user.User, error) {
	var rows []userRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, email, password_hash, full_name, phone, role, is_active, created_at
		FROM users
		ORDER BY id
	`)
	if err != nil {
		return nil, classifyError(err)
	}
	result := make([]user.User, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toDomain())
	}
	return result, nil
}

func (s *Store) GetProfile(ctx context.Context, userID int64) (user.Profile, error) {
	var row profileRow
	err := s.db.GetContext(ctx, &row, `
		SELECT user_id, account_manager, balance, client_number, contract_end_date
		FROM user_profiles
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return user.Profile{}, classifyError(err)
	}
	return row.toDomain(), nil
}

// --- BuildingStore ----------------------------------------------------------

func (s *Store) CreateBuilding(ctx context.Context, b building.Building) (building.Building, error) {
	row := s.db.QueryRowxContext(ctx, `
		INSERT INTO buildings (address, entrance, total_apartments, total_residents)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, b.Address, b.Entrance, b.TotalApartments, b.TotalResidents)
	if err := row.Scan(&b.ID); err != nil {
		return building.Building{}, classifyError(err)
	}
	return b, nil
}

func (s *Store) GetBuilding(ctx context.Context, id int64) (building.Building, error) {
	var row buildingRow
	err := s.db.GetContext(ctx, &row, `
		SELECT id, address, entrance, total_apartments, total_residents
		FROM buildings
		WHERE id = $1
	`, id)
	if err != nil {
		return building.Building{}, classifyError(err)
	}
	return row.toDomain(), nil
}

func (s *Store) DeleteBuilding(ctx context.Context, id int64) error {
	// Apartments reference buildings with ON DELETE RESTRICT, so the driver
	// rejects the delete while dependents exist.
	result, err := s.db.ExecContext(ctx, `DELETE FROM buildings WHERE id = $1`, id)
	if err != nil {
		return classifyError(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) CreateApartment(ctx context.Context, apt building.Apartment) (building.Apartment, error) {
	row := s.db.QueryRowxContext(ctx, `
		INSERT INTO apartments (building_id, number, floor, type, residents, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, apt.BuildingID, apt.Number, apt.Floor, apt.Type, apt.Residents, toNullInt64(apt.UserID))
	if err := row.Scan(&apt.ID); err != nil {
		return building.Apartment{}, classifyError(err)
	}
	return apt, nil
}

func (s *Store) ListApartments(ctx context.Context, buildingID int64) ([]building.Apartment, error) {
	var rows []apartmentRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, building_id, number, floor, type, residents, user_id
		FROM apartments
		WHERE building_id = $1
		ORDER BY id
	`, buildingID)
	if err != nil {
		return nil, classifyError(err)
	}
	result := make([]building.Apartment, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toDomain())
	}
	return result, nil
}

func (s *Store) GetApartmentByUser(ctx context.Context, userID int64) (building.Apartment, error) {
	var row apartmentRow
	err := s.db.GetContext(ctx, &row, `
		SELECT id, building_id, number, floor, type, residents, user_id
		FROM apartments
		WHERE user_id = $1
		ORDER BY id
		LIMIT 1
	`, userID)
	if err != nil {
		return building.Apartment{}, classifyError(err)
	}
	return row.toDomain(), nil
}

// --- PaymentStore -----------------------------------------------------------

func (s *Store) CreatePayment(ctx context.Context, p finance.Payment) (finance.Payment, error) {
	row := s.db.QueryRowxContext(ctx, `
		INSERT INTO payments (user_id, apartment_id, amount, period, status, paid_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, p.UserID, p.ApartmentID, p.Amount, p.Period, string(p.Status), toNullTime(p.PaidDate))
	if err := row.Scan(&p.ID, &p.CreatedAt); err != nil {
		return finance.Payment{}, classifyError(err)
	}
	return p, nil
}

func (s *Store) ListPaymentsByUser(ctx context.Context, userID int64) ([]finance.Payment, error) {
	var rows []paymentRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, apartment_id, amount, period, status, paid_date, created_at
		FROM payments
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, classifyError(err)
	}
	result := make([]finance.Payment, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toDomain())
	}
	return result, nil
}

func (s *Store) ListPaymentsByBuilding(ctx context.Context, buildingID int64) ([]finance.Payment, error) {
	var rows []paymentRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT p.id, p.user_id, p.apartment_id, p.amount, p.period, p.status, p.paid_date, p.created_at
		FROM payments p
		JOIN apartments a ON a.id = p.apartment_id
		WHERE a.building_id = $1
		ORDER BY p.created_at DESC, p.id DESC
	`, buildingID)
	if err != nil {
		return nil, classifyError(err)
	}
	result := make([]finance.Payment, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toDomain())
	}
	return result, nil
}

// --- MaintenanceStore -------------------------------------------------------

func (s *Store) CreateMaintenance(ctx context.Context, rec finance.MaintenanceRecord) (finance.MaintenanceRecord, error) {
	row := s.db.QueryRowxContext(ctx, `
		INSERT INTO maintenance_records (building_id, date, description, cost, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, rec.BuildingID, rec.Date, rec.Description, rec.Cost, string(rec.Status))
	if err := row.Scan(&rec.ID); err != nil {
		return finance.MaintenanceRecord{}, classifyError(err)
	}
	return rec, nil
}

func (s *Store) ListMaintenance(ctx context.Context, buildingID int64) ([]finance.MaintenanceRecord, error) {
	var rows []maintenanceRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, building_id, date, description, cost, status
		FROM maintenance_records
		WHERE building_id = $1
		ORDER BY date DESC, id DESC
	`, buildingID)
	if err != nil {
		return nil, classifyError(err)
	}
	result := make([]finance.MaintenanceRecord, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toDomain())
	}
	return result, nil
}

// --- FinancialRecordStore ---------------------------------------------------

func (s *Store) CreateFinancialRecord(ctx context.Context, rec finance.Record) (finance.Record, error) {
	row := s.db.QueryRowxContext(ctx, `
		INSERT INTO financial_records (
			apartment_id, period, elevator_gtp, elevator_electricity,
			common_area_electricity, elevator_maintenance, management_fee,
			repair_fund, total_due
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`, rec.ApartmentID, rec.Period, rec.ElevatorGTP, rec.ElevatorElectricity,
		rec.CommonAreaElectricity, rec.ElevatorMaintenance, rec.ManagementFee,
		rec.RepairFund, rec.TotalDue)
	if err := row.Scan(&rec.ID, &rec.CreatedAt); err != nil {
		return finance.Record{}, classifyError(err)
	}
	return rec, nil
}

func (s *Store) ListLatestRecords(ctx context.Context, buildingID int64) ([]finance.Record, error) {
	var rows []financialRecordRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT DISTINCT ON (fr.apartment_id)
			fr.id, fr.apartment_id, fr.period, fr.elevator_gtp,
			fr.elevator_electricity, fr.common_area_electricity,
			fr.elevator_maintenance, fr.management_fee, fr.repair_fund,
			fr.total_due, fr.created_at
		FROM financial_records fr
		JOIN apartments a ON a.id = fr.apartment_id
		WHERE a.building_id = $1
		ORDER BY fr.apartment_id, fr.created_at DESC, fr.id DESC
	`, buildingID)
	if err != nil {
		return nil, classifyError(err)
	}
	result := make([]finance.Record, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toDomain())
	}
	return result, nil
}

// --- EventStore -------------------------------------------------------------

func (s *Store) CreateEvent(ctx context.Context, ev event.Event) (event.Event, error) {
	row := s.db.QueryRowxContext(ctx, `
		INSERT INTO events (building_id, date, title, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, ev.BuildingID, ev.Date, ev.Title, ev.Description)
	if err := row.Scan(&ev.ID, &ev.CreatedAt); err != nil {
		return event.Event{}, classifyError(err)
	}
	return ev, nil
}

func (s *Store) ListEvents(ctx context.Context, buildingID int64, limit int) ([]event.Event, error) {
	query := `
		SELECT id, building_id, date, title, description, created_at
		FROM events
		WHERE building_id = $1
		ORDER BY date DESC, id DESC
	`
	args := []interface{}{buildingID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	var rows []eventRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, classifyError(err)
	}
	result := make([]event.Event, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toDomain())
	}
	return result, nil
}

// --- ContactStore -----------------------------------------------------------

func (s *Store) CreateContactRequest(ctx context.Context, req contact.Request) (contact.Request, error) {
	row := s.db.QueryRowxContext(ctx, `
		INSERT INTO contact_requests (name, phone, email, message, type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, req.Name, req.Phone, req.Email, req.Message, string(req.Type))
	if err := row.Scan(&req.ID, &req.CreatedAt); err != nil {
		return contact.Request{}, classifyError(err)
	}
	return req, nil
}

// --- helpers ----------------------------------------------------------------

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func toNullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
