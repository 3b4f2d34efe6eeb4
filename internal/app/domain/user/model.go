package user

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role distinguishes residents from building administrators.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a registered resident or administrator.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	FullName     string
	Phone        string
	Role         Role
	Active       bool
	CreatedAt    time.Time
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Profile carries the per-user account data maintained by the management
// company. Balance is signed: negative means credit, positive means owed.
type Profile struct {
	UserID          int64
	AccountManager  string
	Balance         decimal.Decimal
	ClientNumber    string
	ContractEndDate *time.Time
}
