package core

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type (
	User struct {
		ID           int64
		Username     string
		PasswordHash string
	}

	Expense struct {
		ID          int64
		UserID      int64
		Date        string // calendar date as entered, usually YYYY-MM-DD
		Category    string
		Amount      decimal.Decimal
		Description string
	}

	Budget struct {
		ID     int64
		UserID int64
		Month  string // month name when the budget was first set
		Amount decimal.Decimal
	}
)

var (
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrDuplicateUsername    = errors.New("username already exists")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrNotFound             = errors.New("not found")
)

// Credentials is the username/password pair submitted on login and
// registration. Both are used exactly as submitted.
type Credentials struct {
	Username string
	Password string
}

// MonthLabel returns the label stamped on a newly created budget.
func MonthLabel(t time.Time) string {
	return t.Month().String()
}
