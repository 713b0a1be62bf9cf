package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"

// Expense categories.
const (
	CategoryPersonal = "personal"
	CategoryBusiness = "business"
)

// Categories lists the accepted expense categories in display order.
var Categories = []string{CategoryPersonal, CategoryBusiness}

// Expense is a single ledger row. Date and PaymentDate are calendar dates at UTC midnight.
type Expense struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	Description string     `json:"description"`
	AmountCents int64      `json:"amount_cents"`
	Category    string     `json:"category"`   // personal | business
	Date        time.Time  `json:"date"`       // incurred
	PaymentDate *time.Time `json:"payment_date,omitempty"`
}

// Amount returns the expense amount as a decimal with two fractional digits.
func (e Expense) Amount() decimal.Decimal {
	return CentsToDecimal(e.AmountCents)
}

// CentsToDecimal converts integer cents into a decimal amount.
func CentsToDecimal(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// DuePayment is an expense joined with its owner, as seen by the reminder sweep.
type DuePayment struct {
	ExpenseID   int64
	UserID      int64
	Username    string
	Email       string
	Description string
	AmountCents int64
	PaymentDate time.Time
}

// CategoryTotal is the summed amount of one category.
type CategoryTotal struct {
	Category    string `json:"category"`
	AmountCents int64  `json:"amount_cents"`
}
