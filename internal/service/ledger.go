package service

import (
	"context"
	"strings"
	"time"

	"expense_tracker/internal/models"
	"expense_tracker/internal/repository"

	"github.com/shopspring/decimal"
)

const maxDescriptionLen = 255

// maxAmount keeps cents well inside int64 and the BIGINT column.
var maxAmount = decimal.New(1, 13)

// ExpenseInput is the raw, unvalidated form of a new expense.
type ExpenseInput struct {
	Description string
	Amount      string
	Category    string
	Date        string
	PaymentDate string // optional
}

// LedgerService owns writes and queries over the expense ledger.
type LedgerService struct {
	expenses repository.Expenses
}

func NewLedgerService(expenses repository.Expenses) *LedgerService {
	return &LedgerService{expenses: expenses}
}

// AddExpense validates the input and writes a single row. Nothing is written
// when validation fails.
func (s *LedgerService) AddExpense(ctx context.Context, userID int64, in ExpenseInput) (int64, error) {
	e, err := in.toExpense(userID)
	if err != nil {
		return 0, err
	}
	id, err := s.expenses.Insert(ctx, e)
	if err != nil {
		return 0, storageErr("add expense", err)
	}
	return id, nil
}

// ListExpensesInRange returns the user's expenses newest first. Zero bounds
// are open; both zero means the full history.
func (s *LedgerService) ListExpensesInRange(ctx context.Context, userID int64, from, to time.Time) ([]models.Expense, error) {
	from, to = DateOf(from), DateOf(to)
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, invalid("start_date", "must not be after end_date")
	}
	out, err := s.expenses.List(ctx, userID, from, to)
	if err != nil {
		return nil, storageErr("list expenses", err)
	}
	return out, nil
}

// ListUpcomingPayments returns expenses with a payment date in [from, to], earliest first.
func (s *LedgerService) ListUpcomingPayments(ctx context.Context, userID int64, from, to time.Time) ([]models.Expense, error) {
	from, to = DateOf(from), DateOf(to)
	if from.After(to) {
		return nil, invalid("from", "must not be after to")
	}
	out, err := s.expenses.ListPaymentsDue(ctx, userID, from, to)
	if err != nil {
		return nil, storageErr("list upcoming payments", err)
	}
	return out, nil
}

// SumByCategory maps category to total cents over the user's whole history.
func (s *LedgerService) SumByCategory(ctx context.Context, userID int64) (map[string]int64, error) {
	totals, err := s.expenses.SumByCategory(ctx, userID)
	if err != nil {
		return nil, storageErr("sum by category", err)
	}
	out := make(map[string]int64, len(totals))
	for _, t := range totals {
		out[t.Category] += t.AmountCents
	}
	return out, nil
}

func (in ExpenseInput) toExpense(userID int64) (models.Expense, error) {
	desc := strings.TrimSpace(in.Description)
	if len(desc) > maxDescriptionLen {
		return models.Expense{}, invalid("description", "is too long")
	}

	cents, err := ParseAmount(in.Amount)
	if err != nil {
		return models.Expense{}, err
	}

	category := strings.ToLower(strings.TrimSpace(in.Category))
	if !isCategory(category) {
		return models.Expense{}, invalid("type", "must be one of "+strings.Join(models.Categories, ", "))
	}

	if strings.TrimSpace(in.Date) == "" {
		return models.Expense{}, invalid("date", "is required")
	}
	date, err := ParseDate("date", in.Date)
	if err != nil {
		return models.Expense{}, err
	}

	e := models.Expense{
		UserID:      userID,
		Description: desc,
		AmountCents: cents,
		Category:    category,
		Date:        date,
	}
	if strings.TrimSpace(in.PaymentDate) != "" {
		due, err := ParseDate("payment_date", in.PaymentDate)
		if err != nil {
			return models.Expense{}, err
		}
		e.PaymentDate = &due
	}
	return e, nil
}

// ParseAmount reads a non-negative decimal ("12.34" or "12,34") into cents,
// rounding half away from zero past the second fractional digit.
func ParseAmount(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0, invalid("amount", "is required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, invalid("amount", "is not a number")
	}
	if d.IsNegative() {
		return 0, invalid("amount", "must not be negative")
	}
	if d.GreaterThanOrEqual(maxAmount) {
		return 0, invalid("amount", "is too large")
	}
	return d.Round(2).Shift(2).IntPart(), nil
}

// ParseDate parses a YYYY-MM-DD value for the named field.
func ParseDate(field, s string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, invalid(field, "must be a date in YYYY-MM-DD format")
	}
	return t, nil
}

// ParseOptionalDate is ParseDate that maps an empty value to the zero time.
func ParseOptionalDate(field, s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, nil
	}
	return ParseDate(field, s)
}

// DateOf truncates t to its calendar date at UTC midnight, keeping zero as zero.
func DateOf(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func isCategory(c string) bool {
	for _, known := range models.Categories {
		if c == known {
			return true
		}
	}
	return false
}
