package models

import "time"

// Dashboard is the aggregated view of a user's spending around a reference date.
type Dashboard struct {
	ReferenceDate    time.Time       `json:"reference_date"`
	MonthStart       time.Time       `json:"month_start"`
	MonthEnd         time.Time       `json:"month_end"`
	MonthExpenses    []Expense       `json:"month_expenses"`
	MonthTotalCents  int64           `json:"month_total_cents"`
	UpcomingPayments []Expense       `json:"upcoming_payments"`
	CategoryTotals   []CategoryTotal `json:"category_totals"`
}
