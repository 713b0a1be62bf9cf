package service

import (
	"context"
	"sort"
	"time"

	"expense_tracker/internal/models"
)

// upcomingWindow is how far ahead the dashboard lists payments.
const upcomingWindow = 7 * 24 * time.Hour

// DashboardService derives the dashboard view from the ledger. It produces data
// only; chart rendering happens at the presentation boundary.
type DashboardService struct {
	ledger Ledger
}

func NewDashboardService(ledger Ledger) *DashboardService {
	return &DashboardService{ledger: ledger}
}

// MonthBounds returns the first and last calendar day of ref's month.
func MonthBounds(ref time.Time) (time.Time, time.Time) {
	ref = DateOf(ref)
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	// day 0 of the next month is the last day of this one
	last := time.Date(ref.Year(), ref.Month()+1, 0, 0, 0, 0, 0, time.UTC)
	return first, last
}

// BuildDashboard gathers current-month expenses, payments due in the next
// seven days and per-category totals.
func (s *DashboardService) BuildDashboard(ctx context.Context, userID int64, ref time.Time) (models.Dashboard, error) {
	ref = DateOf(ref)
	first, last := MonthBounds(ref)

	d := models.Dashboard{ReferenceDate: ref, MonthStart: first, MonthEnd: last}

	month, err := s.ledger.ListExpensesInRange(ctx, userID, first, last)
	if err != nil {
		return d, err
	}
	d.MonthExpenses = month
	for _, e := range month {
		d.MonthTotalCents += e.AmountCents
	}

	upcoming, err := s.ledger.ListUpcomingPayments(ctx, userID, ref, ref.Add(upcomingWindow))
	if err != nil {
		return d, err
	}
	d.UpcomingPayments = upcoming

	sums, err := s.ledger.SumByCategory(ctx, userID)
	if err != nil {
		return d, err
	}
	d.CategoryTotals = sortedTotals(sums)
	return d, nil
}

func sortedTotals(sums map[string]int64) []models.CategoryTotal {
	out := make([]models.CategoryTotal, 0, len(sums))
	for c, cents := range sums {
		out = append(out, models.CategoryTotal{Category: c, AmountCents: cents})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}
