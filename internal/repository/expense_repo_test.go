package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"expense_tracker/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

var expenseColumns = []string{"id", "user_id", "description", "amount_cents", "category", "incurred_on", "payment_due_on"}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestExpenseRepository_Insert_WithAndWithoutPaymentDate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewExpenseRepository(db)

	due := day(2024, 6, 10)
	mock.ExpectExec(regexp.QuoteMeta(insertExpenseSQL)).
		WithArgs(int64(3), "rent", int64(120000), "personal", "2024-06-01", "2024-06-10", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertExpenseSQL)).
		WithArgs(int64(3), "coffee", int64(350), "business", "2024-06-02", nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(12, 1))

	id, err := repo.Insert(context.Background(), models.Expense{
		UserID: 3, Description: "rent", AmountCents: 120000, Category: "personal",
		Date: day(2024, 6, 1), PaymentDate: &due,
	})
	if err != nil || id != 11 {
		t.Fatalf("insert with due date: id=%d err=%v", id, err)
	}

	id, err = repo.Insert(context.Background(), models.Expense{
		UserID: 3, Description: "coffee", AmountCents: 350, Category: "business", Date: day(2024, 6, 2),
	})
	if err != nil || id != 12 {
		t.Fatalf("insert without due date: id=%d err=%v", id, err)
	}
}

func TestExpenseRepository_List_BuildsBounds(t *testing.T) {
	cases := []struct {
		name  string
		from  time.Time
		to    time.Time
		query string
		args  []driver.Value
	}{
		{
			name:  "unbounded",
			query: selectExpenseSQL + " WHERE user_id = ? ORDER BY incurred_on DESC, id DESC",
			args:  []driver.Value{int64(5)},
		},
		{
			name:  "both bounds",
			from:  day(2024, 2, 1),
			to:    day(2024, 2, 29),
			query: selectExpenseSQL + " WHERE user_id = ? AND incurred_on >= ? AND incurred_on <= ? ORDER BY incurred_on DESC, id DESC",
			args:  []driver.Value{int64(5), "2024-02-01", "2024-02-29"},
		},
		{
			name:  "lower bound only",
			from:  day(2024, 2, 1),
			query: selectExpenseSQL + " WHERE user_id = ? AND incurred_on >= ? ORDER BY incurred_on DESC, id DESC",
			args:  []driver.Value{int64(5), "2024-02-01"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock, cleanup := newMockDB(t)
			defer cleanup()
			repo := NewExpenseRepository(db)

			rows := sqlmock.NewRows(expenseColumns).
				AddRow(2, 5, "b", 200, "business", "2024-02-10", nil).
				AddRow(1, 5, "a", 100, "personal", "2024-02-03", "2024-03-01")
			mock.ExpectQuery(regexp.QuoteMeta(tc.query)).WithArgs(tc.args...).WillReturnRows(rows)

			got, err := repo.List(context.Background(), 5, tc.from, tc.to)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(got) != 2 {
				t.Fatalf("expected 2 rows, got %d", len(got))
			}
			if got[0].PaymentDate != nil {
				t.Fatalf("expected nil payment date for first row, got %v", got[0].PaymentDate)
			}
			if got[1].PaymentDate == nil || !got[1].PaymentDate.Equal(day(2024, 3, 1)) {
				t.Fatalf("unexpected payment date: %v", got[1].PaymentDate)
			}
			if !got[0].Date.Equal(day(2024, 2, 10)) {
				t.Fatalf("unexpected date: %v", got[0].Date)
			}
		})
	}
}

func TestExpenseRepository_ListPaymentsDue(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewExpenseRepository(db)

	rows := sqlmock.NewRows(expenseColumns).
		AddRow(4, 9, "insurance", 5000, "business", "2024-05-20", "2024-06-03")
	mock.ExpectQuery(regexp.QuoteMeta(selectPaymentsDueSQL)).
		WithArgs(int64(9), "2024-06-01", "2024-06-08").
		WillReturnRows(rows)

	got, err := repo.ListPaymentsDue(context.Background(), 9, day(2024, 6, 1), day(2024, 6, 8))
	if err != nil {
		t.Fatalf("ListPaymentsDue: %v", err)
	}
	if len(got) != 1 || got[0].ID != 4 || !got[0].PaymentDate.Equal(day(2024, 6, 3)) {
		t.Fatalf("unexpected rows: %+v", got)
	}
}

func TestExpenseRepository_SumByCategory(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewExpenseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(sumByCategorySQL)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"category", "sum"}).
			AddRow("business", "2000").
			AddRow("personal", 1500))

	got, err := repo.SumByCategory(context.Background(), 1)
	if err != nil {
		t.Fatalf("SumByCategory: %v", err)
	}
	want := []models.CategoryTotal{{Category: "business", AmountCents: 2000}, {Category: "personal", AmountCents: 1500}}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestExpenseRepository_DueOn(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewExpenseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(selectDueOnSQL)).
		WithArgs("2024-06-02").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "username", "email", "description", "amount_cents", "payment_due_on"}).
			AddRow(1, 1, "ana", "ana@example.com", "rent", 90000, "2024-06-02").
			AddRow(2, 2, "ben", "ben@example.com", "phone", 2599, "2024-06-02"))

	got, err := repo.DueOn(context.Background(), day(2024, 6, 2))
	if err != nil {
		t.Fatalf("DueOn: %v", err)
	}
	if len(got) != 2 || got[1].Email != "ben@example.com" || got[1].AmountCents != 2599 {
		t.Fatalf("unexpected rows: %+v", got)
	}
}

func TestExpenseRepository_QueryErrorIsWrapped(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewExpenseRepository(db)

	boom := errors.New("connection reset")
	mock.ExpectQuery(regexp.QuoteMeta(selectPaymentsDueSQL)).WillReturnError(boom)

	_, err := repo.ListPaymentsDue(context.Background(), 1, day(2024, 1, 1), day(2024, 1, 8))
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped driver error, got %v", err)
	}
}
