package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"expense_tracker/internal/models"
)

type ExpenseRepository struct {
	db *sql.DB
}

func NewExpenseRepository(db *sql.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

var _ Expenses = (*ExpenseRepository)(nil)

const (
	insertExpenseSQL = `
		INSERT INTO expenses (user_id, description, amount_cents, category, incurred_on, payment_due_on, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	selectExpenseSQL = `SELECT id, user_id, description, amount_cents, category, incurred_on, payment_due_on FROM expenses`

	selectPaymentsDueSQL = selectExpenseSQL + `
		WHERE user_id = ? AND payment_due_on IS NOT NULL AND payment_due_on >= ? AND payment_due_on <= ?
		ORDER BY payment_due_on ASC, id ASC`

	sumByCategorySQL = `
		SELECT category, SUM(amount_cents) FROM expenses
		WHERE user_id = ?
		GROUP BY category
		ORDER BY category`

	selectDueOnSQL = `
		SELECT e.id, e.user_id, u.username, u.email, e.description, e.amount_cents, e.payment_due_on
		FROM expenses e
		JOIN users u ON e.user_id = u.id
		WHERE e.payment_due_on = ?
		ORDER BY e.id ASC`
)

// Insert writes one expense row and returns its ID.
func (r *ExpenseRepository) Insert(ctx context.Context, e models.Expense) (int64, error) {
	var due sql.NullString
	if e.PaymentDate != nil {
		due = sql.NullString{String: formatDate(*e.PaymentDate), Valid: true}
	}
	res, err := r.db.ExecContext(ctx, insertExpenseSQL,
		e.UserID,
		e.Description,
		e.AmountCents,
		e.Category,
		formatDate(e.Date),
		due,
		time.Now().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert expense for user %d: %w", e.UserID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id for expense: %w", err)
	}
	return id, nil
}

// List returns the user's expenses with incurred date in [from, to] (inclusive,
// zero bound = open), newest first.
func (r *ExpenseRepository) List(ctx context.Context, userID int64, from, to time.Time) ([]models.Expense, error) {
	conds := []string{"user_id = ?"}
	args := []any{userID}

	if !from.IsZero() {
		conds = append(conds, "incurred_on >= ?")
		args = append(args, formatDate(from))
	}
	if !to.IsZero() {
		conds = append(conds, "incurred_on <= ?")
		args = append(args, formatDate(to))
	}

	q := selectExpenseSQL + " WHERE " + strings.Join(conds, " AND ") + " ORDER BY incurred_on DESC, id DESC"

	out, err := r.query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses for user %d: %w", userID, err)
	}
	return out, nil
}

// ListPaymentsDue returns the user's expenses whose payment date falls in
// [from, to] inclusive, earliest payment first.
func (r *ExpenseRepository) ListPaymentsDue(ctx context.Context, userID int64, from, to time.Time) ([]models.Expense, error) {
	out, err := r.query(ctx, selectPaymentsDueSQL, userID, formatDate(from), formatDate(to))
	if err != nil {
		return nil, fmt.Errorf("list payments due for user %d: %w", userID, err)
	}
	return out, nil
}

// SumByCategory totals the user's whole history per category.
func (r *ExpenseRepository) SumByCategory(ctx context.Context, userID int64) ([]models.CategoryTotal, error) {
	rows, err := r.db.QueryContext(ctx, sumByCategorySQL, userID)
	if err != nil {
		return nil, fmt.Errorf("sum expenses for user %d: %w", userID, err)
	}
	defer rows.Close()

	out := make([]models.CategoryTotal, 0, len(models.Categories))
	for rows.Next() {
		var ct models.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.AmountCents); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		out = append(out, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category totals: %w", err)
	}
	return out, nil
}

// DueOn returns every expense, across all users, whose payment date is exactly day.
func (r *ExpenseRepository) DueOn(ctx context.Context, day time.Time) ([]models.DuePayment, error) {
	rows, err := r.db.QueryContext(ctx, selectDueOnSQL, formatDate(day))
	if err != nil {
		return nil, fmt.Errorf("select payments due on %s: %w", formatDate(day), err)
	}
	defer rows.Close()

	var out []models.DuePayment
	for rows.Next() {
		var (
			p   models.DuePayment
			due string
		)
		if err := rows.Scan(&p.ExpenseID, &p.UserID, &p.Username, &p.Email, &p.Description, &p.AmountCents, &due); err != nil {
			return nil, fmt.Errorf("scan due payment: %w", err)
		}
		if p.PaymentDate, err = parseDate(due); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate due payments: %w", err)
	}
	return out, nil
}

func (r *ExpenseRepository) query(ctx context.Context, q string, args ...any) ([]models.Expense, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Expense, 0, 16)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanExpense(rows *sql.Rows) (models.Expense, error) {
	var (
		e        models.Expense
		incurred string
		due      sql.NullString
	)
	if err := rows.Scan(&e.ID, &e.UserID, &e.Description, &e.AmountCents, &e.Category, &incurred, &due); err != nil {
		return models.Expense{}, fmt.Errorf("scan expense: %w", err)
	}
	d, err := parseDate(incurred)
	if err != nil {
		return models.Expense{}, err
	}
	e.Date = d
	if due.Valid && due.String != "" {
		pd, err := parseDate(due.String)
		if err != nil {
			return models.Expense{}, err
		}
		e.PaymentDate = &pd
	}
	return e, nil
}
