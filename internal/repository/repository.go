package repository

import (
	"context"
	"database/sql"
	"time"

	"expense_tracker/internal/models"
)

type Users interface {
	Create(ctx context.Context, u models.User) (int64, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Expenses is the ledger store. Zero time bounds mean "unbounded".
type Expenses interface {
	Insert(ctx context.Context, e models.Expense) (int64, error)
	List(ctx context.Context, userID int64, from, to time.Time) ([]models.Expense, error)
	ListPaymentsDue(ctx context.Context, userID int64, from, to time.Time) ([]models.Expense, error)
	SumByCategory(ctx context.Context, userID int64) ([]models.CategoryTotal, error)
	DueOn(ctx context.Context, day time.Time) ([]models.DuePayment, error)
}

type Sessions interface {
	Create(ctx context.Context, s models.Session) error
	Get(ctx context.Context, token string, now time.Time) (*models.Session, error)
	Renew(ctx context.Context, token string, expiresAt, lastActivity time.Time) error
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type Repository struct {
	Users    Users
	Expenses Expenses
	Sessions Sessions
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Users:    NewUserRepository(db),
		Expenses: NewExpenseRepository(db),
		Sessions: NewSessionRepository(db),
	}
}
