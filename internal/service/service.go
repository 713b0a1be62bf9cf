package service

import (
	"context"
	"time"

	"expense_tracker/internal/logger"
	"expense_tracker/internal/models"
	"expense_tracker/internal/repository"
)

// Credentials registers users and verifies passwords.
type Credentials interface {
	Register(ctx context.Context, username, email, password string) (int64, error)
	Verify(ctx context.Context, email, password string) (*models.User, error)
}

// Sessions manages server-side login sessions.
type Sessions interface {
	StartSession(ctx context.Context, userID int64, username string) (*models.Session, error)
	ResolveSession(ctx context.Context, token string) (*models.Session, error)
	EndSession(ctx context.Context, token string) error
	CleanExpiredSessions(ctx context.Context) (int64, error)
}

// Ledger records expenses and answers range and aggregate queries.
type Ledger interface {
	AddExpense(ctx context.Context, userID int64, in ExpenseInput) (int64, error)
	ListExpensesInRange(ctx context.Context, userID int64, from, to time.Time) ([]models.Expense, error)
	ListUpcomingPayments(ctx context.Context, userID int64, from, to time.Time) ([]models.Expense, error)
	SumByCategory(ctx context.Context, userID int64) (map[string]int64, error)
}

// Dashboard builds the per-user summary around a reference date.
type Dashboard interface {
	BuildDashboard(ctx context.Context, userID int64, ref time.Time) (models.Dashboard, error)
}

// Reminders runs the payment reminder sweep.
type Reminders interface {
	RunDailySweep(ctx context.Context, today time.Time) (SweepResult, error)
}

// SweepAuth guards the externally triggered sweep.
type SweepAuth interface {
	IssueSweepToken(ttl time.Duration) (string, error)
	ParseSweepToken(raw string) error
}

// Scheduler runs background jobs until ctx is canceled.
type Scheduler interface {
	Run(ctx context.Context)
}

type Service struct {
	Credentials
	Sessions
	Ledger
	Dashboard
	Reminders
	SweepAuth
	Scheduler
}

// Options carries the non-repository dependencies of NewService.
type Options struct {
	Dispatcher  Dispatcher
	Log         *logger.Logger
	SessionTTL  time.Duration
	SweepSecret string
	Schedule    SchedulerOptions
}

// NewService wires the repository layer into concrete services.
func NewService(repos *repository.Repository, opts Options) *Service {
	ledger := NewLedgerService(repos.Expenses)
	sessions := NewSessionService(repos.Sessions, opts.SessionTTL, opts.Log)
	reminders := NewReminderService(repos.Expenses, opts.Dispatcher, opts.Log)

	return &Service{
		Credentials: NewCredentialService(repos.Users),
		Sessions:    sessions,
		Ledger:      ledger,
		Dashboard:   NewDashboardService(ledger),
		Reminders:   reminders,
		SweepAuth:   NewSweepTokenService(opts.SweepSecret),
		Scheduler:   NewSchedulerService(reminders, sessions, opts.Schedule, opts.Log),
	}
}
