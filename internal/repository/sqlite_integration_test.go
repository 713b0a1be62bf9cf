package repository_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"expense_tracker/internal/config"
	"expense_tracker/internal/models"
	"expense_tracker/internal/repository"
	"expense_tracker/internal/repository/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// SQLiteSuite runs the repositories against a real migrated SQLite file.
type SQLiteSuite struct {
	suite.Suite
	repos *repository.Repository
	close func() error
	ctx   context.Context
}

func (s *SQLiteSuite) SetupTest() {
	conn, err := db.Open(config.DBConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(s.T().TempDir(), "ledger.db"),
	})
	require.NoError(s.T(), err)
	s.repos = repository.NewRepository(conn)
	s.close = conn.Close
	s.ctx = context.Background()
}

func (s *SQLiteSuite) TearDownTest() {
	if s.close != nil {
		_ = s.close()
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *SQLiteSuite) mustUser(name, email string) int64 {
	id, err := s.repos.Users.Create(s.ctx, models.User{Username: name, Email: email, PasswordHash: "x"})
	require.NoError(s.T(), err)
	return id
}

func (s *SQLiteSuite) mustExpense(e models.Expense) int64 {
	id, err := s.repos.Expenses.Insert(s.ctx, e)
	require.NoError(s.T(), err)
	return id
}

func (s *SQLiteSuite) TestDuplicateEmailIsRejected() {
	s.mustUser("ana", "ana@example.com")

	_, err := s.repos.Users.Create(s.ctx, models.User{Username: "ana2", Email: "ana@example.com", PasswordHash: "y"})
	assert.True(s.T(), errors.Is(err, repository.ErrDuplicate), "got %v", err)

	u, err := s.repos.Users.GetByEmail(s.ctx, "ana@example.com")
	require.NoError(s.T(), err)
	require.NotNil(s.T(), u)
	assert.Equal(s.T(), "ana", u.Username)
}

func (s *SQLiteSuite) TestListIsPerUserAndNewestFirst() {
	ana := s.mustUser("ana", "ana@example.com")
	ben := s.mustUser("ben", "ben@example.com")

	s.mustExpense(models.Expense{UserID: ana, Description: "old", AmountCents: 100, Category: "personal", Date: date(2024, 1, 5)})
	s.mustExpense(models.Expense{UserID: ana, Description: "new", AmountCents: 200, Category: "business", Date: date(2024, 3, 1)})
	s.mustExpense(models.Expense{UserID: ben, Description: "other", AmountCents: 300, Category: "personal", Date: date(2024, 2, 1)})

	all, err := s.repos.Expenses.List(s.ctx, ana, time.Time{}, time.Time{})
	require.NoError(s.T(), err)
	require.Len(s.T(), all, 2)
	assert.Equal(s.T(), "new", all[0].Description)
	assert.Equal(s.T(), "old", all[1].Description)

	feb, err := s.repos.Expenses.List(s.ctx, ana, date(2024, 1, 5), date(2024, 2, 29))
	require.NoError(s.T(), err)
	require.Len(s.T(), feb, 1)
	assert.Equal(s.T(), "old", feb[0].Description)
}

func (s *SQLiteSuite) TestPaymentsDueAndSweepQuery() {
	ana := s.mustUser("ana", "ana@example.com")
	ben := s.mustUser("ben", "ben@example.com")
	d3, d2, d8, d9 := date(2024, 6, 3), date(2024, 6, 2), date(2024, 6, 8), date(2024, 6, 9)

	s.mustExpense(models.Expense{UserID: ana, Description: "later", AmountCents: 1, Category: "personal", Date: date(2024, 5, 1), PaymentDate: &d3})
	s.mustExpense(models.Expense{UserID: ana, Description: "tomorrow", AmountCents: 2, Category: "personal", Date: date(2024, 5, 1), PaymentDate: &d2})
	s.mustExpense(models.Expense{UserID: ana, Description: "outside", AmountCents: 3, Category: "personal", Date: date(2024, 5, 1), PaymentDate: &d9})
	s.mustExpense(models.Expense{UserID: ana, Description: "last day", AmountCents: 6, Category: "personal", Date: date(2024, 5, 1), PaymentDate: &d8})
	s.mustExpense(models.Expense{UserID: ana, Description: "no due", AmountCents: 4, Category: "personal", Date: date(2024, 6, 2)})
	s.mustExpense(models.Expense{UserID: ben, Description: "ben tomorrow", AmountCents: 5, Category: "business", Date: date(2024, 5, 1), PaymentDate: &d2})

	due, err := s.repos.Expenses.ListPaymentsDue(s.ctx, ana, date(2024, 6, 1), date(2024, 6, 8))
	require.NoError(s.T(), err)
	require.Len(s.T(), due, 3)
	assert.Equal(s.T(), "tomorrow", due[0].Description)
	assert.Equal(s.T(), "later", due[1].Description)
	assert.Equal(s.T(), "last day", due[2].Description)

	sweep, err := s.repos.Expenses.DueOn(s.ctx, d2)
	require.NoError(s.T(), err)
	require.Len(s.T(), sweep, 2)
	assert.Equal(s.T(), "ana@example.com", sweep[0].Email)
	assert.Equal(s.T(), "ben@example.com", sweep[1].Email)
}

func (s *SQLiteSuite) TestSumByCategory() {
	ana := s.mustUser("ana", "ana@example.com")
	s.mustExpense(models.Expense{UserID: ana, AmountCents: 1000, Category: "personal", Date: date(2024, 1, 1)})
	s.mustExpense(models.Expense{UserID: ana, AmountCents: 500, Category: "personal", Date: date(2024, 1, 2)})
	s.mustExpense(models.Expense{UserID: ana, AmountCents: 2000, Category: "business", Date: date(2024, 1, 3)})

	totals, err := s.repos.Expenses.SumByCategory(s.ctx, ana)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []models.CategoryTotal{
		{Category: "business", AmountCents: 2000},
		{Category: "personal", AmountCents: 1500},
	}, totals)

	empty, err := s.repos.Expenses.SumByCategory(s.ctx, 999)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), empty)
}

func (s *SQLiteSuite) TestSessionLifecycle() {
	ana := s.mustUser("ana", "ana@example.com")
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(s.T(), s.repos.Sessions.Create(s.ctx, models.Session{
		Token: "live", UserID: ana, Username: "ana", ExpiresAt: now.Add(time.Hour), LastActivity: now,
	}))
	require.NoError(s.T(), s.repos.Sessions.Create(s.ctx, models.Session{
		Token: "stale", UserID: ana, Username: "ana", ExpiresAt: now.Add(-time.Minute), LastActivity: now.Add(-time.Hour),
	}))

	got, err := s.repos.Sessions.Get(s.ctx, "live", now)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), got)

	stale, err := s.repos.Sessions.Get(s.ctx, "stale", now)
	require.NoError(s.T(), err)
	assert.Nil(s.T(), stale)

	n, err := s.repos.Sessions.DeleteExpired(s.ctx, now)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(1), n)

	require.NoError(s.T(), s.repos.Sessions.Delete(s.ctx, "live"))
	require.NoError(s.T(), s.repos.Sessions.Delete(s.ctx, "live"))
}

func TestSQLiteSuite(t *testing.T) {
	suite.Run(t, new(SQLiteSuite))
}
