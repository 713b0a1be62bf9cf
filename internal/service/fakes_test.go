package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"expense_tracker/internal/models"
	"expense_tracker/internal/repository"
)

// memUsers is an in-memory repository.Users.
type memUsers struct {
	mu      sync.Mutex
	users   []models.User
	err     error
	created int
}

func (m *memUsers) Create(ctx context.Context, u models.User) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return 0, repository.ErrDuplicate
		}
	}
	u.ID = int64(len(m.users) + 1)
	m.users = append(m.users, u)
	m.created++
	return u.ID, nil
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

// memExpenses is an in-memory repository.Expenses with the same ordering rules as SQL.
type memExpenses struct {
	mu    sync.Mutex
	rows  []models.Expense
	users map[int64]models.User
	err   error
}

func newMemExpenses(users ...models.User) *memExpenses {
	m := &memExpenses{users: map[int64]models.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *memExpenses) Insert(ctx context.Context, e models.Expense) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	e.ID = int64(len(m.rows) + 1)
	m.rows = append(m.rows, e)
	return e.ID, nil
}

func within(d, from, to time.Time) bool {
	if !from.IsZero() && d.Before(from) {
		return false
	}
	if !to.IsZero() && d.After(to) {
		return false
	}
	return true
}

func (m *memExpenses) List(ctx context.Context, userID int64, from, to time.Time) ([]models.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []models.Expense
	for _, e := range m.rows {
		if e.UserID == userID && within(e.Date, from, to) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *memExpenses) ListPaymentsDue(ctx context.Context, userID int64, from, to time.Time) ([]models.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []models.Expense
	for _, e := range m.rows {
		if e.UserID == userID && e.PaymentDate != nil && within(*e.PaymentDate, from, to) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PaymentDate.Equal(*out[j].PaymentDate) {
			return out[i].PaymentDate.Before(*out[j].PaymentDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memExpenses) SumByCategory(ctx context.Context, userID int64) ([]models.CategoryTotal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	sums := map[string]int64{}
	for _, e := range m.rows {
		if e.UserID == userID {
			sums[e.Category] += e.AmountCents
		}
	}
	var out []models.CategoryTotal
	for c, v := range sums {
		out = append(out, models.CategoryTotal{Category: c, AmountCents: v})
	}
	return out, nil
}

func (m *memExpenses) DueOn(ctx context.Context, day time.Time) ([]models.DuePayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []models.DuePayment
	for _, e := range m.rows {
		if e.PaymentDate == nil || !e.PaymentDate.Equal(day) {
			continue
		}
		u := m.users[e.UserID]
		out = append(out, models.DuePayment{
			ExpenseID:   e.ID,
			UserID:      e.UserID,
			Username:    u.Username,
			Email:       u.Email,
			Description: e.Description,
			AmountCents: e.AmountCents,
			PaymentDate: *e.PaymentDate,
		})
	}
	return out, nil
}

// memSessions is an in-memory repository.Sessions.
type memSessions struct {
	mu       sync.Mutex
	rows     map[string]models.Session
	err      error
	renewErr error
	renewed  int
}

func newMemSessions() *memSessions {
	return &memSessions{rows: map[string]models.Session{}}
}

func (m *memSessions) Create(ctx context.Context, s models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.rows[s.Token] = s
	return nil
}

func (m *memSessions) Get(ctx context.Context, token string, now time.Time) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	s, ok := m.rows[token]
	if !ok || !s.ExpiresAt.After(now) {
		return nil, nil
	}
	return &s, nil
}

func (m *memSessions) Renew(ctx context.Context, token string, expiresAt, lastActivity time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.renewErr != nil {
		return m.renewErr
	}
	s := m.rows[token]
	s.ExpiresAt, s.LastActivity = expiresAt, lastActivity
	m.rows[token] = s
	m.renewed++
	return nil
}

func (m *memSessions) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.rows, token)
	return nil
}

func (m *memSessions) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	var n int64
	for k, s := range m.rows {
		if !s.ExpiresAt.After(now) {
			delete(m.rows, k)
			n++
		}
	}
	return n, nil
}

// recordingDispatcher remembers each send and fails for addresses in failFor.
type recordingDispatcher struct {
	mu      sync.Mutex
	sent    []sentMail
	failFor map[string]error
}

type sentMail struct {
	To, Subject, Body string
}

func (d *recordingDispatcher) Send(ctx context.Context, to, subject, body string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.failFor[to]; err != nil {
		return err
	}
	d.sent = append(d.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func day(s string) time.Time {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(s string) *time.Time {
	t := day(s)
	return &t
}
