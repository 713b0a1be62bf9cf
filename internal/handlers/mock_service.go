package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"expense_tracker/internal/models"
	"expense_tracker/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockCredentials struct {
	registerID  int64
	registerErr error
	user        *models.User
	verifyErr   error

	lastRegister [3]string
	lastVerify   [2]string
}

func (m *mockCredentials) Register(ctx context.Context, username, email, password string) (int64, error) {
	m.lastRegister = [3]string{username, email, password}
	return m.registerID, m.registerErr
}

func (m *mockCredentials) Verify(ctx context.Context, email, password string) (*models.User, error) {
	m.lastVerify = [2]string{email, password}
	return m.user, m.verifyErr
}

// mockSessions knows exactly one valid token.
type mockSessions struct {
	token    string
	session  models.Session
	renewed  bool
	startErr error
	ended    []string
}

func (m *mockSessions) StartSession(ctx context.Context, userID int64, username string) (*models.Session, error) {
	if m.startErr != nil {
		return nil, m.startErr
	}
	return &models.Session{Token: "new-token", UserID: userID, Username: username}, nil
}

func (m *mockSessions) ResolveSession(ctx context.Context, token string) (*models.Session, error) {
	if token == "" || token != m.token {
		return nil, service.ErrNoSession
	}
	s := m.session
	s.Token = token
	s.Renewed = m.renewed
	return &s, nil
}

func (m *mockSessions) EndSession(ctx context.Context, token string) error {
	m.ended = append(m.ended, token)
	return nil
}

func (m *mockSessions) CleanExpiredSessions(ctx context.Context) (int64, error) {
	return 0, nil
}

type mockLedger struct {
	addID    int64
	addErr   error
	list     []models.Expense
	listErr  error
	lastAdd  service.ExpenseInput
	lastUser int64
	lastFrom time.Time
	lastTo   time.Time
	addCalls int
}

func (m *mockLedger) AddExpense(ctx context.Context, userID int64, in service.ExpenseInput) (int64, error) {
	m.addCalls++
	m.lastUser = userID
	m.lastAdd = in
	return m.addID, m.addErr
}

func (m *mockLedger) ListExpensesInRange(ctx context.Context, userID int64, from, to time.Time) ([]models.Expense, error) {
	m.lastUser, m.lastFrom, m.lastTo = userID, from, to
	return m.list, m.listErr
}

func (m *mockLedger) ListUpcomingPayments(ctx context.Context, userID int64, from, to time.Time) ([]models.Expense, error) {
	return nil, nil
}

func (m *mockLedger) SumByCategory(ctx context.Context, userID int64) (map[string]int64, error) {
	return nil, nil
}

type mockDashboard struct {
	mu      sync.Mutex
	dash    models.Dashboard
	err     error
	calls   int
	lastRef time.Time
}

func (m *mockDashboard) BuildDashboard(ctx context.Context, userID int64, ref time.Time) (models.Dashboard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastRef = ref
	return m.dash, m.err
}

type mockReminders struct {
	res     service.SweepResult
	err     error
	lastDay time.Time
	calls   int
}

func (m *mockReminders) RunDailySweep(ctx context.Context, today time.Time) (service.SweepResult, error) {
	m.calls++
	m.lastDay = today
	return m.res, m.err
}

type mockSweepAuth struct {
	valid string
}

func (m *mockSweepAuth) IssueSweepToken(ttl time.Duration) (string, error) {
	return m.valid, nil
}

func (m *mockSweepAuth) ParseSweepToken(raw string) error {
	if raw != m.valid {
		return service.ErrInvalidToken
	}
	return nil
}

type mockCharts struct {
	out   string
	err   error
	calls int
}

func (m *mockCharts) Render(totals []models.CategoryTotal) (string, error) {
	m.calls++
	return m.out, m.err
}

// ---- Shared Test Helpers ----

const testToken = "valid-session"

// fixedNow is 2024-06-10 in the handler's clock.
var fixedNow = time.Date(2024, 6, 10, 15, 4, 5, 0, time.UTC)

func newTestSessions() *mockSessions {
	return &mockSessions{token: testToken, session: models.Session{UserID: 7, Username: "alice"}}
}

func newTestRouter(s *service.Service) *gin.Engine {
	return newTestRouterWith(s, Options{})
}

func newTestRouterWith(s *service.Service, opts Options) *gin.Engine {
	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	if opts.Charts == nil {
		opts.Charts = &mockCharts{out: "Q0hBUlQ="}
	}
	h := NewHandler(s, nil, opts)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func sessionCookieFor(token string) *http.Cookie {
	return &http.Cookie{Name: sessionCookie, Value: token}
}

// cookieNamed finds a Set-Cookie entry in a response.
func cookieNamed(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
