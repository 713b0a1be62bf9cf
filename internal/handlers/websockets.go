package handlers

import (
	"context"
	"strconv"
	"time"

	"expense_tracker/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 12 // 4 KB
	defaultInterval  = 5 * time.Second
	minInterval      = 500 * time.Millisecond
	maxInterval      = 60 * time.Second
	maxIntervalMilli = 60_000
)

// Envelope used for WebSocket messages.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// dashboardSummary is the compact dashboard pushed over the live socket.
type dashboardSummary struct {
	MonthStart       string                 `json:"month_start"`
	MonthEnd         string                 `json:"month_end"`
	MonthTotal       string                 `json:"month_total"`
	MonthCount       int                    `json:"month_count"`
	UpcomingPayments []upcomingPayment      `json:"upcoming_payments"`
	CategoryTotals   []models.CategoryTotal `json:"category_totals"`
}

type upcomingPayment struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
	PaymentDate string `json:"payment_date"`
}

func summarize(d models.Dashboard) dashboardSummary {
	s := dashboardSummary{
		MonthStart:       formatDate(d.MonthStart),
		MonthEnd:         formatDate(d.MonthEnd),
		MonthTotal:       models.CentsToDecimal(d.MonthTotalCents).StringFixed(2),
		MonthCount:       len(d.MonthExpenses),
		UpcomingPayments: make([]upcomingPayment, 0, len(d.UpcomingPayments)),
		CategoryTotals:   d.CategoryTotals,
	}
	for _, e := range d.UpcomingPayments {
		p := upcomingPayment{Description: e.Description, Amount: e.Amount().StringFixed(2)}
		if e.PaymentDate != nil {
			p.PaymentDate = formatDate(*e.PaymentDate)
		}
		s.UpcomingPayments = append(s.UpcomingPayments, p)
	}
	return s
}

// The session cookie is SameSite=Lax, so the default same-origin check applies.
var upgrader = websocket.Upgrader{}

// wsConnect streams the caller's dashboard summary every interval until the
// client goes away.
func (h *Handler) wsConnect(c *gin.Context) {
	interval := h.parseInterval(c)
	userID := currentSession(c).UserID

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Errorw("ws_upgrade_failed", "err", err)
		return
	}
	defer func() { _ = conn.Close() }()

	// Configure read limits and pong handler to extend read deadline.
	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Reader goroutine to handle control frames and detect disconnects.
	done := make(chan struct{})
	go h.startReader(conn, done)

	// Prepare periodic writers: state updates and pings.
	ticker := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ping.Stop()
	}()

	// Send initial state immediately.
	if err := h.sendSummary(c.Request.Context(), conn, userID); err != nil {
		h.log.Infow("ws_write_failed_initial", "err", err)
		return
	}

	// Writer/select loop.
	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.log.Infow("ws_ping_failed", "err", err)
				return
			}
		case <-ticker.C:
			if err := h.sendSummary(c.Request.Context(), conn, userID); err != nil {
				h.log.Infow("ws_write_failed", "err", err)
				return
			}
		}
	}
}

// parseInterval reads ?interval=10s or ?interval_ms=10000 within bounds.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	interval := defaultInterval

	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d >= minInterval && d <= maxInterval {
			return d
		}
	}

	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && time.Duration(v)*time.Millisecond >= minInterval && v <= maxIntervalMilli {
			return time.Duration(v) * time.Millisecond
		}
	}

	return interval
}

// startReader drains incoming messages to handle control frames and detect closure.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.log.Infow("ws_read_closed", "err", err)
			return
		}
	}
}

// sendSummary writes the current dashboard summary. A load failure is sent
// to the client as an error envelope and keeps the stream open.
func (h *Handler) sendSummary(ctx context.Context, conn *websocket.Conn, userID int64) error {
	msg := wsEnvelope{Type: "dashboard"}
	d, err := h.services.Dashboard.BuildDashboard(ctx, userID, h.today())
	if err != nil {
		h.log.Errorw("ws_dashboard_failed", "user_id", userID, "err", err)
		msg = wsEnvelope{Type: "error", Error: errLoadDashboard}
	} else {
		msg.Data = summarize(d)
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}
