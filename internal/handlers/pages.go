package handlers

import (
	"errors"
	"net/http"

	"expense_tracker/internal/models"
	"expense_tracker/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	msgDashboardUnavailable = "Could not load your dashboard data. Please try again later."
	msgHistoryUnavailable   = "Could not load your expense history. Please try again later."
	msgExpenseNotSaved      = "Could not save the expense. Please try again later."
)

// expenseForm mirrors the add-expense form fields.
type expenseForm struct {
	Description string `form:"description"`
	Amount      string `form:"amount"`
	Category    string `form:"type"`
	Date        string `form:"date"`
	PaymentDate string `form:"payment_date"`
}

func (f expenseForm) input() service.ExpenseInput {
	return service.ExpenseInput{
		Description: f.Description,
		Amount:      f.Amount,
		Category:    f.Category,
		Date:        f.Date,
		PaymentDate: f.PaymentDate,
	}
}

// renderPage renders a page inside the base layout. A "Flash" key in data
// replaces the pending flash cookie message.
func (h *Handler) renderPage(c *gin.Context, status int, page, title string, data gin.H) {
	out := gin.H{
		"Title": title,
		"User":  currentSession(c),
		"Flash": h.popFlash(c),
	}
	for k, v := range data {
		out[k] = v
	}
	c.HTML(status, page, out)
}

func (h *Handler) dashboard(c *gin.Context) {
	sess := currentSession(c)
	data := gin.H{}

	d, err := h.services.Dashboard.BuildDashboard(c.Request.Context(), sess.UserID, h.today())
	if err != nil {
		h.log.Errorw("dashboard_load_failed", "user_id", sess.UserID, "err", err)
		d = models.Dashboard{MonthStart: d.MonthStart, MonthEnd: d.MonthEnd, ReferenceDate: d.ReferenceDate}
		data["Flash"] = &flash{Kind: flashWarning, Message: msgDashboardUnavailable}
	}
	data["Dashboard"] = d
	data["Chart"] = h.renderChart(d.CategoryTotals, sess.UserID)

	h.renderPage(c, http.StatusOK, pageDash, "Dashboard", data)
}

// renderChart returns the base64 chart, or "" when there is nothing to draw
// or drawing failed.
func (h *Handler) renderChart(totals []models.CategoryTotal, userID int64) string {
	if len(totals) == 0 {
		return ""
	}
	img, err := h.opts.Charts.Render(totals)
	if err != nil {
		h.log.Errorw("chart_render_failed", "user_id", userID, "err", err)
		return ""
	}
	return img
}

func (h *Handler) addExpenseForm(c *gin.Context) {
	form := expenseForm{Category: models.CategoryPersonal, Date: formatDate(h.today())}
	h.renderPage(c, http.StatusOK, pageAdd, "Add expense", gin.H{"Form": form, "Categories": models.Categories})
}

func (h *Handler) addExpense(c *gin.Context) {
	sess := currentSession(c)
	var form expenseForm
	h.bindForm(c, &form)

	fail := func(status int, msg string) {
		h.renderPage(c, status, pageAdd, "Add expense", gin.H{
			"Form": form, "Categories": models.Categories, "Error": msg,
		})
	}

	id, err := h.services.Ledger.AddExpense(c.Request.Context(), sess.UserID, form.input())
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			fail(http.StatusBadRequest, validationMessage(err))
			return
		}
		h.log.Errorw("expense_add_failed", "user_id", sess.UserID, "err", err)
		fail(http.StatusInternalServerError, msgExpenseNotSaved)
		return
	}

	h.log.Infow("expense_added", "user_id", sess.UserID, "expense_id", id)
	h.setFlash(c, flashSuccess, "Expense added.")
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

// expenseHistory serves both the initial page and the filter form submission.
func (h *Handler) expenseHistory(c *gin.Context) {
	sess := currentSession(c)
	start, end := formOrQuery(c, "start_date"), formOrQuery(c, "end_date")
	data := gin.H{"StartDate": start, "EndDate": end}

	fail := func(msg string) {
		data["Error"] = msg
		h.renderPage(c, http.StatusBadRequest, pageHistory, "Expense history", data)
	}

	from, err := service.ParseOptionalDate("start_date", start)
	if err != nil {
		fail(validationMessage(err))
		return
	}
	to, err := service.ParseOptionalDate("end_date", end)
	if err != nil {
		fail(validationMessage(err))
		return
	}

	expenses, err := h.services.Ledger.ListExpensesInRange(c.Request.Context(), sess.UserID, from, to)
	switch {
	case err == nil:
		data["Expenses"] = expenses
	case errors.Is(err, service.ErrValidation):
		fail(validationMessage(err))
		return
	default:
		h.log.Errorw("expense_history_failed", "user_id", sess.UserID, "err", err)
		data["Flash"] = &flash{Kind: flashWarning, Message: msgHistoryUnavailable}
	}

	h.renderPage(c, http.StatusOK, pageHistory, "Expense history", data)
}

func formOrQuery(c *gin.Context, key string) string {
	if v := c.PostForm(key); v != "" {
		return v
	}
	return c.Query(key)
}
