package handlers

import (
	"errors"
	"net/http"

	"expense_tracker/internal/models"
	"expense_tracker/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	statusOK = "ok"

	errLoadDashboard = "failed to load dashboard"
	errLoadExpenses  = "failed to load expenses"
	errSaveExpense   = "failed to save expense"
	errInvalidBody   = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// AddExpenseRequest documents the JSON body of POST /api/v1/expenses.
type AddExpenseRequest struct {
	Description string `json:"description" example:"Office rent"`
	// Decimal amount, at most two fractional digits are kept
	Amount string `json:"amount" example:"850.00"`
	// personal or business
	Category string `json:"type" example:"business"`
	// YYYY-MM-DD
	Date string `json:"date" example:"2024-06-01"`
	// Optional YYYY-MM-DD
	PaymentDate string `json:"payment_date,omitempty" example:"2024-06-05"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Dashboard data
// @Description  Current-month expenses, payments due in the next 7 days and totals per category. 'date' overrides the reference day.
// @Tags         expenses
// @Produce      json
// @Param        date  query     string  false  "Reference date (YYYY-MM-DD)"  example(2024-06-10)
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/dashboard [get]
// @Security     SessionCookie
func (h *Handler) apiDashboard(c *gin.Context) {
	sess := currentSession(c)
	ref := h.today()
	if q := c.Query("date"); q != "" {
		d, err := service.ParseDate("date", q)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ref = d
	}

	d, err := h.services.Dashboard.BuildDashboard(c.Request.Context(), sess.UserID, ref)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errLoadDashboard, "api_dashboard_failed", err, "user_id", sess.UserID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dashboard": d})
}

// @Summary      List expenses
// @Description  Newest first. Both bounds are optional and inclusive.
// @Tags         expenses
// @Produce      json
// @Param        from  query     string  false  "Start date (YYYY-MM-DD)"  example(2024-06-01)
// @Param        to    query     string  false  "End date (YYYY-MM-DD)"    example(2024-06-30)
// @Success      200   {object}  map[string]interface{}  "count, expenses"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/expenses [get]
// @Security     SessionCookie
func (h *Handler) apiListExpenses(c *gin.Context) {
	sess := currentSession(c)

	from, err := service.ParseOptionalDate("from", c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	to, err := service.ParseOptionalDate("to", c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	expenses, err := h.services.Ledger.ListExpensesInRange(c.Request.Context(), sess.UserID, from, to)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errLoadExpenses, "api_list_expenses_failed", err, "user_id", sess.UserID)
		return
	}
	if expenses == nil {
		expenses = []models.Expense{}
	}
	c.JSON(http.StatusOK, gin.H{"count": len(expenses), "expenses": expenses})
}

// @Summary      Add expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        body  body      AddExpenseRequest  true  "Expense"
// @Success      201   {object}  map[string]interface{}  "id"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/expenses [post]
// @Security     SessionCookie
func (h *Handler) apiAddExpense(c *gin.Context) {
	sess := currentSession(c)

	var req AddExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBody + err.Error()})
		return
	}

	in := service.ExpenseInput{
		Description: req.Description,
		Amount:      req.Amount,
		Category:    req.Category,
		Date:        req.Date,
		PaymentDate: req.PaymentDate,
	}
	id, err := h.services.Ledger.AddExpense(c.Request.Context(), sess.UserID, in)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errSaveExpense, "api_add_expense_failed", err, "user_id", sess.UserID)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}
