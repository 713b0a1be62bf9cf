package handlers

import (
	"time"

	"expense_tracker/internal/chart"
	"expense_tracker/internal/logger"
	"expense_tracker/internal/service"
	"expense_tracker/web"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Options tunes presentation-level behaviour of the HTTP layer.
type Options struct {
	SessionTTL          time.Duration
	SecureCookie        bool
	DistinctLoginErrors bool
	Charts              chart.Renderer
	// Now returns the current time in the user-facing time zone.
	Now func() time.Time
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	opts     Options
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts Options) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	if opts.Charts == nil {
		opts.Charts = chart.NewBarRenderer()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 24 * time.Hour
	}
	return &Handler{services: services, log: log.Named("http"), opts: opts}
}

// InitRoutes builds and returns the Gin router with all routes registered.
// It panics if the embedded templates do not parse.
func (h *Handler) InitRoutes() *gin.Engine {
	pages, err := newPageRender(web.Templates)
	if err != nil {
		panic(err)
	}

	router := gin.New()
	router.Use(gin.Recovery(), h.requestLogger)
	router.HTMLRender = pages

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", h.health)

	h.registerPublicRoutes(router)
	h.registerPageRoutes(router)
	h.registerAPIRoutes(router)

	// Reminder sweep trigger for an external scheduler
	router.GET("/check_payments", h.requireSweepToken, h.checkPayments)

	return router
}

func (h *Handler) registerPublicRoutes(r *gin.Engine) {
	r.GET("/", h.index)
	r.GET("/register", h.registerForm)
	r.POST("/register", h.register)
	r.GET("/login", h.loginForm)
	r.POST("/login", h.login)
}

func (h *Handler) registerPageRoutes(r *gin.Engine) {
	pages := r.Group("", h.requireSession)
	{
		pages.GET("/logout", h.logout)
		pages.GET("/dashboard", h.dashboard)
		pages.GET("/dashboard/live", h.wsConnect)
		pages.GET("/add_expense", h.addExpenseForm)
		pages.POST("/add_expense", h.addExpense)
		pages.GET("/expense_history", h.expenseHistory)
		pages.POST("/expense_history", h.expenseHistory)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.requireSessionJSON)
	{
		api.GET("/dashboard", h.apiDashboard)
		api.GET("/expenses", h.apiListExpenses)
		api.POST("/expenses", h.apiAddExpense)
	}
}

// today is the current calendar date in the user-facing zone.
func (h *Handler) today() time.Time {
	return service.DateOf(h.opts.Now())
}
