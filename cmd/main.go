package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "expense_tracker/docs"
	"expense_tracker/internal/chart"
	"expense_tracker/internal/config"
	"expense_tracker/internal/handlers"
	"expense_tracker/internal/logger"
	"expense_tracker/internal/notify"
	"expense_tracker/internal/repository"
	"expense_tracker/internal/repository/db"
	"expense_tracker/internal/server"
	"expense_tracker/internal/service"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// @title                       Expense Tracker API
// @version                     1.0
// @description                 Expense ledger with payment reminders.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @securityDefinitions.apikey  SessionCookie
// @in                          header
// @name                        Cookie
func main() {
	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Get("info").Fatalw("failed to read .env", "err", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Get("info").Fatalw("error reading config", "err", err)
	}
	log := logger.GetWithFormat(cfg.Log.Level, cfg.Log.Format)
	if err := cfg.Validate(); err != nil {
		log.Fatalw("invalid config", "err", err)
	}

	conn, err := db.Open(cfg.DB)
	if err != nil {
		log.Fatalw("failed to open database", "driver", cfg.DB.Driver, "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close database", "err", cerr)
		}
	}()

	loc, _ := cfg.Reminders.Location()
	hour, minute, _ := cfg.Reminders.ParseDailyAt()

	repos := repository.NewRepository(conn)
	services := service.NewService(repos, service.Options{
		Dispatcher:  notify.NewSMTPDispatcher(cfg.Mail),
		Log:         log,
		SessionTTL:  cfg.Session.TTL,
		SweepSecret: cfg.Reminders.Secret,
		Schedule: service.SchedulerOptions{
			Enabled:  cfg.Reminders.SchedulerEnabled,
			Hour:     hour,
			Minute:   minute,
			Location: loc,
		},
	})
	apiHandler := handlers.NewHandler(services, log, handlers.Options{
		SessionTTL:          cfg.Session.TTL,
		SecureCookie:        cfg.Session.SecureCookie,
		DistinctLoginErrors: cfg.Auth.DistinctLoginErrors,
		Charts:              chart.NewBarRenderer(),
		Now:                 func() time.Time { return time.Now().In(loc) },
	})
	srv := server.New(cfg.Server, apiHandler.InitRoutes())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, srv, services.Scheduler, log); err != nil {
		log.Errorw("server stopped with error", "err", err)
		// os.Exit skips deferred calls
		stop()
		_ = conn.Close()
		os.Exit(1)
	}
	log.Infow("server stopped")
}

// run serves HTTP and runs the background scheduler until ctx is canceled or
// the server fails, then shuts both down.
func run(ctx context.Context, srv *server.Server, scheduler service.Scheduler, log *logger.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infow("http_server_started", "addr", srv.Addr())
		return srv.Run()
	})

	g.Go(func() error {
		scheduler.Run(gctx)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Infow("shutting down server...")

		// allow in-flight requests to complete
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
