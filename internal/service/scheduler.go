package service

import (
	"context"
	"time"

	"expense_tracker/internal/logger"
)

const sessionCleanupEvery = time.Hour

// SchedulerService runs the in-process daily sweep and the hourly session purge.
type SchedulerService struct {
	reminders Reminders
	sessions  Sessions
	log       *logger.Logger

	enabled bool
	hour    int
	minute  int
	loc     *time.Location
	now     func() time.Time
}

// SchedulerOptions configures SchedulerService. A nil Location means UTC.
type SchedulerOptions struct {
	Enabled  bool
	Hour     int
	Minute   int
	Location *time.Location
}

func NewSchedulerService(reminders Reminders, sessions Sessions, opts SchedulerOptions, log *logger.Logger) *SchedulerService {
	if log == nil {
		log = logger.Nop()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	return &SchedulerService{
		reminders: reminders,
		sessions:  sessions,
		log:       log.Named("scheduler"),
		enabled:   opts.Enabled,
		hour:      opts.Hour,
		minute:    opts.Minute,
		loc:       loc,
		now:       time.Now,
	}
}

// Run blocks until ctx is canceled. Session cleanup always runs; the daily
// sweep only when enabled.
func (s *SchedulerService) Run(ctx context.Context) {
	cleanup := time.NewTicker(sessionCleanupEvery)
	defer cleanup.Stop()

	var sweepC <-chan time.Time
	var timer *time.Timer
	if s.enabled {
		timer = time.NewTimer(s.untilNext())
		defer timer.Stop()
		sweepC = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-cleanup.C:
			n, err := s.sessions.CleanExpiredSessions(ctx)
			if err != nil {
				s.log.Errorw("session_cleanup_failed", "err", err)
				continue
			}
			if n > 0 {
				s.log.Infow("session_cleanup_done", "removed", n)
			}
		case <-sweepC:
			today := s.now().In(s.loc)
			if _, err := s.reminders.RunDailySweep(ctx, today); err != nil {
				s.log.Errorw("scheduled_sweep_failed", "err", err)
			}
			timer.Reset(s.untilNext())
		}
	}
}

func (s *SchedulerService) untilNext() time.Duration {
	now := s.now().In(s.loc)
	return nextRun(now, s.hour, s.minute).Sub(now)
}

// nextRun is the first hour:minute in now's location strictly after now.
func nextRun(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = time.Date(now.Year(), now.Month(), now.Day()+1, hour, minute, 0, 0, now.Location())
	}
	return next
}
