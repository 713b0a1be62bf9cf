package service

import (
	"context"
	"time"

	"expense_tracker/internal/logger"
	"expense_tracker/internal/models"
	"expense_tracker/internal/repository"

	"github.com/google/uuid"
)

// SessionService keeps server-side login sessions with rolling expiry.
type SessionService struct {
	sessions repository.Sessions
	ttl      time.Duration
	now      func() time.Time
	log      *logger.Logger
}

func NewSessionService(sessions repository.Sessions, ttl time.Duration, log *logger.Logger) *SessionService {
	if log == nil {
		log = logger.Nop()
	}
	return &SessionService{sessions: sessions, ttl: ttl, now: time.Now, log: log.Named("sessions")}
}

// StartSession creates a fresh session for an authenticated user.
func (s *SessionService) StartSession(ctx context.Context, userID int64, username string) (*models.Session, error) {
	now := s.now().UTC()
	sess := &models.Session{
		Token:        uuid.NewString(),
		UserID:       userID,
		Username:     username,
		ExpiresAt:    now.Add(s.ttl),
		LastActivity: now,
	}
	if err := s.sessions.Create(ctx, *sess); err != nil {
		return nil, storageErr("start session", err)
	}
	return sess, nil
}

// ResolveSession returns the live session behind token, or ErrNoSession.
// Sessions past half of their lifetime are extended; Renewed reports that.
func (s *SessionService) ResolveSession(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	now := s.now().UTC()
	sess, err := s.sessions.Get(ctx, token, now)
	if err != nil {
		return nil, storageErr("resolve session", err)
	}
	if sess == nil {
		return nil, ErrNoSession
	}

	if sess.ExpiresAt.Sub(now) < s.ttl/2 {
		expiresAt := now.Add(s.ttl)
		// renewal failure keeps the current session usable
		if err := s.sessions.Renew(ctx, token, expiresAt, now); err != nil {
			s.log.Warnw("session_renew_failed", "user_id", sess.UserID, "err", err)
		} else {
			sess.ExpiresAt = expiresAt
			sess.LastActivity = now
			sess.Renewed = true
		}
	}
	return sess, nil
}

// EndSession deletes the session. It is idempotent and ignores empty tokens.
func (s *SessionService) EndSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return storageErr("end session", err)
	}
	return nil
}

func (s *SessionService) CleanExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, storageErr("clean sessions", err)
	}
	return n, nil
}
