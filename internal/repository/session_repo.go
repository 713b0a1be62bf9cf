package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"expense_tracker/internal/models"
)

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

var _ Sessions = (*SessionRepository)(nil)

const (
	insertSessionSQL = `INSERT INTO sessions (token, user_id, username, expires_at, last_activity) VALUES (?, ?, ?, ?, ?)`
	selectSessionSQL = `SELECT token, user_id, username, expires_at, last_activity FROM sessions WHERE token = ? AND expires_at > ?`
	renewSessionSQL  = `UPDATE sessions SET expires_at = ?, last_activity = ? WHERE token = ?`
	deleteSessionSQL = `DELETE FROM sessions WHERE token = ?`
	purgeSessionsSQL = `DELETE FROM sessions WHERE expires_at <= ?`
)

func (r *SessionRepository) Create(ctx context.Context, s models.Session) error {
	_, err := r.db.ExecContext(ctx, insertSessionSQL,
		s.Token, s.UserID, s.Username, s.ExpiresAt.Unix(), s.LastActivity.Unix())
	if err != nil {
		return fmt.Errorf("insert session for user %d: %w", s.UserID, err)
	}
	return nil
}

// Get returns the live session for token. Returns (nil, nil) if missing or expired.
func (r *SessionRepository) Get(ctx context.Context, token string, now time.Time) (*models.Session, error) {
	var (
		s                      models.Session
		expiresAt, lastActive int64
	)
	err := r.db.QueryRowContext(ctx, selectSessionSQL, token, now.Unix()).
		Scan(&s.Token, &s.UserID, &s.Username, &expiresAt, &lastActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select session: %w", err)
	}
	s.ExpiresAt = time.Unix(expiresAt, 0).UTC()
	s.LastActivity = time.Unix(lastActive, 0).UTC()
	return &s, nil
}

func (r *SessionRepository) Renew(ctx context.Context, token string, expiresAt, lastActivity time.Time) error {
	if _, err := r.db.ExecContext(ctx, renewSessionSQL, expiresAt.Unix(), lastActivity.Unix(), token); err != nil {
		return fmt.Errorf("renew session: %w", err)
	}
	return nil
}

// Delete removes a session; deleting an unknown token is not an error.
func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	if _, err := r.db.ExecContext(ctx, deleteSessionSQL, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, purgeSessionsSQL, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("purge expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count purged sessions: %w", err)
	}
	return n, nil
}
