package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"expense_tracker/internal/models"
	"expense_tracker/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// CredentialService registers users and checks their passwords.
type CredentialService struct {
	users repository.Users
}

func NewCredentialService(users repository.Users) *CredentialService {
	return &CredentialService{users: users}
}

// Register hashes the password and creates the user. The raw password never
// leaves this function.
func (s *CredentialService) Register(ctx context.Context, username, email, password string) (int64, error) {
	username = strings.TrimSpace(username)
	email = normalizeEmail(email)

	if username == "" {
		return 0, invalid("username", "is required")
	}
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return 0, invalid("email", "is not a valid address")
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return 0, storageErr("lookup user", err)
	}
	if existing != nil {
		return 0, ErrDuplicateEmail
	}

	hash, err := hashPassword(password)
	if err != nil {
		return 0, err
	}

	id, err := s.users.Create(ctx, models.User{Username: username, Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return 0, ErrDuplicateEmail
		}
		return 0, storageErr("create user", err)
	}
	return id, nil
}

// Verify looks the user up by email and compares the candidate password.
func (s *CredentialService) Verify(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, storageErr("lookup user", err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	if err := verifyPassword(u.PasswordHash, password); err != nil {
		return nil, ErrBadPassword
	}
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", invalid("password", "is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", invalid("password", "is too long")
		}
		return "", err
	}
	return string(hash), nil
}

func verifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
