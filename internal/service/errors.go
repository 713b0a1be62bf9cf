package service

import (
	"errors"
	"fmt"
)

// Domain errors. Handlers map them to user-facing messages with errors.Is.
var (
	ErrValidation     = errors.New("validation failed")
	ErrUserNotFound   = errors.New("user not found")
	ErrBadPassword    = errors.New("invalid password")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrStorage        = errors.New("storage error")
	ErrDispatch       = errors.New("notification dispatch failed")
	ErrInvalidToken   = errors.New("invalid token")
	ErrNoSession      = errors.New("no active session")
)

// ValidationError names the offending input field.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}

// IsAuthFailure reports whether err is one of the login failures.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrBadPassword)
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
