// Package notify delivers reminder emails over SMTP.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"expense_tracker/internal/config"

	"gopkg.in/mail.v2"
)

const defaultDialTimeout = 10 * time.Second

// SMTPDispatcher sends one message per connection. Each Send dials, sends and
// closes; no connection outlives a call.
type SMTPDispatcher struct {
	from string
	dial func() (mail.SendCloser, error)
}

// NewSMTPDispatcher builds a dispatcher that uses STARTTLS when the server offers it.
func NewSMTPDispatcher(cfg config.MailConfig) *SMTPDispatcher {
	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.Timeout = cfg.Timeout
	if d.Timeout <= 0 {
		d.Timeout = defaultDialTimeout
	}
	d.StartTLSPolicy = mail.OpportunisticStartTLS

	return &SMTPDispatcher{from: cfg.From, dial: d.Dial}
}

// Send delivers a plain-text message to a single recipient.
func (s *SMTPDispatcher) Send(ctx context.Context, to, subject, body string) (err error) {
	to = strings.TrimSpace(to)
	if to == "" {
		return errors.New("send mail: empty recipient")
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("send mail to %s: panic: %v", to, r)
		}
	}()

	conn, err := s.dial()
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close smtp: %w", cerr)
		}
	}()

	if err := mail.Send(conn, s.message(to, subject, body)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

func (s *SMTPDispatcher) message(to, subject, body string) *mail.Message {
	m := mail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return m
}
