package notify

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"expense_tracker/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/mail.v2"
)

type fakeConn struct {
	from     string
	to       []string
	raw      bytes.Buffer
	sendErr  error
	closeErr error
	closed   int
}

func (c *fakeConn) Send(from string, to []string, msg io.WriterTo) error {
	if c.sendErr != nil {
		return c.sendErr
	}
	c.from, c.to = from, to
	_, err := msg.WriteTo(&c.raw)
	return err
}

func (c *fakeConn) Close() error {
	c.closed++
	return c.closeErr
}

func dispatcherWith(conn *fakeConn, dialErr error) *SMTPDispatcher {
	d := NewSMTPDispatcher(config.MailConfig{Host: "smtp.example.com", Port: 587, From: "reminders@example.com"})
	d.dial = func() (mail.SendCloser, error) {
		if dialErr != nil {
			return nil, dialErr
		}
		return conn, nil
	}
	return d
}

func TestSMTPDispatcher_Send(t *testing.T) {
	conn := &fakeConn{}
	d := dispatcherWith(conn, nil)

	err := d.Send(context.Background(), "alice@example.com", "Payment reminder: Rent due tomorrow", "Hello alice")
	require.NoError(t, err)

	assert.Equal(t, "reminders@example.com", conn.from)
	assert.Equal(t, []string{"alice@example.com"}, conn.to)
	assert.Equal(t, 1, conn.closed)

	raw := conn.raw.String()
	assert.Contains(t, raw, "Subject: Payment reminder: Rent due tomorrow")
	assert.Contains(t, raw, "Content-Type: text/plain")
	assert.Contains(t, raw, "Hello alice")
}

func TestSMTPDispatcher_ClosesOnSendFailure(t *testing.T) {
	conn := &fakeConn{sendErr: errors.New("550 mailbox unavailable")}
	d := dispatcherWith(conn, nil)

	err := d.Send(context.Background(), "bob@example.com", "s", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bob@example.com")
	assert.Equal(t, 1, conn.closed)
}

func TestSMTPDispatcher_Errors(t *testing.T) {
	t.Run("dial", func(t *testing.T) {
		d := dispatcherWith(nil, errors.New("connection refused"))
		err := d.Send(context.Background(), "a@example.com", "s", "b")
		assert.ErrorContains(t, err, "dial smtp")
	})

	t.Run("close", func(t *testing.T) {
		conn := &fakeConn{closeErr: errors.New("quit failed")}
		err := dispatcherWith(conn, nil).Send(context.Background(), "a@example.com", "s", "b")
		assert.ErrorContains(t, err, "close smtp")
	})

	t.Run("empty recipient", func(t *testing.T) {
		conn := &fakeConn{}
		err := dispatcherWith(conn, nil).Send(context.Background(), " ", "s", "b")
		assert.Error(t, err)
		assert.Zero(t, conn.closed)
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		conn := &fakeConn{}
		err := dispatcherWith(conn, nil).Send(ctx, "a@example.com", "s", "b")
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, conn.closed)
	})

	t.Run("panicking transport", func(t *testing.T) {
		d := dispatcherWith(nil, nil)
		d.dial = func() (mail.SendCloser, error) { panic("boom") }
		assert.NotPanics(t, func() {
			err := d.Send(context.Background(), "a@example.com", "s", "b")
			assert.ErrorContains(t, err, "panic")
		})
	})
}
