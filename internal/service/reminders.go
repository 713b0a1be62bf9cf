package service

import (
	"context"
	"fmt"
	"time"

	"expense_tracker/internal/logger"
	"expense_tracker/internal/models"
	"expense_tracker/internal/repository"
)

// Dispatcher delivers a single plain-text notification.
type Dispatcher interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SweepResult counts one reminder run. Sent is the number of successful dispatches.
type SweepResult struct {
	Due    int `json:"due"`
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// ReminderService emails owners of payments that fall due tomorrow.
type ReminderService struct {
	expenses   repository.Expenses
	dispatcher Dispatcher
	log        *logger.Logger
}

func NewReminderService(expenses repository.Expenses, dispatcher Dispatcher, log *logger.Logger) *ReminderService {
	if log == nil {
		log = logger.Nop()
	}
	return &ReminderService{expenses: expenses, dispatcher: dispatcher, log: log.Named("reminders")}
}

// RunDailySweep sends one reminder per expense whose payment date is the day
// after today. A failed dispatch is logged and counted; the sweep goes on.
// There is no record of what was sent, so a second run sends again.
func (s *ReminderService) RunDailySweep(ctx context.Context, today time.Time) (SweepResult, error) {
	tomorrow := DateOf(today).AddDate(0, 0, 1)

	due, err := s.expenses.DueOn(ctx, tomorrow)
	if err != nil {
		return SweepResult{}, storageErr("load due payments", err)
	}

	res := SweepResult{Due: len(due)}
	for _, p := range due {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		subject, body := ReminderMessage(p)
		if err := s.dispatcher.Send(ctx, p.Email, subject, body); err != nil {
			res.Failed++
			s.log.Errorw("reminder_dispatch_failed",
				"expense_id", p.ExpenseID, "user_id", p.UserID,
				"err", fmt.Errorf("%w: %w", ErrDispatch, err))
			continue
		}
		res.Sent++
	}

	s.log.Infow("reminder_sweep_done",
		"payment_date", tomorrow.Format(models.DateLayout),
		"due", res.Due, "sent", res.Sent, "failed", res.Failed)
	return res, nil
}

// ReminderMessage builds the subject and plain-text body for one due payment.
func ReminderMessage(p models.DuePayment) (string, string) {
	subject := fmt.Sprintf("Payment reminder: %s due tomorrow", p.Description)
	body := fmt.Sprintf(
		"Hello %s,\n\nThis is a reminder that your payment for '%s' of $%s is due on %s.\n\nThank you!\n",
		p.Username, p.Description, models.CentsToDecimal(p.AmountCents).StringFixed(2),
		p.PaymentDate.Format(models.DateLayout),
	)
	return subject, body
}
