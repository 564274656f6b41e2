package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"planboard/internal/ledger"
	"planboard/internal/models"
	"planboard/internal/notifier"
)

// DeadlineService scans a user's open tasks for due dates inside the
// lookahead window and raises each one at most once per user per calendar
// day. In-app alert and ledger entry are synchronous; email and Telegram
// delivery are fire-and-forget and never block the scan.
type DeadlineService struct {
	ledger        ledger.Ledger
	alerts        *AlertStore
	notif         notifier.Notifier
	email         EmailService
	telegram      *TelegramService
	hub           notifier.EventPublisher
	lookaheadDays int

	inflight sync.WaitGroup
}

func NewDeadlineService(
	lg ledger.Ledger,
	alerts *AlertStore,
	notif notifier.Notifier,
	email EmailService,
	telegram *TelegramService,
	hub notifier.EventPublisher,
	lookaheadDays int,
) *DeadlineService {
	return &DeadlineService{
		ledger:        lg,
		alerts:        alerts,
		notif:         notif,
		email:         email,
		telegram:      telegram,
		hub:           hub,
		lookaheadDays: lookaheadDays,
	}
}

// Scan processes the task snapshot for the calendar day of now. Returns the
// number of newly raised alerts.
func (s *DeadlineService) Scan(ctx context.Context, user *models.User, tasks []models.Task, now time.Time) int {
	day := ledger.DayKey(now)
	raised := 0

	for i := range tasks {
		t := &tasks[i]
		if t.Status == models.StatusDone || t.DueDate == nil {
			continue
		}
		days, ok := t.DaysUntilDue(now)
		if !ok || days < 0 || days > s.lookaheadDays {
			continue
		}

		seen, err := s.ledger.Contains(ctx, user.ID, day, t.ID)
		if err != nil {
			// a broken ledger read degrades to a duplicate alert, not a missed one
			logrus.WithFields(logrus.Fields{
				"component": "deadline",
				"user_id":   user.ID,
				"task_id":   t.ID,
			}).WithError(err).Warn("ledger read failed")
		}
		if seen {
			continue
		}

		message := fmt.Sprintf("Upcoming Deadline: %q is due on %s (%s).",
			t.Title, t.DueDate.Format("Jan 2"), dayPhrase(days))

		s.alerts.Append(user.ID, models.Alert{
			Message:   message,
			TaskID:    t.ID,
			TaskTitle: t.Title,
			CreatedAt: now,
		})

		if err := s.ledger.AddAll(ctx, user.ID, day, []int64{t.ID}); err != nil {
			logrus.WithFields(logrus.Fields{
				"component": "deadline",
				"user_id":   user.ID,
				"task_id":   t.ID,
			}).WithError(err).Error("ledger write failed")
		}

		if s.hub != nil {
			s.hub.Publish(user.ID, models.AlertEvent{
				Kind:      models.EventAlert,
				Message:   message,
				TaskTitle: t.Title,
			})
		}
		s.notif.Notify(user.ID, "Upcoming Deadline", message)

		s.dispatchEmail(user.Email, t.Title, message)
		if s.telegram != nil && user.TelegramChatID != nil {
			s.dispatchTelegram(*user.TelegramChatID, message, user.ID)
		}

		raised++
	}
	return raised
}

// dispatchEmail sends in the background; a failure is logged and charged to
// nobody — the alert already counts as delivered in-app and in the ledger.
func (s *DeadlineService) dispatchEmail(to, taskTitle, message string) {
	subject := fmt.Sprintf("Deadline approaching: %s", taskTitle)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		if err := s.email.SendDeadlineEmail(to, subject, message, taskTitle); err != nil {
			logrus.WithFields(logrus.Fields{
				"component": "deadline",
				"to":        to,
			}).WithError(err).Warn("deadline email failed")
		}
	}()
}

func (s *DeadlineService) dispatchTelegram(chatID int64, message string, userID int64) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		if err := s.telegram.SendMessage(chatID, message); err != nil {
			logrus.WithFields(logrus.Fields{
				"component": "deadline",
				"user_id":   userID,
			}).WithError(err).Warn("telegram alert failed")
		}
	}()
}

// Wait blocks until all in-flight outbound deliveries settle. Used by
// shutdown and by tests that assert on dispatch attempts.
func (s *DeadlineService) Wait() {
	s.inflight.Wait()
}

func dayPhrase(days int) string {
	switch days {
	case 0:
		return "today"
	case 1:
		return "in 1 day"
	default:
		return fmt.Sprintf("in %d days", days)
	}
}
