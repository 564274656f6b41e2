package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"planboard/internal/models"
	"planboard/internal/notifier"
	"planboard/internal/repositories"
)

// ReminderService fires the per-task reminder configured via a lead time:
// once the current moment enters [dueMoment−lead, dueMoment) the reminder is
// raised and the task's sent flag is set, making delivery at-most-once. A
// window that passes between evaluations is skipped, never backfilled.
type ReminderService struct {
	tasks          repositories.TaskRepository
	alerts         *AlertStore
	notif          notifier.Notifier
	hub            notifier.EventPublisher
	defaultDueTime string
}

func NewReminderService(
	tasks repositories.TaskRepository,
	alerts *AlertStore,
	notif notifier.Notifier,
	hub notifier.EventPublisher,
	defaultDueTime string,
) *ReminderService {
	return &ReminderService{
		tasks:          tasks,
		alerts:         alerts,
		notif:          notif,
		hub:            hub,
		defaultDueTime: defaultDueTime,
	}
}

// Evaluate inspects the given task snapshot at the given moment. Fired
// reminders are persisted through the task repository so a restart does not
// re-fire them; a failed persist is logged and the reminder still counts as
// sent for this snapshot.
func (s *ReminderService) Evaluate(ctx context.Context, userID int64, tasks []models.Task, now time.Time) int {
	fired := 0
	for i := range tasks {
		t := &tasks[i]
		if t.ReminderLeadMinutes <= 0 || t.ReminderSent || t.Status == models.StatusDone {
			continue
		}
		due, ok := t.DueMoment(s.defaultDueTime)
		if !ok {
			// malformed or missing due date: treat as not due soon
			continue
		}
		remindAt := due.Add(-time.Duration(t.ReminderLeadMinutes) * time.Minute)
		if now.Before(remindAt) || !now.Before(due) {
			continue
		}

		body := fmt.Sprintf("%q is due at %s.", t.Title, due.Format("15:04"))

		// the in-app alert is unconditional; only the OS-level notification
		// depends on the session's permission grant
		s.alerts.Append(userID, models.Alert{
			Message:   body,
			TaskID:    t.ID,
			TaskTitle: t.Title,
			CreatedAt: now,
		})
		if s.hub != nil {
			s.hub.Publish(userID, models.AlertEvent{
				Kind:      models.EventAlert,
				Message:   body,
				TaskTitle: t.Title,
			})
		}
		s.notif.Notify(userID, "Task Reminder", body)

		t.ReminderSent = true
		if err := s.tasks.SetReminderSent(ctx, t.ID, true); err != nil {
			logrus.WithFields(logrus.Fields{
				"component": "reminder",
				"user_id":   userID,
				"task_id":   t.ID,
			}).WithError(err).Warn("failed to persist reminder flag")
		}
		fired++
	}
	return fired
}
