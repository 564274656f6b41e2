package models

import (
	"fmt"
	"time"
)

// TaskStatus defines the possible statuses for a task.
type TaskStatus string

const (
	StatusNotStarted TaskStatus = "not_started"
	StatusInProgress TaskStatus = "in_progress"
	StatusReview     TaskStatus = "review"
	StatusDone       TaskStatus = "done"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Task represents the structure of a task in the system.
type Task struct {
	ID                  int64        `json:"id"`
	ProjectID           *int64       `json:"project_id,omitempty"`
	AssigneeID          int64        `json:"assignee_id"`
	Title               string       `json:"title"`
	Description         string       `json:"description"`
	Status              TaskStatus   `json:"status"`
	Priority            TaskPriority `json:"priority"`
	DueDate             *time.Time   `json:"due_date,omitempty"`
	DueTime             *string      `json:"due_time,omitempty"` // "HH:MM"
	ReminderLeadMinutes int          `json:"reminder_lead_minutes"`
	ReminderSent        bool         `json:"reminder_sent"`
	CreatedAt           time.Time    `json:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at"`
}

// TaskFilter defines the available parameters for filtering tasks.
type TaskFilter struct {
	AssigneeID *int64
	ProjectID  *int64
	Status     *TaskStatus
}

// DueMoment combines the task's due date with its due time (or the given
// default, "HH:MM") in the due date's location. Returns false when the task
// has no due date or the time string is malformed.
func (t *Task) DueMoment(defaultDueTime string) (time.Time, bool) {
	if t.DueDate == nil {
		return time.Time{}, false
	}
	hm := defaultDueTime
	if t.DueTime != nil && *t.DueTime != "" {
		hm = *t.DueTime
	}
	var hour, min int
	if _, err := fmt.Sscanf(hm, "%d:%d", &hour, &min); err != nil {
		return time.Time{}, false
	}
	if hour < 0 || hour > 23 || min < 0 || min > 59 {
		return time.Time{}, false
	}
	d := *t.DueDate
	return time.Date(d.Year(), d.Month(), d.Day(), hour, min, 0, 0, d.Location()), true
}

// DaysUntilDue is the calendar-day difference between the task's due date and
// today, ignoring the time-of-day component. Returns false when the task has
// no due date.
func (t *Task) DaysUntilDue(today time.Time) (int, bool) {
	if t.DueDate == nil {
		return 0, false
	}
	return CalendarDaysBetween(today, *t.DueDate), true
}

// CalendarDaysBetween counts whole calendar days from one moment's date to
// another's, independent of the hours involved.
func CalendarDaysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}
