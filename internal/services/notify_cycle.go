package services

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"planboard/internal/repositories"
	"planboard/internal/scheduler"
)

const cycleTimeout = 30 * time.Second

// NotifyManager binds one notification cycle to each live user session. The
// cycle runs the reminder evaluator and the deadline scanner immediately
// when the session's realtime channel opens, then on every tick, and stops
// when the last connection for the user closes. Multiple connections of one
// user share a single refcounted cycle.
type NotifyManager struct {
	tasks    repositories.TaskRepository
	users    repositories.UserRepository
	reminder *ReminderService
	deadline *DeadlineService
	interval time.Duration

	mu       sync.Mutex
	sessions map[int64]*session
}

type session struct {
	cycle *scheduler.Cycle
	refs  int
}

func NewNotifyManager(
	tasks repositories.TaskRepository,
	users repositories.UserRepository,
	reminder *ReminderService,
	deadline *DeadlineService,
	interval time.Duration,
) *NotifyManager {
	return &NotifyManager{
		tasks:    tasks,
		users:    users,
		reminder: reminder,
		deadline: deadline,
		interval: interval,
		sessions: make(map[int64]*session),
	}
}

// SessionStarted registers one more live connection for the user, starting
// the cycle on the first.
func (m *NotifyManager) SessionStarted(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[userID]; ok {
		s.refs++
		return
	}

	s := &session{refs: 1}
	s.cycle = scheduler.NewCycle(m.interval, func() { m.runOnce(userID) })
	m.sessions[userID] = s

	if err := s.cycle.Start(); err != nil {
		logrus.WithField("user_id", userID).WithError(err).Error("failed to start notification cycle")
		delete(m.sessions, userID)
	}
}

// SessionEnded drops one connection; the last one out tears the cycle down.
func (m *NotifyManager) SessionEnded(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok {
		return
	}
	s.refs--
	if s.refs > 0 {
		return
	}
	s.cycle.Stop()
	delete(m.sessions, userID)
}

// Active reports whether the user currently has a running cycle.
func (m *NotifyManager) Active(userID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	return ok && s.cycle.Running()
}

func (m *NotifyManager) runOnce(userID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), cycleTimeout)
	defer cancel()

	log := logrus.WithFields(logrus.Fields{
		"component": "notify-cycle",
		"user_id":   userID,
	})

	user, err := m.users.FindByID(ctx, userID)
	if err != nil {
		log.WithError(err).Warn("skipping cycle: user lookup failed")
		return
	}

	tasks, err := m.tasks.FindOpenByAssignee(ctx, userID)
	if err != nil {
		log.WithError(err).Warn("skipping cycle: task snapshot failed")
		return
	}

	now := time.Now()
	fired := m.reminder.Evaluate(ctx, userID, tasks, now)
	raised := m.deadline.Scan(ctx, user, tasks, now)
	if fired > 0 || raised > 0 {
		log.WithFields(logrus.Fields{
			"reminders": fired,
			"deadlines": raised,
		}).Info("notification cycle produced alerts")
	}
}
