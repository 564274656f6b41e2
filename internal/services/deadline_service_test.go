package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"planboard/internal/ledger"
	"planboard/internal/models"
)

type emailCall struct {
	to, subject, body, taskTitle string
}

type fakeEmail struct {
	mu    sync.Mutex
	calls []emailCall
	fail  bool
}

func (f *fakeEmail) SendDeadlineEmail(to, subject, body, taskTitle string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, emailCall{to, subject, body, taskTitle})
	if f.fail {
		return errors.New("smtp unreachable")
	}
	return nil
}

func (f *fakeEmail) SendWelcomeEmail(string, string) error { return nil }

func (f *fakeEmail) sent() []emailCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]emailCall, len(f.calls))
	copy(out, f.calls)
	return out
}

type fakeNotifier struct {
	mu      sync.Mutex
	grant   map[int64]bool
	notices []string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{grant: map[int64]bool{}}
}

func (f *fakeNotifier) RequestPermission(userID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.grant[userID] = true
}

func (f *fakeNotifier) Granted(userID int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.grant[userID]
}

func (f *fakeNotifier) Notify(userID int64, title, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.grant[userID] {
		return
	}
	f.notices = append(f.notices, title+": "+body)
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.notices)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []models.AlertEvent
}

func (f *fakePublisher) Publish(_ int64, ev models.AlertEvent) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return 1
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func newScanFixture() (*DeadlineService, *AlertStore, *fakeEmail, *fakeNotifier, *fakePublisher) {
	alerts := NewAlertStore()
	email := &fakeEmail{}
	notif := newFakeNotifier()
	hub := &fakePublisher{}
	svc := NewDeadlineService(ledger.NewMemoryLedger(5), alerts, notif, email, nil, hub, 4)
	return svc, alerts, email, notif, hub
}

func TestScan_UpcomingDeadlineScenario(t *testing.T) {
	svc, alerts, email, notif, _ := newScanFixture()
	notif.RequestPermission(1)
	user := &models.User{ID: 1, Email: "dev@example.com"}
	tasks := []models.Task{{
		ID:      42,
		Title:   "Ship release",
		Status:  models.StatusInProgress,
		DueDate: datePtr(2024, time.October, 28),
	}}

	day1 := time.Date(2024, time.October, 24, 10, 0, 0, 0, time.UTC)
	if got := svc.Scan(context.Background(), user, tasks, day1); got != 1 {
		t.Fatalf("expected 1 alert, got %d", got)
	}

	list := alerts.List(1)
	want := `Upcoming Deadline: "Ship release" is due on Oct 28 (in 4 days).`
	if len(list) != 1 || list[0].Message != want {
		t.Fatalf("unexpected alert list %+v, want message %q", list, want)
	}

	// same day, same task: silent
	if got := svc.Scan(context.Background(), user, tasks, day1.Add(time.Hour)); got != 0 {
		t.Fatalf("expected rerun to stay silent, raised %d", got)
	}
	if len(alerts.List(1)) != 1 {
		t.Fatalf("rerun added alerts: %v", alerts.List(1))
	}

	// next day: new alert with the day count moved on
	day2 := day1.AddDate(0, 0, 1)
	if got := svc.Scan(context.Background(), user, tasks, day2); got != 1 {
		t.Fatalf("expected next-day alert, got %d", got)
	}
	last := alerts.List(1)[1]
	if !strings.Contains(last.Message, "(in 3 days)") {
		t.Errorf("next-day message %q should contain '(in 3 days)'", last.Message)
	}

	svc.Wait()
	if n := len(email.sent()); n != 2 {
		t.Errorf("expected 2 email attempts, got %d", n)
	}
	if notif.count() != 2 {
		t.Errorf("expected 2 local notifications, got %d", notif.count())
	}
}

func TestScan_DayPhrasing(t *testing.T) {
	now := time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)
	cases := []struct {
		days int
		want string
	}{
		{0, "(today)"},
		{1, "(in 1 day)"},
		{4, "(in 4 days)"},
	}
	for _, tc := range cases {
		t.Run(tc.want, func(t *testing.T) {
			svc, alerts, _, _, _ := newScanFixture()
			user := &models.User{ID: 7, Email: "u@example.com"}
			due := now.AddDate(0, 0, tc.days)
			tasks := []models.Task{{ID: 1, Title: "t", Status: models.StatusNotStarted, DueDate: &due}}

			if got := svc.Scan(context.Background(), user, tasks, now); got != 1 {
				t.Fatalf("expected alert for %d days out, got %d", tc.days, got)
			}
			msg := alerts.List(7)[0].Message
			if !strings.Contains(msg, tc.want) {
				t.Errorf("message %q should contain %q", msg, tc.want)
			}
		})
	}
}

func TestScan_OutsideWindowAndDone(t *testing.T) {
	now := time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)
	tooFar := now.AddDate(0, 0, 5)
	passed := now.AddDate(0, 0, -1)
	dueSoon := now.AddDate(0, 0, 2)

	tasks := []models.Task{
		{ID: 1, Title: "too far", Status: models.StatusNotStarted, DueDate: &tooFar},
		{ID: 2, Title: "already passed", Status: models.StatusInProgress, DueDate: &passed},
		{ID: 3, Title: "done anyway", Status: models.StatusDone, DueDate: &dueSoon},
		{ID: 4, Title: "no due date", Status: models.StatusNotStarted},
	}

	svc, alerts, email, _, _ := newScanFixture()
	user := &models.User{ID: 3, Email: "u@example.com"}
	if got := svc.Scan(context.Background(), user, tasks, now); got != 0 {
		t.Fatalf("expected no alerts, got %d", got)
	}
	if len(alerts.List(3)) != 0 {
		t.Errorf("alert list should be empty: %v", alerts.List(3))
	}
	svc.Wait()
	if len(email.sent()) != 0 {
		t.Errorf("no emails expected, got %v", email.sent())
	}
}

func TestScan_LedgerScopedPerUserAndDay(t *testing.T) {
	svc, alerts, _, _, _ := newScanFixture()
	now := time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)
	due := now.AddDate(0, 0, 1)
	tasks := []models.Task{{ID: 9, Title: "shared", Status: models.StatusReview, DueDate: &due}}

	alice := &models.User{ID: 1, Email: "alice@example.com"}
	bob := &models.User{ID: 2, Email: "bob@example.com"}

	if svc.Scan(context.Background(), alice, tasks, now) != 1 {
		t.Fatal("alice should be alerted")
	}
	if svc.Scan(context.Background(), bob, tasks, now) != 1 {
		t.Fatal("bob's ledger entry is independent of alice's")
	}
	if svc.Scan(context.Background(), alice, tasks, now) != 0 {
		t.Fatal("alice already notified today")
	}
	if len(alerts.List(1)) != 1 || len(alerts.List(2)) != 1 {
		t.Errorf("each user should hold exactly one alert")
	}
}

func TestScan_EmailFailureDoesNotBlock(t *testing.T) {
	alerts := NewAlertStore()
	email := &fakeEmail{fail: true}
	notif := newFakeNotifier()
	lg := ledger.NewMemoryLedger(5)
	svc := NewDeadlineService(lg, alerts, notif, email, nil, &fakePublisher{}, 4)

	now := time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)
	dueA := now.AddDate(0, 0, 1)
	dueB := now.AddDate(0, 0, 2)
	tasks := []models.Task{
		{ID: 1, Title: "a", Status: models.StatusNotStarted, DueDate: &dueA},
		{ID: 2, Title: "b", Status: models.StatusNotStarted, DueDate: &dueB},
	}
	user := &models.User{ID: 5, Email: "u@example.com"}

	if got := svc.Scan(context.Background(), user, tasks, now); got != 2 {
		t.Fatalf("email failure must not block the scan, raised %d", got)
	}
	svc.Wait()

	// one attempt each, no retries
	if n := len(email.sent()); n != 2 {
		t.Errorf("expected 2 attempts, got %d", n)
	}
	// ledger still recorded both
	day := ledger.DayKey(now)
	for _, id := range []int64{1, 2} {
		seen, err := lg.Contains(context.Background(), 5, day, id)
		if err != nil || !seen {
			t.Errorf("task %d missing from ledger (seen=%v err=%v)", id, seen, err)
		}
	}
}

func TestScan_PermissionDeniedStillAlertsInApp(t *testing.T) {
	svc, alerts, _, notif, hub := newScanFixture()
	now := time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)
	due := now.AddDate(0, 0, 1)
	user := &models.User{ID: 8, Email: "u@example.com"}
	tasks := []models.Task{{ID: 1, Title: "quiet", Status: models.StatusNotStarted, DueDate: &due}}

	if svc.Scan(context.Background(), user, tasks, now) != 1 {
		t.Fatal("expected in-app alert")
	}
	if notif.count() != 0 {
		t.Errorf("no local notification without permission, got %d", notif.count())
	}
	if len(alerts.List(8)) != 1 {
		t.Errorf("in-app alert must still be recorded")
	}
	// the alert-kind event still reaches connected clients
	hub.mu.Lock()
	defer hub.mu.Unlock()
	if len(hub.events) != 1 || hub.events[0].Kind != models.EventAlert {
		t.Errorf("expected one alert-kind event, got %+v", hub.events)
	}
}
