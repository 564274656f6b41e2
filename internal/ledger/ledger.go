// Package ledger tracks which tasks have already raised a deadline alert for
// a given user on a given calendar day, so that re-running the scan within
// the same day stays silent.
package ledger

import (
	"context"
	"fmt"
	"time"
)

// DayKey is the ISO form of a calendar day used as part of the ledger key.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Ledger records deadline alerts per (user, calendar day). Entries are
// write-once: a task ID added for a day is never removed within that day, and
// keys for past days are allowed to linger until expiry.
type Ledger interface {
	Contains(ctx context.Context, userID int64, day string, taskID int64) (bool, error)
	AddAll(ctx context.Context, userID int64, day string, taskIDs []int64) error
}

func key(userID int64, day string) string {
	return fmt.Sprintf("notified:%d:%s", userID, day)
}

func parseDay(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
