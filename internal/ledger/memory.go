package ledger

import (
	"context"
	"sync"
)

// MemoryLedger is a process-local Ledger for tests and single-node dev runs.
// It keeps only the most recent days per user, pruning older keys lazily on
// write.
type MemoryLedger struct {
	mu       sync.Mutex
	entries  map[string]map[int64]struct{}
	keepDays int
}

func NewMemoryLedger(keepDays int) *MemoryLedger {
	if keepDays <= 0 {
		keepDays = 5
	}
	return &MemoryLedger{
		entries:  make(map[string]map[int64]struct{}),
		keepDays: keepDays,
	}
}

func (l *MemoryLedger) Contains(_ context.Context, userID int64, day string, taskID int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	set, ok := l.entries[key(userID, day)]
	if !ok {
		return false, nil
	}
	_, found := set[taskID]
	return found, nil
}

func (l *MemoryLedger) AddAll(_ context.Context, userID int64, day string, taskIDs []int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	k := key(userID, day)
	set, ok := l.entries[k]
	if !ok {
		set = make(map[int64]struct{})
		l.entries[k] = set
	}
	for _, id := range taskIDs {
		set[id] = struct{}{}
	}
	l.pruneLocked(day)
	return nil
}

// pruneLocked drops keys for days lexicographically older than keepDays
// before the given day. ISO day strings compare in date order.
func (l *MemoryLedger) pruneLocked(day string) {
	cutoff := day
	if len(l.entries) <= l.keepDays {
		return
	}
	for k := range l.entries {
		// key layout: notified:<user>:<yyyy-mm-dd>
		if len(k) < len("2006-01-02") {
			continue
		}
		d := k[len(k)-len("2006-01-02"):]
		if olderThan(d, cutoff, l.keepDays) {
			delete(l.entries, k)
		}
	}
}

func olderThan(day, ref string, days int) bool {
	t, err := parseDay(day)
	if err != nil {
		return false
	}
	r, err := parseDay(ref)
	if err != nil {
		return false
	}
	return r.Sub(t).Hours() > float64(days)*24
}
