package ledger

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLedger_ContainsAndAddAll(t *testing.T) {
	l := NewMemoryLedger(5)
	ctx := context.Background()

	seen, err := l.Contains(ctx, 1, "2024-10-24", 42)
	if err != nil {
		t.Fatalf("contains: %v", err)
	}
	if seen {
		t.Fatal("empty ledger should not contain anything")
	}

	if err := l.AddAll(ctx, 1, "2024-10-24", []int64{42, 43}); err != nil {
		t.Fatalf("addall: %v", err)
	}

	for _, id := range []int64{42, 43} {
		seen, _ := l.Contains(ctx, 1, "2024-10-24", id)
		if !seen {
			t.Errorf("task %d should be recorded", id)
		}
	}

	t.Run("scoped per user", func(t *testing.T) {
		seen, _ := l.Contains(ctx, 2, "2024-10-24", 42)
		if seen {
			t.Error("another user's ledger must be independent")
		}
	})

	t.Run("scoped per day", func(t *testing.T) {
		seen, _ := l.Contains(ctx, 1, "2024-10-25", 42)
		if seen {
			t.Error("another day's ledger must be independent")
		}
	})

	t.Run("extends existing entry", func(t *testing.T) {
		if err := l.AddAll(ctx, 1, "2024-10-24", []int64{44}); err != nil {
			t.Fatalf("addall: %v", err)
		}
		for _, id := range []int64{42, 44} {
			seen, _ := l.Contains(ctx, 1, "2024-10-24", id)
			if !seen {
				t.Errorf("task %d should still be recorded", id)
			}
		}
	})
}

func TestDayKey(t *testing.T) {
	moment := time.Date(2024, time.October, 24, 23, 59, 0, 0, time.UTC)
	if got := DayKey(moment); got != "2024-10-24" {
		t.Errorf("DayKey = %q, want 2024-10-24", got)
	}
}
