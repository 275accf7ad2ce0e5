package cleanup

import (
	"context"
	"testing"
	"time"
)

type storedNotification struct {
	IsRead    bool
	CreatedAt time.Time
}

type fakePurger struct {
	items []storedNotification
}

func (f *fakePurger) DeleteReadOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	kept := f.items[:0]
	var purged int64
	for _, item := range f.items {
		if item.IsRead && item.CreatedAt.Before(cutoff) {
			purged++
			continue
		}
		kept = append(kept, item)
	}
	f.items = kept
	return purged, nil
}

func TestRunPurgesOnlyStaleReadNotifications(t *testing.T) {
	now := time.Date(2026, time.February, 10, 12, 0, 0, 0, time.UTC)

	purger := &fakePurger{items: []storedNotification{
		{IsRead: true, CreatedAt: now.Add(-31 * 24 * time.Hour)},
		{IsRead: false, CreatedAt: now.Add(-31 * 24 * time.Hour)},
		{IsRead: true, CreatedAt: now.Add(-29 * 24 * time.Hour)},
	}}

	job := New(purger, 30*24*time.Hour, nil)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run cleanup job: %v", err)
	}

	if len(purger.items) != 2 {
		t.Fatalf("expected 2 surviving notifications, got %d", len(purger.items))
	}
	for _, item := range purger.items {
		if item.IsRead && item.CreatedAt.Before(now.Add(-30*24*time.Hour)) {
			t.Fatalf("stale read notification survived: %+v", item)
		}
	}
}

func TestRunWithoutPurgerIsNoOp(t *testing.T) {
	job := New(nil, 0, nil)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run without purger: %v", err)
	}
}
