package freshness

import (
	"sync"
	"testing"
	"time"
)

func TestTracker_NoMutationYet(t *testing.T) {
	tr := NewTracker()

	if secs, ok := tr.Seconds(); ok {
		t.Errorf("expected no reading before first touch, got %d", secs)
	}
}

func TestTracker_SecondsSinceTouch(t *testing.T) {
	current := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	tr := NewTrackerWithClock(func() time.Time { return current })

	tr.Touch()

	secs, ok := tr.Seconds()
	if !ok || secs != 0 {
		t.Errorf("immediately after touch: expected 0s, got %d ok=%v", secs, ok)
	}

	current = current.Add(4700 * time.Millisecond)
	secs, ok = tr.Seconds()
	if !ok || secs != 4 {
		t.Errorf("after 4.7s: expected 4 (whole seconds), got %d ok=%v", secs, ok)
	}
}

func TestTracker_TouchResetsElapsed(t *testing.T) {
	current := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	tr := NewTrackerWithClock(func() time.Time { return current })

	tr.Touch()
	current = current.Add(30 * time.Second)
	tr.Touch()
	current = current.Add(2 * time.Second)

	if secs, _ := tr.Seconds(); secs != 2 {
		t.Errorf("expected 2s since latest touch, got %d", secs)
	}
}

func TestTracker_ClockSkewClampsToZero(t *testing.T) {
	current := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	tr := NewTrackerWithClock(func() time.Time { return current })

	tr.Touch()
	current = current.Add(-5 * time.Second)

	if secs, _ := tr.Seconds(); secs != 0 {
		t.Errorf("negative elapsed must clamp to 0, got %d", secs)
	}
}

func TestTracker_ConcurrentAccess(t *testing.T) {
	tr := NewTracker()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			tr.Touch()
		}()
		go func() {
			defer wg.Done()
			tr.Seconds()
		}()
	}
	wg.Wait()

	if _, ok := tr.Seconds(); !ok {
		t.Error("expected a reading after touches")
	}
}
