package domain_test

import (
	"testing"
	"time"

	"moodquest/internal/modules/focus/domain"
)

func minutes(m int) *int { return &m }

func activeSession(planned *int, startedAt time.Time) domain.WorkSession {
	return domain.WorkSession{
		ID:              "sess-1",
		Work:            domain.WorkRef{TaskID: "task-1"},
		PlannedDuration: planned,
		Status:          domain.StatusActive,
		StartedAt:       startedAt,
	}
}

func TestReconcileExactlyAtPlannedBoundary(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := activeSession(minutes(25), now.Add(-1500*time.Second))

	snap := domain.Reconcile(s, now)
	if snap.RemainingSeconds != 0 {
		t.Fatalf("expected 0 remaining, got %d", snap.RemainingSeconds)
	}
	if snap.Overtime {
		t.Fatalf("boundary must not count as overtime")
	}
	if got := snap.Clock(); got != "00:00" {
		t.Fatalf("expected 00:00, got %q", got)
	}
	if !domain.Expired(s, now) {
		t.Fatalf("session must be expired at the boundary")
	}
}

func TestReconcileOvertimeDisplay(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := activeSession(minutes(25), now.Add(-1800*time.Second))

	snap := domain.Reconcile(s, now)
	if snap.RemainingSeconds != -300 {
		t.Fatalf("expected -300 remaining, got %d", snap.RemainingSeconds)
	}
	if !snap.Overtime {
		t.Fatalf("expected overtime")
	}
	if got := snap.Clock(); got != "+05:00" {
		t.Fatalf("expected +05:00, got %q", got)
	}
}

func TestReconcileUntimedNeverOvertime(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := activeSession(nil, now.Add(-10000*time.Second))

	snap := domain.Reconcile(s, now)
	if snap.Overtime {
		t.Fatalf("untimed sessions can never be overtime")
	}
	if got := snap.Clock(); got != "166:40" {
		t.Fatalf("expected plain elapsed 166:40, got %q", got)
	}
	if domain.Expired(s, now) {
		t.Fatalf("untimed sessions never expire")
	}
}

func TestReconcileClampsClockSkewToZero(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := activeSession(minutes(25), now.Add(90*time.Second))

	snap := domain.Reconcile(s, now)
	if snap.ElapsedSeconds != 0 {
		t.Fatalf("skewed start must clamp elapsed to 0, got %d", snap.ElapsedSeconds)
	}
	if got := snap.Clock(); got != "25:00" {
		t.Fatalf("expected full 25:00 remaining, got %q", got)
	}
}

func TestReconcileMonotonicWhileActive(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := activeSession(minutes(25), start)

	prev := -1
	for i := 0; i < 120; i++ {
		snap := domain.Reconcile(s, start.Add(time.Duration(i)*time.Second))
		if snap.ElapsedSeconds < prev {
			t.Fatalf("elapsed decreased from %d to %d at tick %d", prev, snap.ElapsedSeconds, i)
		}
		prev = snap.ElapsedSeconds
	}
}

func TestReconcileFrozenWhilePaused(t *testing.T) {
	t.Parallel()
	s := domain.WorkSession{
		ID:              "sess-1",
		PlannedDuration: minutes(25),
		Status:          domain.StatusPaused,
		StartedAt:       time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC),
		ElapsedAtPause:  10,
	}

	first := domain.Reconcile(s, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	second := domain.Reconcile(s, time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC))
	if first != second {
		t.Fatalf("paused snapshot must be frozen, got %+v then %+v", first, second)
	}
	if first.ElapsedSeconds != 600 {
		t.Fatalf("expected 600 elapsed seconds from pause snapshot, got %d", first.ElapsedSeconds)
	}
	if domain.Expired(s, time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)) {
		t.Fatalf("paused sessions never expire")
	}
}
