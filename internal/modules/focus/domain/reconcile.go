package domain

import (
	"fmt"
	"time"
)

// Snapshot is the display-ready derivation of a session's elapsed state at
// one instant. It is recomputed from absolute timestamps on every tick; no
// caller may keep its own incremental accumulator, so that every surface
// showing the same session agrees within the same second.
type Snapshot struct {
	ElapsedSeconds   int
	PlannedSeconds   int
	RemainingSeconds int
	NoTimer          bool
	Overtime         bool
}

// Reconcile derives a Snapshot from the session and the wall clock.
// Paused sessions are frozen at the server-reported pause snapshot; active
// sessions derive from now-StartedAt, clamped at zero against clock skew.
func Reconcile(s WorkSession, now time.Time) Snapshot {
	snap := Snapshot{NoTimer: s.PlannedDuration == nil}

	if s.Status == StatusPaused {
		snap.ElapsedSeconds = s.ElapsedAtPause * 60
	} else {
		elapsed := int(now.Sub(s.StartedAt) / time.Second)
		if elapsed < 0 {
			elapsed = 0
		}
		snap.ElapsedSeconds = elapsed
	}

	if !snap.NoTimer {
		snap.PlannedSeconds = *s.PlannedDuration * 60
		snap.RemainingSeconds = snap.PlannedSeconds - snap.ElapsedSeconds
		snap.Overtime = snap.RemainingSeconds < 0
	}
	return snap
}

// Clock renders the snapshot as mm:ss: remaining time while a timer runs,
// overtime with a leading +, plain elapsed time in no-timer mode.
func (sn Snapshot) Clock() string {
	secs := sn.ElapsedSeconds
	prefix := ""
	if !sn.NoTimer {
		secs = sn.RemainingSeconds
		if sn.Overtime {
			secs = -sn.RemainingSeconds
			prefix = "+"
		}
	}
	return fmt.Sprintf("%s%02d:%02d", prefix, secs/60, secs%60)
}

// Expired reports whether the session is a timed, active session whose
// planned duration has fully elapsed. The full-screen timer surface uses it
// to trigger auto-completion.
func Expired(s WorkSession, now time.Time) bool {
	if s.Status != StatusActive || s.PlannedDuration == nil {
		return false
	}
	return Reconcile(s, now).RemainingSeconds <= 0
}
