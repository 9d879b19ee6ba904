package domain

import (
	"fmt"
	"time"

	apperrors "moodquest/internal/platform/errors"
)

// NoTimerThresholdMinutes is the wire-level sentinel the session service uses
// for untimed sessions: a planned duration at or above this value means
// "track elapsed time only". Inside the client the sentinel is normalized to
// a nil PlannedDuration at decode time and restored at encode time.
const NoTimerThresholdMinutes = 480

// MaxPlannedMinutes bounds the timed range a client may request.
const MaxPlannedMinutes = NoTimerThresholdMinutes - 1

// WorkRef binds a session to at most one unit of work. Both fields empty
// means a free, untargeted session.
type WorkRef struct {
	TaskID    string
	SubtaskID string
}

func (r WorkRef) Zero() bool {
	return r.TaskID == "" && r.SubtaskID == ""
}

func (r WorkRef) Validate() error {
	if r.TaskID != "" && r.SubtaskID != "" {
		return fmt.Errorf("work ref may target a task or a subtask, not both: %w", apperrors.ErrInvalidInput)
	}
	return nil
}

func (r WorkRef) String() string {
	switch {
	case r.TaskID != "":
		return "task:" + r.TaskID
	case r.SubtaskID != "":
		return "subtask:" + r.SubtaskID
	default:
		return "free"
	}
}

type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether the lifecycle graph allows moving to the
// given status. Terminal states allow nothing.
func (s Status) CanTransition(to Status) bool {
	if s.Terminal() {
		return false
	}
	switch to {
	case StatusActive:
		return s == StatusPaused
	case StatusPaused:
		return s == StatusActive
	case StatusCompleted, StatusCancelled:
		return s == StatusActive || s == StatusPaused
	}
	return false
}

// WorkSession is a focus session as reported by the server. StartedAt is the
// server clock instant of the most recent transition into active; elapsed
// time for an active session is always derived from it, never accumulated
// locally. ElapsedAtPause (minutes) is authoritative only while paused.
type WorkSession struct {
	ID              string
	Work            WorkRef
	PlannedDuration *int // minutes; nil means no timer, elapsed tracking only
	Status          Status
	StartedAt       time.Time
	ElapsedAtPause  int
}

func (s WorkSession) Untimed() bool {
	return s.PlannedDuration == nil
}

// HistoryEntry is one finished session in the local history read model.
type HistoryEntry struct {
	SessionID      string
	Work           WorkRef
	Outcome        Status
	StartedAt      time.Time
	EndedAt        time.Time
	FocusedMinutes int
}

type HistoryTotals struct {
	Sessions       int
	FocusedMinutes int
}
