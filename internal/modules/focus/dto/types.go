package dto

import (
	"encoding/json"
	"time"
)

type StartInput struct {
	TaskID         string
	SubtaskID      string
	PlannedMinutes int
	Untimed        bool
}

type SessionOutput struct {
	ID             string
	TaskID         string
	SubtaskID      string
	Work           string
	PlannedMinutes int
	Untimed        bool
	Status         string
	StartedAt      time.Time
	ElapsedAtPause int
}

// CompleteOutput carries the opaque rewards payload the server may attach to
// a completion (XP, cards). The client forwards it to the UI unparsed.
type CompleteOutput struct {
	Session SessionOutput
	Rewards json.RawMessage
}

type RefreshOutput struct {
	Sessions int
}

type HistoryEntryOutput struct {
	SessionID      string
	Work           string
	Outcome        string
	StartedAt      time.Time
	EndedAt        time.Time
	FocusedMinutes int
}

type HistoryTotalsOutput struct {
	Sessions       int
	FocusedMinutes int
}
