package apperrors

import "errors"

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExists   = errors.New("session already exists for this work")
	ErrSessionFinished = errors.New("session already finished")
	ErrNoMoodEntry     = errors.New("no mood entry")
	ErrAPIUnavailable  = errors.New("api unavailable")
)
