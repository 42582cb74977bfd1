package model

import "time"

// SessionOutcome describes how a timer session ended.
type SessionOutcome string

const (
	OutcomeCompleted SessionOutcome = "completed"
	OutcomeAbandoned SessionOutcome = "abandoned"
)

// SessionRecord is one finished timer session in the local history.
type SessionRecord struct {
	ID              string         `json:"id" db:"id"`
	TaskID          int            `json:"task_id" db:"task_id"`
	TaskTitle       string         `json:"task_title" db:"task_title"`
	AllottedSeconds int            `json:"allotted_seconds" db:"allotted_seconds"`
	ExtraSeconds    int            `json:"extra_seconds" db:"extra_seconds"`
	RemainingAtEnd  int            `json:"remaining_at_end" db:"remaining_at_end"`
	Progress        int            `json:"progress" db:"progress"`
	Outcome         SessionOutcome `json:"outcome" db:"outcome"`
	StartedAt       time.Time      `json:"started_at" db:"started_at"`
	EndedAt         time.Time      `json:"ended_at" db:"ended_at"`
}

// Elapsed returns the wall-clock length of the session.
func (r SessionRecord) Elapsed() time.Duration {
	if r.EndedAt.Before(r.StartedAt) {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}
