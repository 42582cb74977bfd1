package model

import (
	"strconv"
	"time"
)

// StatusKind is the normalized lifecycle stage of a task. The backend
// stores free-form status names; they are mapped onto these kinds by
// alias matching.
type StatusKind string

const (
	StatusTodo       StatusKind = "todo"
	StatusInProgress StatusKind = "in_progress"
	StatusDone       StatusKind = "done"
	StatusUnknown    StatusKind = ""
)

// DateLayout is the calendar date format the backend uses for task dates.
const DateLayout = "2006-01-02"

// Task is the local copy of a help-desk task. The backend owns it; the
// console only holds a transient read/write copy.
type Task struct {
	// ID is the backend identifier.
	ID int `json:"id" db:"id"`

	// ProjectID references the project the task belongs to.
	ProjectID int `json:"project_id" db:"project_id"`

	Title       string `json:"title" db:"title"`
	Description string `json:"description" db:"description"`

	// StatusID references one of the statuses returned by the backend.
	StatusID int `json:"status_id" db:"status_id"`

	// Priority is the backend's free-form priority label.
	Priority string `json:"priority" db:"priority"`

	Price float64 `json:"price" db:"price"`

	// Duration is the allotted time as "HH:MM:SS", optionally with a
	// fractional seconds suffix.
	Duration string `json:"duration" db:"duration"`

	// DateStart and DateEnd are calendar dates (YYYY-MM-DD) or empty.
	DateStart string `json:"date_start" db:"date_start"`
	DateEnd   string `json:"date_end" db:"date_end"`

	// Assignee is the id of the assigned agent, kept as text because the
	// backend is not consistent about its type.
	Assignee string `json:"assignee" db:"assignee"`

	// Progress is a percentage. It may exceed 100 when extra time was used.
	Progress int `json:"progress" db:"progress"`

	// FetchedAt is when this copy was last retrieved from the backend.
	FetchedAt time.Time `json:"fetched_at" db:"fetched_at"`
}

// Key returns the task id as a string, used for notification and
// history references.
func (t Task) Key() string {
	return strconv.Itoa(t.ID)
}

// Status is a task status entry defined by the backend.
type Status struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}
