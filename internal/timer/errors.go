package timer

import "errors"

var (
	ErrNoActiveTimer      = errors.New("no active timer")
	ErrNotExpired         = errors.New("timer has not expired")
	ErrExtraTimeUsed      = errors.New("extra time was already added for this session")
	ErrStatusNotFound     = errors.New("status not found")
	ErrNotStartable       = errors.New("task cannot be started from its current status")
	ErrTransitionInFlight = errors.New("another timer transition is in progress")
)
