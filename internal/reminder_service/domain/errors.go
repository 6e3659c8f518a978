package domain

import "errors"

var (
	// ErrNotFound indicates that a requested reminder was not found or is not
	// visible to the caller.
	ErrNotFound = errors.New("reminder not found")
	// ErrNoDueReminders indicates that no reminders are currently due for dispatch.
	ErrNoDueReminders = errors.New("no due reminders found")
	// ErrStatusConflict indicates a status transition was refused because the
	// reminder is no longer pending.
	ErrStatusConflict = errors.New("reminder is not pending")
)
