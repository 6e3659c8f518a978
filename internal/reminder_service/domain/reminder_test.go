package domain

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReminderDefaults(t *testing.T) {
	scheduledFor := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	r := NewReminder("user-1", "Standup", sql.NullString{}, "+15550001111", scheduledFor, RecurrenceNone, sql.NullTime{}, MethodSMS)

	assert.NotEqual(t, uuid.Nil, r.ID)
	assert.Equal(t, StatusPending, r.Status)
	assert.False(t, r.Completed)
	assert.Equal(t, scheduledFor, r.ScheduledFor)
	assert.False(t, r.IsRecurring())
}

func TestSuccessorInheritsEverythingButSchedule(t *testing.T) {
	scheduledFor := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	endDate := sql.NullTime{Time: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), Valid: true}
	orig := NewReminder(
		"user-1",
		"Water the plants",
		sql.NullString{String: "Balcony and kitchen", Valid: true},
		"+15550001111",
		scheduledFor,
		RecurrenceDaily,
		endDate,
		MethodCall,
	)
	orig.Status = StatusSent
	orig.Completed = true

	next := NextOccurrence(orig.ScheduledFor, orig.RecurrenceType)
	succ := orig.Successor(next)

	require.NotNil(t, succ)
	assert.NotEqual(t, orig.ID, succ.ID)
	assert.Equal(t, orig.UserID, succ.UserID)
	assert.Equal(t, orig.Title, succ.Title)
	assert.Equal(t, orig.Description, succ.Description)
	assert.Equal(t, orig.PhoneNumber, succ.PhoneNumber)
	assert.Equal(t, orig.RecurrenceType, succ.RecurrenceType)
	assert.Equal(t, orig.RecurrenceEndDate, succ.RecurrenceEndDate)
	assert.Equal(t, orig.NotificationMethod, succ.NotificationMethod)

	// The successor is a fresh pending occurrence regardless of the
	// predecessor's terminal state.
	assert.Equal(t, StatusPending, succ.Status)
	assert.False(t, succ.Completed)
	assert.True(t, succ.ScheduledFor.After(orig.ScheduledFor))
	assert.Equal(t, next, succ.ScheduledFor)
}
