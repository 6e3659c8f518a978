package domain

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// ReminderStatus represents the delivery lifecycle of a reminder occurrence.
// Transitions are one-way: pending -> sent or pending -> failed.
type ReminderStatus string

const (
	StatusPending ReminderStatus = "pending"
	StatusSent    ReminderStatus = "sent"
	StatusFailed  ReminderStatus = "failed"
)

// RecurrenceType determines how the next occurrence of a series is derived.
type RecurrenceType string

const (
	RecurrenceNone    RecurrenceType = "none"
	RecurrenceDaily   RecurrenceType = "daily"
	RecurrenceWeekly  RecurrenceType = "weekly"
	RecurrenceMonthly RecurrenceType = "monthly"
)

// NotificationMethod selects the transport used to deliver a reminder.
type NotificationMethod string

const (
	MethodSMS  NotificationMethod = "sms"
	MethodCall NotificationMethod = "call"
)

// Reminder is one occurrence in a (possibly recurring) reminder series.
// Completed is an orthogonal user-facing flag, independent of Status;
// once true it never goes back to false.
type Reminder struct {
	ID                 uuid.UUID          `json:"id"`
	UserID             string             `json:"user_id"`
	Title              string             `json:"title"`
	Description        sql.NullString     `json:"description,omitempty"`
	PhoneNumber        string             `json:"phone_number"`
	ScheduledFor       time.Time          `json:"scheduled_for"`
	Status             ReminderStatus     `json:"status"`
	Completed          bool               `json:"completed"`
	RecurrenceType     RecurrenceType     `json:"recurrence_type"`
	RecurrenceEndDate  sql.NullTime       `json:"recurrence_end_date,omitempty"`
	NotificationMethod NotificationMethod `json:"notification_method"`
	FailureReason      sql.NullString     `json:"failure_reason,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// NewReminder creates a pending, uncompleted reminder occurrence.
func NewReminder(
	userID string,
	title string,
	description sql.NullString,
	phoneNumber string,
	scheduledFor time.Time,
	recurrenceType RecurrenceType,
	recurrenceEndDate sql.NullTime,
	method NotificationMethod,
) *Reminder {
	now := time.Now().UTC()
	return &Reminder{
		ID:                 uuid.New(),
		UserID:             userID,
		Title:              title,
		Description:        description,
		PhoneNumber:        phoneNumber,
		ScheduledFor:       scheduledFor.UTC(),
		Status:             StatusPending,
		Completed:          false,
		RecurrenceType:     recurrenceType,
		RecurrenceEndDate:  recurrenceEndDate,
		NotificationMethod: method,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// IsRecurring reports whether this reminder spawns successors.
func (r *Reminder) IsRecurring() bool {
	return r.RecurrenceType != "" && r.RecurrenceType != RecurrenceNone
}

// Successor derives the next occurrence of a recurring series, scheduled at
// next. Everything except the schedule is inherited; the new occurrence is
// always pending and uncompleted. Callers are responsible for end-date gating.
func (r *Reminder) Successor(next time.Time) *Reminder {
	return NewReminder(
		r.UserID,
		r.Title,
		r.Description,
		r.PhoneNumber,
		next,
		r.RecurrenceType,
		r.RecurrenceEndDate,
		r.NotificationMethod,
	)
}
