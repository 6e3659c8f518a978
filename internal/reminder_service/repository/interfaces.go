package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/qaremind/golang_services/internal/reminder_service/domain"
)

// PgxPool is the subset of *pgxpool.Pool the repositories use.
// pgxmock satisfies it in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// ReminderUpdate carries a partial update; nil fields are left unchanged.
// Completed is deliberately absent: it only moves through MarkCompleted.
type ReminderUpdate struct {
	Title              *string
	Description        *string
	PhoneNumber        *string
	ScheduledFor       *time.Time
	RecurrenceType     *domain.RecurrenceType
	RecurrenceEndDate  *sql.NullTime
	NotificationMethod *domain.NotificationMethod
}

// IsEmpty reports whether the update would change nothing.
func (u ReminderUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.PhoneNumber == nil &&
		u.ScheduledFor == nil && u.RecurrenceType == nil &&
		u.RecurrenceEndDate == nil && u.NotificationMethod == nil
}

// ReminderRepository is the owner-scoped view over the reminders store,
// used by the request-handling paths. Every operation is bounded to ownerID;
// rows owned by anyone else behave as if they do not exist.
type ReminderRepository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Reminder, error)
	GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*domain.Reminder, error)
	Create(ctx context.Context, reminder *domain.Reminder) error
	Update(ctx context.Context, ownerID string, id uuid.UUID, update ReminderUpdate) (*domain.Reminder, error)
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error
	// MarkCompleted sets the completed flag. Completing an already-complete
	// reminder is a no-op success.
	MarkCompleted(ctx context.Context, ownerID string, id uuid.UUID) (*domain.Reminder, error)
}

// DispatchRepository is the privileged, owner-unscoped view used only by the
// scheduler loop: it reads due reminders across all owners and performs the
// narrow pending->sent / pending->failed transitions.
type DispatchRepository interface {
	// ListDue returns reminders with status=pending, completed=false and
	// scheduled_for <= now, ordered by scheduled_for ascending, capped at
	// limit. Returns domain.ErrNoDueReminders when there is no work.
	ListDue(ctx context.Context, now time.Time, limit int) ([]*domain.Reminder, error)
	// MarkSent transitions pending->sent; domain.ErrStatusConflict when the
	// reminder is missing or no longer pending.
	MarkSent(ctx context.Context, id uuid.UUID) error
	// MarkFailed transitions pending->failed recording the delivery cause.
	MarkFailed(ctx context.Context, id uuid.UUID, cause string) error
	// CreateSuccessor inserts the next occurrence of a recurring series.
	CreateSuccessor(ctx context.Context, reminder *domain.Reminder) error
}
