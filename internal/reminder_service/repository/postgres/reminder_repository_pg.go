package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/qaremind/golang_services/internal/reminder_service/domain"
	"github.com/qaremind/golang_services/internal/reminder_service/repository"
)

const reminderColumns = `id, user_id, title, description, phone_number, scheduled_for, status, completed, recurrence_type, recurrence_end_date, notification_method, failure_reason, created_at, updated_at`

// PgReminderRepository implements both repository.ReminderRepository (the
// owner-scoped CRUD view) and repository.DispatchRepository (the scheduler's
// owner-unscoped view) over the reminders table.
type PgReminderRepository struct {
	db     repository.PgxPool
	logger *slog.Logger
}

func NewPgReminderRepository(db repository.PgxPool, logger *slog.Logger) *PgReminderRepository {
	return &PgReminderRepository{db: db, logger: logger.With("component", "reminder_repository_pg")}
}

func scanReminder(row pgx.Row) (*domain.Reminder, error) {
	var r domain.Reminder
	err := row.Scan(
		&r.ID, &r.UserID, &r.Title, &r.Description, &r.PhoneNumber, &r.ScheduledFor,
		&r.Status, &r.Completed, &r.RecurrenceType, &r.RecurrenceEndDate,
		&r.NotificationMethod, &r.FailureReason, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (repo *PgReminderRepository) collectReminders(rows pgx.Rows) ([]*domain.Reminder, error) {
	defer rows.Close()
	var reminders []*domain.Reminder
	for rows.Next() {
		reminder, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reminder row: %w", err)
		}
		reminders = append(reminders, reminder)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reminder rows: %w", err)
	}
	return reminders, nil
}

// --- Owner-scoped view ---

func (repo *PgReminderRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE user_id = $1 ORDER BY scheduled_for ASC`
	rows, err := repo.db.Query(ctx, query, ownerID)
	if err != nil {
		repo.logger.ErrorContext(ctx, "Error listing reminders", "error", err, "user_id", ownerID)
		return nil, err
	}
	return repo.collectReminders(rows)
}

func (repo *PgReminderRepository) GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*domain.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE id = $1 AND user_id = $2`
	reminder, err := scanReminder(repo.db.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		repo.logger.ErrorContext(ctx, "Error getting reminder by ID", "error", err, "reminder_id", id)
		return nil, err
	}
	return reminder, nil
}

func (repo *PgReminderRepository) Create(ctx context.Context, reminder *domain.Reminder) error {
	query := `
		INSERT INTO reminders (id, user_id, title, description, phone_number, scheduled_for, status, completed, recurrence_type, recurrence_end_date, notification_method, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := repo.db.Exec(ctx, query,
		reminder.ID, reminder.UserID, reminder.Title, reminder.Description, reminder.PhoneNumber,
		reminder.ScheduledFor, reminder.Status, reminder.Completed, reminder.RecurrenceType,
		reminder.RecurrenceEndDate, reminder.NotificationMethod, reminder.CreatedAt, reminder.UpdatedAt,
	)
	if err != nil {
		repo.logger.ErrorContext(ctx, "Error creating reminder", "error", err, "reminder_id", reminder.ID)
		return err
	}
	repo.logger.InfoContext(ctx, "Reminder created", "reminder_id", reminder.ID, "scheduled_for", reminder.ScheduledFor)
	return nil
}

func (repo *PgReminderRepository) Update(ctx context.Context, ownerID string, id uuid.UUID, update repository.ReminderUpdate) (*domain.Reminder, error) {
	if update.IsEmpty() {
		return repo.GetByID(ctx, ownerID, id)
	}

	var setClauses []string
	var args []interface{}
	argCounter := 1

	addClause := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argCounter))
		args = append(args, value)
		argCounter++
	}

	if update.Title != nil {
		addClause("title", *update.Title)
	}
	if update.Description != nil {
		addClause("description", *update.Description)
	}
	if update.PhoneNumber != nil {
		addClause("phone_number", *update.PhoneNumber)
	}
	if update.ScheduledFor != nil {
		addClause("scheduled_for", update.ScheduledFor.UTC())
	}
	if update.RecurrenceType != nil {
		addClause("recurrence_type", *update.RecurrenceType)
	}
	if update.RecurrenceEndDate != nil {
		addClause("recurrence_end_date", *update.RecurrenceEndDate)
	}
	if update.NotificationMethod != nil {
		addClause("notification_method", *update.NotificationMethod)
	}
	addClause("updated_at", time.Now().UTC())

	query := fmt.Sprintf(
		"UPDATE reminders SET %s WHERE id = $%d AND user_id = $%d RETURNING %s",
		strings.Join(setClauses, ", "), argCounter, argCounter+1, reminderColumns,
	)
	args = append(args, id, ownerID)

	reminder, err := scanReminder(repo.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		repo.logger.ErrorContext(ctx, "Error updating reminder", "error", err, "reminder_id", id)
		return nil, err
	}
	repo.logger.InfoContext(ctx, "Reminder updated", "reminder_id", id)
	return reminder, nil
}

func (repo *PgReminderRepository) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	query := `DELETE FROM reminders WHERE id = $1 AND user_id = $2`
	tag, err := repo.db.Exec(ctx, query, id, ownerID)
	if err != nil {
		repo.logger.ErrorContext(ctx, "Error deleting reminder", "error", err, "reminder_id", id)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	repo.logger.InfoContext(ctx, "Reminder deleted", "reminder_id", id)
	return nil
}

// MarkCompleted is monotonic: it only ever sets completed to true, and
// re-completing is a no-op success.
func (repo *PgReminderRepository) MarkCompleted(ctx context.Context, ownerID string, id uuid.UUID) (*domain.Reminder, error) {
	query := `
		UPDATE reminders SET completed = TRUE, updated_at = $1
		WHERE id = $2 AND user_id = $3
		RETURNING ` + reminderColumns
	reminder, err := scanReminder(repo.db.QueryRow(ctx, query, time.Now().UTC(), id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		repo.logger.ErrorContext(ctx, "Error marking reminder completed", "error", err, "reminder_id", id)
		return nil, err
	}
	return reminder, nil
}

// --- Scheduler view (owner-unscoped) ---

func (repo *PgReminderRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*domain.Reminder, error) {
	query := `
		SELECT ` + reminderColumns + `
		FROM reminders
		WHERE status = $1 AND completed = FALSE AND scheduled_for <= $2
		ORDER BY scheduled_for ASC
		LIMIT $3
	`
	rows, err := repo.db.Query(ctx, query, domain.StatusPending, now.UTC(), limit)
	if err != nil {
		repo.logger.ErrorContext(ctx, "Error listing due reminders", "error", err)
		return nil, err
	}
	reminders, err := repo.collectReminders(rows)
	if err != nil {
		return nil, err
	}
	if len(reminders) == 0 {
		return nil, domain.ErrNoDueReminders
	}
	return reminders, nil
}

// MarkSent transitions pending->sent. The WHERE status guard makes the write
// conditional so a reminder already transitioned elsewhere is never reverted
// or double-stamped.
func (repo *PgReminderRepository) MarkSent(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE reminders SET status = $1, failure_reason = NULL, updated_at = $2
		WHERE id = $3 AND status = $4
	`
	tag, err := repo.db.Exec(ctx, query, domain.StatusSent, time.Now().UTC(), id, domain.StatusPending)
	if err != nil {
		repo.logger.ErrorContext(ctx, "Error marking reminder sent", "error", err, "reminder_id", id)
		return err
	}
	if tag.RowsAffected() == 0 {
		repo.logger.WarnContext(ctx, "Reminder missing or not pending on mark-sent", "reminder_id", id)
		return domain.ErrStatusConflict
	}
	return nil
}

// MarkFailed transitions pending->failed, recording the delivery error cause.
func (repo *PgReminderRepository) MarkFailed(ctx context.Context, id uuid.UUID, cause string) error {
	query := `
		UPDATE reminders SET status = $1, failure_reason = $2, updated_at = $3
		WHERE id = $4 AND status = $5
	`
	tag, err := repo.db.Exec(ctx, query, domain.StatusFailed, cause, time.Now().UTC(), id, domain.StatusPending)
	if err != nil {
		repo.logger.ErrorContext(ctx, "Error marking reminder failed", "error", err, "reminder_id", id)
		return err
	}
	if tag.RowsAffected() == 0 {
		repo.logger.WarnContext(ctx, "Reminder missing or not pending on mark-failed", "reminder_id", id)
		return domain.ErrStatusConflict
	}
	return nil
}

func (repo *PgReminderRepository) CreateSuccessor(ctx context.Context, reminder *domain.Reminder) error {
	return repo.Create(ctx, reminder)
}
