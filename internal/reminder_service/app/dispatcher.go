package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/qaremind/golang_services/internal/reminder_service/domain"
	"github.com/qaremind/golang_services/internal/reminder_service/notifier"
	"github.com/qaremind/golang_services/internal/reminder_service/repository"
)

// DispatcherConfig holds configuration specific to the Dispatcher.
type DispatcherConfig struct {
	BatchSize int
}

// Dispatcher drives due reminders through one tick of the delivery cycle:
// load the due set, dispatch each via the Notifier, record the terminal
// status, and spawn the next occurrence of recurring series.
type Dispatcher struct {
	repo     repository.DispatchRepository
	notifier notifier.Notifier
	logger   *slog.Logger
	config   DispatcherConfig
}

func NewDispatcher(
	repo repository.DispatchRepository,
	n notifier.Notifier,
	logger *slog.Logger,
	cfg DispatcherConfig,
) *Dispatcher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	return &Dispatcher{
		repo:     repo,
		notifier: n,
		logger:   logger.With("component", "reminder_dispatcher"),
		config:   cfg,
	}
}

// ProcessDueReminders runs exactly one tick and returns the number of
// reminders attempted. A failure reading the due set is returned as an error
// (the caller retries on the next tick); failures on individual reminders are
// logged and isolated so one bad reminder never aborts the rest of the tick.
func (d *Dispatcher) ProcessDueReminders(ctx context.Context) (int, error) {
	schedulerTicksCounter.Inc()
	now := time.Now().UTC()

	due, err := d.repo.ListDue(ctx, now, d.config.BatchSize)
	if err != nil {
		if errors.Is(err, domain.ErrNoDueReminders) {
			d.logger.DebugContext(ctx, "No due reminders in this tick")
			return 0, nil
		}
		d.logger.ErrorContext(ctx, "Failed to load due reminders", "error", err)
		return 0, fmt.Errorf("failed to load due reminders: %w", err)
	}

	d.logger.InfoContext(ctx, "Processing due reminders", "count", len(due), "due_time", now.Format(time.RFC3339))

	attempted := 0
	for _, reminder := range due {
		// Defensive re-check: the query already filters by time, but a row
		// raced in by a concurrent write must not be dispatched early.
		if reminder.ScheduledFor.After(now) {
			d.logger.WarnContext(ctx, "Skipping not-yet-due reminder from due set", "reminder_id", reminder.ID, "scheduled_for", reminder.ScheduledFor)
			continue
		}
		attempted++
		d.processOne(ctx, reminder)
	}
	return attempted, nil
}

func (d *Dispatcher) processOne(ctx context.Context, reminder *domain.Reminder) {
	method := reminder.NotificationMethod
	d.logger.InfoContext(ctx, "Dispatching reminder", "reminder_id", reminder.ID, "method", method, "title", reminder.Title)

	timer := prometheus.NewTimer(dispatchDurationHist.WithLabelValues(string(method)))
	result := d.notifier.Send(ctx, notifier.SendRequest{
		To:          reminder.PhoneNumber,
		Title:       reminder.Title,
		Description: reminder.Description.String,
		Method:      method,
	})
	timer.ObserveDuration()

	if !result.Success {
		d.logger.WarnContext(ctx, "Reminder dispatch failed", "reminder_id", reminder.ID, "cause", result.ErrorMessage)
		if err := d.repo.MarkFailed(ctx, reminder.ID, result.ErrorMessage); err != nil {
			// Still pending: it will be retried (and likely fail again) next
			// tick. A status conflict means someone else already settled it.
			d.logger.ErrorContext(ctx, "Failed to mark reminder failed", "reminder_id", reminder.ID, "error", err)
		}
		remindersProcessedCounter.WithLabelValues(string(method), string(domain.StatusFailed)).Inc()
		return
	}

	if err := d.repo.MarkSent(ctx, reminder.ID); err != nil {
		// The notification went out but the row could not be stamped. Do not
		// create a successor: if the row is still pending it will be
		// re-dispatched next tick, and the successor must only ever exist once.
		d.logger.ErrorContext(ctx, "Failed to mark reminder sent", "reminder_id", reminder.ID, "error", err)
		remindersProcessedCounter.WithLabelValues(string(method), "error_mark_sent").Inc()
		return
	}
	d.logger.InfoContext(ctx, "Reminder sent", "reminder_id", reminder.ID, "provider_ref", result.ProviderRef)
	remindersProcessedCounter.WithLabelValues(string(method), string(domain.StatusSent)).Inc()

	if reminder.IsRecurring() {
		d.advanceSeries(ctx, reminder)
	}
}

// advanceSeries creates the next occurrence of a recurring reminder after a
// confirmed delivery. Failed occurrences never advance the series: recurrence
// continues only on confirmed delivery so a dead destination cannot produce
// an unbounded stream of failed rows.
func (d *Dispatcher) advanceSeries(ctx context.Context, reminder *domain.Reminder) {
	next := domain.NextOccurrence(reminder.ScheduledFor, reminder.RecurrenceType)
	if !next.After(reminder.ScheduledFor) {
		// RecurrenceNone or an unknown rule; nothing to advance.
		return
	}

	if reminder.RecurrenceEndDate.Valid && next.After(reminder.RecurrenceEndDate.Time) {
		d.logger.InfoContext(ctx, "Recurrence ended", "reminder_id", reminder.ID, "title", reminder.Title, "end_date", reminder.RecurrenceEndDate.Time)
		successorsCounter.WithLabelValues("suppressed").Inc()
		return
	}

	successor := reminder.Successor(next)
	if err := d.repo.CreateSuccessor(ctx, successor); err != nil {
		// The original notification was already delivered; the sent status
		// stands. The gap in the series is surfaced in logs and metrics.
		d.logger.ErrorContext(ctx, "Failed to create successor occurrence", "reminder_id", reminder.ID, "next_scheduled_for", next, "error", err)
		successorsCounter.WithLabelValues("error").Inc()
		return
	}
	d.logger.InfoContext(ctx, "Created successor occurrence", "reminder_id", reminder.ID, "successor_id", successor.ID, "next_scheduled_for", next)
	successorsCounter.WithLabelValues("created").Inc()
}
