package app

import (
	"context"
	"log/slog"
	"time"
)

// Scheduler owns the background loop that fires the Dispatcher at a fixed
// interval. Ticks run from a single goroutine, so a slow tick delays the next
// one rather than overlapping it; time.Ticker coalesces any fires missed in
// the meantime.
type Scheduler struct {
	dispatcher *Dispatcher
	interval   time.Duration
	logger     *slog.Logger
}

func NewScheduler(dispatcher *Dispatcher, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		dispatcher: dispatcher,
		interval:   interval,
		logger:     logger.With("component", "reminder_scheduler"),
	}
}

// Run blocks, processing due reminders every interval until ctx is cancelled.
// Tick errors (e.g. the due-set read failing) are logged and retried on the
// next tick; nothing in the loop is fatal to the process.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Reminder scheduler started", "check_interval", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			processed, err := s.dispatcher.ProcessDueReminders(ctx)
			if err != nil {
				s.logger.ErrorContext(ctx, "Scheduler tick failed; will retry next tick", "error", err)
				continue
			}
			if processed > 0 {
				s.logger.InfoContext(ctx, "Scheduler tick complete", "processed", processed)
			}
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "Reminder scheduler stopping", "reason", ctx.Err())
			return ctx.Err()
		}
	}
}
