package repository

import (
	"context"
	"time"

	"carereminder/internal/domain/constant"
	"carereminder/internal/domain/entity"
)

// ReminderRepository is the durable store of scheduled reminders. It is the source of truth;
// the scheduler's timers are a cache rebuilt from ListPending.
type ReminderRepository interface {
	// Upsert cancels any Pending reminder for the same appointment and stores r as the new Pending one,
	// atomically. r.ID is populated on return.
	Upsert(ctx context.Context, r *entity.ScheduledReminder) error
	// Cancel marks the appointment's Pending reminder Cancelled. No-op when there is none.
	Cancel(ctx context.Context, appointmentID string) error
	// MarkDispatching moves reminder id from Pending to Dispatching. Upsert and Cancel leave
	// Dispatching reminders alone, so the send in progress can still be recorded.
	MarkDispatching(ctx context.Context, id uint) (bool, error)
	// MarkFired transitions reminder id from Pending or Dispatching to Fired. No-op on terminal reminders.
	MarkFired(ctx context.Context, id uint) (bool, error)
	// MarkFailed transitions reminder id from Pending or Dispatching to Failed with reason. No-op on terminal reminders.
	MarkFailed(ctx context.Context, id uint, reason string) (bool, error)
	// FailDispatching marks every Dispatching reminder not listed in exclude as Failed with reason.
	// Used at startup for sends interrupted by a crash.
	FailDispatching(ctx context.Context, reason string, exclude []uint) (int64, error)
	// ListPending retrieves every Pending reminder, oldest fire time first.
	ListPending(ctx context.Context) ([]*entity.ScheduledReminder, error)
	// Get retrieves the most recent reminder for an appointment.
	Get(ctx context.Context, appointmentID string) (*entity.ScheduledReminder, error)
	// FindByID retrieves a reminder by its row ID.
	FindByID(ctx context.Context, id uint) (*entity.ScheduledReminder, error)
	// ListByStatus retrieves up to limit reminders with the given status, newest first.
	ListByStatus(ctx context.Context, status constant.ReminderStatus, limit int) ([]*entity.ScheduledReminder, error)
	// DeleteTerminalOlderThan purges terminal reminders last updated before threshold.
	DeleteTerminalOlderThan(ctx context.Context, threshold time.Time) (int64, error)
}
