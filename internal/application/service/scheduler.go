package service

import (
	"context"

	"carereminder/internal/domain/entity"
)

// SchedulerService keeps one armed timer per Pending reminder and dispatches it at fire time.
type SchedulerService interface {
	// Schedule derives the appointment's reminder and arms it. For "none" or a rejected
	// preference it cancels any existing reminder; rejections are returned to the caller.
	Schedule(ctx context.Context, appointment *entity.Appointment) error
	// Reschedule cancels the current reminder and schedules a fresh one.
	Reschedule(ctx context.Context, appointment *entity.Appointment) error
	// Cancel disarms the appointment's timer and marks its reminder Cancelled.
	Cancel(ctx context.Context, appointmentID string) error
	// RecoverOnStartup re-arms every Pending reminder from the store; overdue ones fire immediately.
	RecoverOnStartup(ctx context.Context) error
	// Armed returns the number of timers currently armed.
	Armed() int
	// Stop disarms all timers and waits for in-flight dispatches to finish.
	Stop()
}
