package service

import (
	"context"
	"time"

	"carereminder/internal/domain/constant"
	"carereminder/internal/domain/entity"
)

// FireResult is the outcome of dispatching one reminder.
type FireResult struct {
	ReminderID    uint
	AppointmentID string
	// Status is Fired or Failed, or the reminder's current status when Skipped.
	Status constant.ReminderStatus
	// Reason is the failure reason code (InvalidToken, DeliveryFailed); empty on success.
	Reason string
	Err    error
	// Skipped is set when the reminder was no longer Pending and nothing was sent.
	Skipped bool
}

// DispatchStats are counters for operator visibility of fire-time outcomes.
type DispatchStats struct {
	Dispatched     int64     `json:"dispatched"`
	Fired          int64     `json:"fired"`
	Failed         int64     `json:"failed"`
	InvalidToken   int64     `json:"invalidToken"`
	DeliveryFailed int64     `json:"deliveryFailed"`
	Skipped        int64     `json:"skipped"`
	LastDispatchAt time.Time `json:"lastDispatchAt"`
}

// DispatcherService sends a due reminder through the push gateway and records the outcome.
type DispatcherService interface {
	// Dispatch makes exactly one delivery attempt for r. It never retries. snapshot is the
	// appointment as it was when the reminder fired; it is used when the appointment has since
	// been deleted. It may be nil.
	Dispatch(ctx context.Context, r *entity.ScheduledReminder, snapshot *entity.Appointment) FireResult
	// Stats returns a snapshot of the dispatch counters.
	Stats() DispatchStats
}
