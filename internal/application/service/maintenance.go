package service

import (
	"context"
	"time"

	"carereminder/internal/application/dto"
)

// OperatorStats combines dispatch counters with the scheduler's armed-timer count and the
// next housekeeping run when one is scheduled.
type OperatorStats struct {
	DispatchStats
	Armed              int        `json:"armed"`
	NextHousekeepingAt *time.Time `json:"nextHousekeepingAt,omitempty"`
}

// HousekeepingSchedule reports when the periodic purge runs next.
type HousekeepingSchedule interface {
	NextRun() time.Time
}

// MaintenanceService covers operator views and periodic housekeeping of the reminder store.
type MaintenanceService interface {
	// ListReminders lists reminders in one status, most recently updated first.
	ListReminders(ctx context.Context, req dto.ListRemindersRequest) ([]dto.ReminderResponse, error)
	// Stats returns dispatch counters, the number of armed timers and the next housekeeping run.
	Stats() OperatorStats
	// PurgeTerminal deletes Fired, Failed and Cancelled reminders older than the retention window.
	PurgeTerminal(ctx context.Context) (int64, error)
}
