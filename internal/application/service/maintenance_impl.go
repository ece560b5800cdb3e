package service

import (
	"context"
	"fmt"
	"time"

	"carereminder/internal/application/dto"
	"carereminder/internal/domain/constant"
	"carereminder/internal/domain/repository"
	appErrors "carereminder/internal/pkg/errors"
	"carereminder/internal/pkg/logger"

	"github.com/pkg/errors"
)

const (
	defaultRetention = 30 * 24 * time.Hour
	defaultListLimit = 100
)

type maintenanceService struct {
	reminderRepo repository.ReminderRepository
	scheduler    SchedulerService
	dispatcher   DispatcherService
	housekeeping HousekeepingSchedule
	retention    time.Duration
	now          func() time.Time
	log          logger.Logger
}

// NewMaintenanceService creates a new instance of MaintenanceService implementation.
// retention defaults to 30 days and now to time.Now. housekeeping may be nil.
func NewMaintenanceService(
	reminderRepo repository.ReminderRepository,
	scheduler SchedulerService,
	dispatcher DispatcherService,
	housekeeping HousekeepingSchedule,
	retention time.Duration,
	now func() time.Time,
	log logger.Logger,
) MaintenanceService {
	if retention <= 0 {
		retention = defaultRetention
	}
	if now == nil {
		now = time.Now
	}
	return &maintenanceService{
		reminderRepo: reminderRepo,
		scheduler:    scheduler,
		dispatcher:   dispatcher,
		housekeeping: housekeeping,
		retention:    retention,
		now:          now,
		log:          log,
	}
}

// ListReminders lists reminders in one status, most recently updated first.
func (s *maintenanceService) ListReminders(ctx context.Context, req dto.ListRemindersRequest) ([]dto.ReminderResponse, error) {
	status := req.Status
	if status == "" {
		status = constant.ReminderFailed
	}
	if !status.Valid() {
		return nil, errors.Wrapf(appErrors.ErrInvalidInput, "unknown status %q", string(status))
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	reminders, err := s.reminderRepo.ListByStatus(ctx, status, limit)
	if err != nil {
		s.log.Error(fmt.Sprintf("Failed to list %s reminders", status), err)
		return nil, errors.Wrapf(appErrors.ErrDatabaseOperation, "%v", err)
	}
	return dto.ToReminderResponseList(reminders), nil
}

// Stats returns dispatch counters and the number of armed timers.
func (s *maintenanceService) Stats() OperatorStats {
	stats := OperatorStats{
		DispatchStats: s.dispatcher.Stats(),
		Armed:         s.scheduler.Armed(),
	}
	if s.housekeeping != nil {
		if next := s.housekeeping.NextRun(); !next.IsZero() {
			stats.NextHousekeepingAt = &next
		}
	}
	return stats
}

// PurgeTerminal deletes Fired, Failed and Cancelled reminders older than the retention window.
// Pending reminders are never touched.
func (s *maintenanceService) PurgeTerminal(ctx context.Context) (int64, error) {
	threshold := s.now().Add(-s.retention)
	deleted, err := s.reminderRepo.DeleteTerminalOlderThan(ctx, threshold)
	if err != nil {
		s.log.Error("Failed to purge terminal reminders", err)
		return 0, errors.Wrapf(appErrors.ErrDatabaseOperation, "%v", err)
	}
	s.log.Info(fmt.Sprintf("Purged %d terminal reminders last updated before %s",
		deleted, threshold.UTC().Format(time.RFC3339)))
	return deleted, nil
}
