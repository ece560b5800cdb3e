package sqlite

import (
	"context"
	"time"

	"carereminder/internal/domain/constant"
	"carereminder/internal/domain/entity"
	"carereminder/internal/domain/repository"
	appErrors "carereminder/internal/pkg/errors"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type reminderRepository struct {
	db *gorm.DB
}

// NewReminderRepository creates a new instance of ReminderRepository.
func NewReminderRepository(db *gorm.DB) repository.ReminderRepository {
	return &reminderRepository{db: db}
}

// Upsert cancels the appointment's Pending reminder, if any, and inserts r as Pending in one transaction.
func (r *reminderRepository) Upsert(ctx context.Context, rem *entity.ScheduledReminder) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := cancelPending(tx, rem.AppointmentID); err != nil {
			return err
		}
		rem.ID = 0
		rem.Status = constant.ReminderPending
		rem.LastError = nil
		rem.FireAt = rem.FireAt.UTC()
		return tx.Create(rem).Error
	})
	if err != nil {
		return errors.Wrapf(err, "failed to upsert reminder for appointment %s", rem.AppointmentID)
	}
	return nil
}

// Cancel marks the appointment's Pending reminder Cancelled. Terminal or missing reminders are left alone.
func (r *reminderRepository) Cancel(ctx context.Context, appointmentID string) error {
	if err := cancelPending(r.db.WithContext(ctx), appointmentID); err != nil {
		return errors.Wrapf(err, "failed to cancel reminder for appointment %s", appointmentID)
	}
	return nil
}

var settleable = []constant.ReminderStatus{constant.ReminderPending, constant.ReminderDispatching}

func cancelPending(tx *gorm.DB, appointmentID string) error {
	return tx.Model(&entity.ScheduledReminder{}).
		Where("appointment_id = ? AND status = ?", appointmentID, constant.ReminderPending).
		Update("status", constant.ReminderCancelled).Error
}

// MarkDispatching moves a Pending reminder to Dispatching. Reports whether a transition happened.
func (r *reminderRepository) MarkDispatching(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&entity.ScheduledReminder{}).
		Where("id = ? AND status = ?", id, constant.ReminderPending).
		Update("status", constant.ReminderDispatching)
	if res.Error != nil {
		return false, errors.Wrapf(res.Error, "failed to mark reminder %d dispatching", id)
	}
	return res.RowsAffected > 0, nil
}

// MarkFired transitions a Pending or Dispatching reminder to Fired. Reports whether a transition happened.
func (r *reminderRepository) MarkFired(ctx context.Context, id uint) (bool, error) {
	return r.settle(ctx, id, map[string]any{"status": constant.ReminderFired, "last_error": nil})
}

// MarkFailed transitions a Pending or Dispatching reminder to Failed with reason. Reports whether a transition happened.
func (r *reminderRepository) MarkFailed(ctx context.Context, id uint, reason string) (bool, error) {
	return r.settle(ctx, id, map[string]any{"status": constant.ReminderFailed, "last_error": reason})
}

func (r *reminderRepository) settle(ctx context.Context, id uint, values map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).Model(&entity.ScheduledReminder{}).
		Where("id = ? AND status IN ?", id, settleable).
		Updates(values)
	if res.Error != nil {
		return false, errors.Wrapf(res.Error, "failed to settle reminder %d as %v", id, values["status"])
	}
	return res.RowsAffected > 0, nil
}

// FailDispatching marks Dispatching reminders other than exclude as Failed with reason.
func (r *reminderRepository) FailDispatching(ctx context.Context, reason string, exclude []uint) (int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.ScheduledReminder{}).
		Where("status = ?", constant.ReminderDispatching)
	if len(exclude) > 0 {
		q = q.Where("id NOT IN ?", exclude)
	}
	res := q.Updates(map[string]any{"status": constant.ReminderFailed, "last_error": reason})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "failed to fail interrupted dispatches")
	}
	return res.RowsAffected, nil
}

// ListPending retrieves every Pending reminder ordered by fire time.
func (r *reminderRepository) ListPending(ctx context.Context) ([]*entity.ScheduledReminder, error) {
	var reminders []*entity.ScheduledReminder
	if err := r.db.WithContext(ctx).
		Where("status = ?", constant.ReminderPending).
		Order("fire_time asc").
		Find(&reminders).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list pending reminders")
	}
	return reminders, nil
}

// Get retrieves the most recent reminder for an appointment.
func (r *reminderRepository) Get(ctx context.Context, appointmentID string) (*entity.ScheduledReminder, error) {
	var reminder entity.ScheduledReminder
	if err := r.db.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		Order("id desc").
		First(&reminder).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(appErrors.ErrReminderNotFound, "appointment %s", appointmentID)
		}
		return nil, errors.Wrapf(err, "failed to find reminder for appointment %s", appointmentID)
	}
	return &reminder, nil
}

// FindByID retrieves a reminder by its ID.
func (r *reminderRepository) FindByID(ctx context.Context, id uint) (*entity.ScheduledReminder, error) {
	var reminder entity.ScheduledReminder
	if err := r.db.WithContext(ctx).First(&reminder, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(appErrors.ErrReminderNotFound, "reminder %d", id)
		}
		return nil, errors.Wrapf(err, "failed to find reminder %d", id)
	}
	return &reminder, nil
}

// ListByStatus retrieves up to limit reminders with status, most recently updated first.
func (r *reminderRepository) ListByStatus(ctx context.Context, status constant.ReminderStatus, limit int) ([]*entity.ScheduledReminder, error) {
	var reminders []*entity.ScheduledReminder
	q := r.db.WithContext(ctx).Where("status = ?", status).Order("updated_at desc, id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&reminders).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to list %s reminders", status)
	}
	return reminders, nil
}

// DeleteTerminalOlderThan deletes Fired, Failed and Cancelled reminders last updated before threshold.
func (r *reminderRepository) DeleteTerminalOlderThan(ctx context.Context, threshold time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("status IN ? AND updated_at < ?",
			[]constant.ReminderStatus{constant.ReminderFired, constant.ReminderFailed, constant.ReminderCancelled},
			threshold.UTC()).
		Delete(&entity.ScheduledReminder{})
	if res.Error != nil {
		return 0, errors.Wrapf(res.Error, "failed to delete terminal reminders older than %v", threshold)
	}
	return res.RowsAffected, nil
}
