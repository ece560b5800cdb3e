package sqlite

import (
	"context"

	"carereminder/internal/domain/entity"
	"carereminder/internal/domain/repository"
	appErrors "carereminder/internal/pkg/errors"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type appointmentRepository struct {
	db *gorm.DB
}

// NewAppointmentRepository creates a new instance of AppointmentRepository.
func NewAppointmentRepository(db *gorm.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

// FindByID retrieves an appointment by its ID.
func (r *appointmentRepository) FindByID(ctx context.Context, id string) (*entity.Appointment, error) {
	var appointment entity.Appointment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&appointment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(appErrors.ErrAppointmentNotFound, "appointment %s", id)
		}
		return nil, errors.Wrapf(err, "failed to find appointment %s", id)
	}
	return &appointment, nil
}

// FindByUserID retrieves a user's appointments ordered by scheduled time.
func (r *appointmentRepository) FindByUserID(ctx context.Context, userID string) ([]*entity.Appointment, error) {
	var appointments []*entity.Appointment
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("scheduled_at asc").Find(&appointments).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to find appointments for user %s", userID)
	}
	return appointments, nil
}

// Create creates a new appointment.
func (r *appointmentRepository) Create(ctx context.Context, appointment *entity.Appointment) error {
	appointment.ScheduledAt = appointment.ScheduledAt.UTC()
	if err := r.db.WithContext(ctx).Create(appointment).Error; err != nil {
		return errors.Wrapf(err, "failed to create appointment for user %s", appointment.UserID)
	}
	return nil
}

// Update saves every field of an existing appointment.
func (r *appointmentRepository) Update(ctx context.Context, appointment *entity.Appointment) error {
	appointment.ScheduledAt = appointment.ScheduledAt.UTC()
	if err := r.db.WithContext(ctx).Save(appointment).Error; err != nil {
		return errors.Wrapf(err, "failed to update appointment %s", appointment.ID)
	}
	return nil
}

// Delete deletes an appointment by its ID.
func (r *appointmentRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Appointment{}).Error; err != nil {
		return errors.Wrapf(err, "failed to delete appointment %s", id)
	}
	return nil
}
