package repository

import (
	"context"

	"carereminder/internal/domain/entity"
)

// AppointmentRepository defines the interface for appointment data operations.
type AppointmentRepository interface {
	FindByID(ctx context.Context, id string) (*entity.Appointment, error)
	FindByUserID(ctx context.Context, userID string) ([]*entity.Appointment, error)
	Create(ctx context.Context, appointment *entity.Appointment) error
	Update(ctx context.Context, appointment *entity.Appointment) error
	Delete(ctx context.Context, id string) error
}
