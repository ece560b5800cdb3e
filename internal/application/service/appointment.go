package service

import (
	"context"

	"carereminder/internal/application/dto"
)

// AppointmentService defines the appointment CRUD operations. Every mutation keeps the
// appointment's scheduled reminder in step before it returns.
type AppointmentService interface {
	// Create saves a new appointment and schedules its reminder. A rejected preference or a
	// fire time in the past is reported in ReminderError; the appointment is saved regardless.
	Create(ctx context.Context, req dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	// Get returns one of the user's appointments with its current reminder.
	Get(ctx context.Context, userID, appointmentID string) (*dto.AppointmentResponse, error)
	// List returns the user's appointments ordered by scheduled time.
	List(ctx context.Context, userID string) ([]dto.AppointmentResponse, error)
	// Update applies the non-nil fields and reschedules when the time or preference changed.
	Update(ctx context.Context, req dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error)
	// Delete cancels the appointment's reminder and removes the appointment.
	Delete(ctx context.Context, userID, appointmentID string) error
	// GetReminder returns the appointment's most recent scheduled reminder.
	GetReminder(ctx context.Context, userID, appointmentID string) (*dto.ReminderResponse, error)
}
