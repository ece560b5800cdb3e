package dto

import (
	"time"

	"carereminder/internal/domain/constant"
	"carereminder/internal/domain/entity"
)

// CreateAppointmentRequest is the DTO for creating an appointment.
type CreateAppointmentRequest struct {
	UserID             string    `json:"-"`
	Title              string    `json:"title" validate:"required,max=200"`
	Location           string    `json:"location" validate:"max=300"`
	ScheduledAt        time.Time `json:"scheduledAt" validate:"required"`
	ReminderPreference string    `json:"reminderPreference"`
	Notes              *string   `json:"notes,omitempty"`
}

// UpdateAppointmentRequest is the DTO for updating an appointment. Nil fields are left unchanged.
type UpdateAppointmentRequest struct {
	UserID             string     `json:"-"`
	AppointmentID      string     `json:"-"`
	Title              *string    `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Location           *string    `json:"location,omitempty" validate:"omitempty,max=300"`
	ScheduledAt        *time.Time `json:"scheduledAt,omitempty"`
	ReminderPreference *string    `json:"reminderPreference,omitempty"`
	Notes              *string    `json:"notes,omitempty"`
}

// AppointmentResponse is the DTO returned for an appointment, with its reminder state.
// ReminderError carries InvalidPreference / FireTimeInPast feedback; the appointment is saved regardless.
type AppointmentResponse struct {
	ID                 string            `json:"id"`
	Title              string            `json:"title"`
	Location           string            `json:"location"`
	ScheduledAt        time.Time         `json:"scheduledAt"`
	ReminderPreference string            `json:"reminderPreference"`
	Notes              *string           `json:"notes,omitempty"`
	Reminder           *ReminderResponse `json:"reminder,omitempty"`
	ReminderError      string            `json:"reminderError,omitempty"`
}

// ToAppointmentResponse converts an entity.Appointment to an AppointmentResponse DTO.
func ToAppointmentResponse(a *entity.Appointment, r *entity.ScheduledReminder) AppointmentResponse {
	resp := AppointmentResponse{
		ID:                 a.ID,
		Title:              a.Title,
		Location:           a.Location,
		ScheduledAt:        a.ScheduledAt,
		ReminderPreference: a.ReminderPreference.String(),
		Notes:              a.Notes,
	}
	if r != nil {
		rr := ToReminderResponse(r)
		resp.Reminder = &rr
	}
	return resp
}

// ReminderResponse is the DTO for a scheduled reminder.
type ReminderResponse struct {
	ID            uint      `json:"id"`
	AppointmentID string    `json:"appointmentId"`
	UserID        string    `json:"userId"`
	FireTime      time.Time `json:"fireTime"`
	Status        string    `json:"status"`
	LastError     *string   `json:"lastError,omitempty"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ToReminderResponse converts an entity.ScheduledReminder to a ReminderResponse DTO.
func ToReminderResponse(r *entity.ScheduledReminder) ReminderResponse {
	return ReminderResponse{
		ID:            r.ID,
		AppointmentID: r.AppointmentID,
		UserID:        r.UserID,
		FireTime:      r.FireAt.UTC(),
		Status:        r.Status.String(),
		LastError:     r.LastError,
		UpdatedAt:     r.UpdatedAt,
	}
}

// ToReminderResponseList converts a slice of reminders to ReminderResponse DTOs.
func ToReminderResponseList(reminders []*entity.ScheduledReminder) []ReminderResponse {
	list := make([]ReminderResponse, len(reminders))
	for i, r := range reminders {
		list[i] = ToReminderResponse(r)
	}
	return list
}

// ListRemindersRequest filters the operator reminder listing.
type ListRemindersRequest struct {
	Status constant.ReminderStatus
	Limit  int
}
