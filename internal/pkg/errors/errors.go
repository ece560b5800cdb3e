package errors

import "github.com/pkg/errors"

// Scheduling-time errors, returned synchronously to the caller of an appointment mutation.
var (
	ErrInvalidPreference = errors.New("invalid reminder preference")
	ErrFireTimeInPast    = errors.New("reminder fire time is in the past")
)

// Fire-time errors, recorded on the scheduled reminder and logged.
var (
	ErrInvalidToken   = errors.New("invalid push token")
	ErrDeliveryFailed = errors.New("push delivery failed")
)

// Custom application errors
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrReminderNotFound    = errors.New("scheduled reminder not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrDatabaseOperation   = errors.New("database operation failed")
	ErrScheduling          = errors.New("scheduling failed")
	ErrInternalServer      = errors.New("internal server error")
)

// Reason codes persisted in scheduled_reminders.last_error.
const (
	ReasonInvalidToken   = "InvalidToken"
	ReasonDeliveryFailed = "DeliveryFailed"
)

// Reason maps a fire-time error to the reason code stored with a failed reminder.
func Reason(err error) string {
	if errors.Is(err, ErrInvalidToken) {
		return ReasonInvalidToken
	}
	return ReasonDeliveryFailed
}

// IsSchedulingRejection reports whether err is a recoverable policy rejection
// (the appointment is saved, only the reminder is skipped).
func IsSchedulingRejection(err error) bool {
	return errors.Is(err, ErrInvalidPreference) || errors.Is(err, ErrFireTimeInPast)
}
