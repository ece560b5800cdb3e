package entity

import (
	"time"

	"carereminder/internal/domain/constant"
)

// ScheduledReminder is the derived, durable commitment to notify a user about one appointment.
// Superseded rows are kept as Cancelled history; at most one row per appointment is Pending.
type ScheduledReminder struct {
	ID            uint                    `gorm:"primaryKey;autoIncrement" json:"id"`
	AppointmentID string                  `gorm:"column:appointment_id;size:36;not null;index;uniqueIndex:idx_pending_reminder_per_appointment,where:status = 'pending'" json:"appointmentId"`
	UserID        string                  `gorm:"column:user_id;not null" json:"userId"`
	FireAt        time.Time               `gorm:"column:fire_time;not null;index" json:"fireTime"`
	Status        constant.ReminderStatus `gorm:"column:status;size:16;not null;index" json:"status"`
	LastError     *string                 `gorm:"column:last_error" json:"lastError,omitempty"`
	CreatedAt     time.Time               `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt     time.Time               `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName specifies the table name for the ScheduledReminder entity.
func (ScheduledReminder) TableName() string {
	return "scheduled_reminders"
}
