package entity

import (
	"time"

	"carereminder/internal/domain/constant"
)

// Appointment is a user-owned calendar entry that may carry a reminder preference.
type Appointment struct {
	ID                 string                      `gorm:"column:id;primaryKey;size:36" json:"id"`
	UserID             string                      `gorm:"column:user_id;index;not null" json:"userId"`
	Title              string                      `gorm:"column:title;not null" json:"title"`
	Location           string                      `gorm:"column:location" json:"location"`
	ScheduledAt        time.Time                   `gorm:"column:scheduled_at;not null" json:"scheduledAt"`
	ReminderPreference constant.ReminderPreference `gorm:"column:reminder_preference;not null;default:'none'" json:"reminderPreference"`
	Notes              *string                     `gorm:"column:notes;type:text" json:"notes,omitempty"`
	CreatedAt          time.Time                   `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt          time.Time                   `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName specifies the table name for the Appointment entity.
func (Appointment) TableName() string {
	return "appointments"
}

// NeedsReschedule reports whether changing a into next affects its reminder.
func (a *Appointment) NeedsReschedule(next *Appointment) bool {
	return !a.ScheduledAt.Equal(next.ScheduledAt) || a.ReminderPreference != next.ReminderPreference
}
