package entity

import "time"

// User owns appointments and the single push destination used for their reminders.
type User struct {
	ID        string    `gorm:"column:user_id;primaryKey"`
	PushToken *string   `gorm:"column:push_token"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName specifies the table name for the User entity.
func (User) TableName() string {
	return "users"
}

// Token returns the push token, or "" when none is registered.
func (u *User) Token() string {
	if u == nil || u.PushToken == nil {
		return ""
	}
	return *u.PushToken
}
