package dto

// RegisterPushTokenRequest is the DTO for registering or rotating a user's push token.
type RegisterPushTokenRequest struct {
	UserID string `json:"-"`
	Token  string `json:"token" validate:"required,max=4096"`
}
