package service

import (
	"context"

	"carereminder/internal/application/dto"
	"carereminder/internal/domain/entity"
)

// UserService defines the interface for user-related business logic.
type UserService interface {
	// RegisterPushToken stores or rotates the user's push token, creating the user on first use.
	RegisterPushToken(ctx context.Context, req dto.RegisterPushTokenRequest) error
	// ClearPushToken removes the user's push destination; reminders firing afterwards fail with InvalidToken.
	ClearPushToken(ctx context.Context, userID string) error
	// GetUser finds a user by ID. Returns ErrUserNotFound if absent.
	GetUser(ctx context.Context, userID string) (*entity.User, error)
}
