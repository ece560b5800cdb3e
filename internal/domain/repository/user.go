package repository

import (
	"context"

	"carereminder/internal/domain/entity"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	// FindByUserID retrieves a user by ID.
	FindByUserID(ctx context.Context, userID string) (*entity.User, error)
	// SetPushToken creates the user if needed and stores token as its push destination.
	SetPushToken(ctx context.Context, userID, token string) error
	// ClearPushToken removes the user's push destination. Unknown users are a no-op.
	ClearPushToken(ctx context.Context, userID string) error
	// GetPushToken returns the user's push token, or "" when absent.
	GetPushToken(ctx context.Context, userID string) (string, error)
}
