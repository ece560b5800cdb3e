package service

import (
	"context"
	"fmt"

	"carereminder/internal/application/dto"
	"carereminder/internal/domain/entity"
	"carereminder/internal/domain/repository"
	"carereminder/internal/infrastructure/push"
	appErrors "carereminder/internal/pkg/errors"
	"carereminder/internal/pkg/logger"

	"github.com/pkg/errors"
)

type userService struct {
	userRepo repository.UserRepository
	log      logger.Logger
}

// NewUserService creates a new instance of UserService implementation.
func NewUserService(userRepo repository.UserRepository, log logger.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		log:      log,
	}
}

// RegisterPushToken stores or rotates the user's push token. Reminders already scheduled pick
// the new token up at fire time.
func (s *userService) RegisterPushToken(ctx context.Context, req dto.RegisterPushTokenRequest) error {
	if err := push.ValidateToken(req.Token); err != nil {
		return errors.Wrapf(appErrors.ErrInvalidInput, "%v", err)
	}
	if err := s.userRepo.SetPushToken(ctx, req.UserID, req.Token); err != nil {
		s.log.Error(fmt.Sprintf("Failed to register push token for user %s", req.UserID), err)
		return errors.Wrapf(appErrors.ErrDatabaseOperation, "%v", err)
	}
	s.log.Info(fmt.Sprintf("Registered push token for user %s", req.UserID))
	return nil
}

// ClearPushToken removes the user's push destination.
func (s *userService) ClearPushToken(ctx context.Context, userID string) error {
	if err := s.userRepo.ClearPushToken(ctx, userID); err != nil {
		s.log.Error(fmt.Sprintf("Failed to clear push token for user %s", userID), err)
		return errors.Wrapf(appErrors.ErrDatabaseOperation, "%v", err)
	}
	s.log.Info(fmt.Sprintf("Cleared push token for user %s", userID))
	return nil
}

// GetUser finds a user by ID. Returns ErrUserNotFound if absent.
func (s *userService) GetUser(ctx context.Context, userID string) (*entity.User, error) {
	user, err := s.userRepo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, appErrors.ErrUserNotFound) {
			return nil, err
		}
		s.log.Error(fmt.Sprintf("Failed to get user %s", userID), err)
		return nil, errors.Wrapf(appErrors.ErrDatabaseOperation, "%v", err)
	}
	return user, nil
}
