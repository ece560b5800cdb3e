package sqlite

import (
	"context"

	"carereminder/internal/domain/entity"
	"carereminder/internal/domain/repository"
	appErrors "carereminder/internal/pkg/errors"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// FindByUserID retrieves a user by their ID.
func (r *userRepository) FindByUserID(ctx context.Context, userID string) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(appErrors.ErrUserNotFound, "user %s", userID)
		}
		return nil, errors.Wrapf(err, "failed to find user %s", userID)
	}
	return &user, nil
}

// SetPushToken creates the user on first use and replaces its push token.
func (r *userRepository) SetPushToken(ctx context.Context, userID, token string) error {
	user := &entity.User{ID: userID, PushToken: &token}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"push_token", "updated_at"}),
	}).Create(user).Error
	if err != nil {
		return errors.Wrapf(err, "failed to set push token for user %s", userID)
	}
	return nil
}

// ClearPushToken removes the user's push token. Unknown users are a no-op.
func (r *userRepository) ClearPushToken(ctx context.Context, userID string) error {
	if err := r.db.WithContext(ctx).Model(&entity.User{}).
		Where("user_id = ?", userID).
		Update("push_token", nil).Error; err != nil {
		return errors.Wrapf(err, "failed to clear push token for user %s", userID)
	}
	return nil
}

// GetPushToken returns the user's push token. Unknown users have no token.
func (r *userRepository) GetPushToken(ctx context.Context, userID string) (string, error) {
	user, err := r.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, appErrors.ErrUserNotFound) {
			return "", nil
		}
		return "", err
	}
	return user.Token(), nil
}
