package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/shop_api/internal/hash"
	"github.com/Skotchmaster/shop_api/internal/models"
)

func (r *GormRepo) UserExists(ctx context.Context, username string) (bool, error) {
	ctx, cancel := r.scoped(ctx)
	defer cancel()

	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, storeErr("user exists", err)
	}
	return count > 0, nil
}

func (r *GormRepo) CreateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := r.scoped(ctx)
	defer cancel()

	if err := r.DB.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return storeErr("create user", ErrUserExists)
		}
		return storeErr("create user", err)
	}
	return nil
}

func (r *GormRepo) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	ctx, cancel := r.scoped(ctx)
	defer cancel()

	var user models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storeErr("user by username", ErrUserNotFound)
		}
		return nil, storeErr("user by username", err)
	}
	return &user, nil
}

func (r *GormRepo) UserIDByUsername(ctx context.Context, username string) (uint, error) {
	user, err := r.UserByUsername(ctx, username)
	if err != nil {
		return 0, err
	}
	return user.ID, nil
}

// VerifyCredentials returns the user when password matches the stored digest.
func (r *GormRepo) VerifyCredentials(ctx context.Context, username, password string) (*models.User, error) {
	user, err := r.UserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	ok, err := hash.CheckPassword(user.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("verify credentials: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("verify credentials: %w", ErrInvalidCredentials)
	}
	return user, nil
}

// RoleOf falls back to RoleUser when the user has no row.
func (r *GormRepo) RoleOf(ctx context.Context, username string) (models.Role, error) {
	user, err := r.UserByUsername(ctx, username)
	switch {
	case errors.Is(err, ErrUserNotFound):
		return models.RoleUser, nil
	case err != nil:
		return "", err
	case !user.Role.Valid():
		return models.RoleUser, nil
	}
	return user.Role, nil
}
