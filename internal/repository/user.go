package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/plantpedia/plantpedia/internal/hash"
	"github.com/plantpedia/plantpedia/internal/models"
)

var ErrUsernameTaken = errors.New("repository: username already exists")

type UserRepository struct {
	DB *gorm.DB
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*models.UserAccount, error) {
	var user models.UserAccount
	err := r.DB.WithContext(ctx).Preload("Login").First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("repository: get user: %w", err)
	}
	return &user, nil
}

// Login checks username/password against the stored PBKDF2 record. A missing
// username and a wrong password are both (nil, nil) so callers cannot tell
// them apart. On success the last-login timestamp is updated; concurrent
// logins race on it and the last writer wins, which is fine for an
// informational field.
func (r *UserRepository) Login(ctx context.Context, username, password string) (*models.UserAccount, error) {
	var login models.UserLogin
	err := r.DB.WithContext(ctx).Where("username = ?", username).First(&login).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("repository: login lookup: %w", err)
	}

	if !hash.CheckPassword(password, login.PasswordHash, login.PasswordSalt) {
		return nil, nil
	}

	now := time.Now().UTC()
	if err := r.DB.WithContext(ctx).Model(&models.UserLogin{}).
		Where("user_id = ?", login.UserID).
		Update("last_login_at", now).Error; err != nil {
		return nil, fmt.Errorf("repository: last login update: %w", err)
	}

	return r.GetByID(ctx, login.UserID)
}

func (r *UserRepository) Register(ctx context.Context, username, password, lastName, gender string, dateOfBirth time.Time, avatarURL string) (*models.UserAccount, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.UserLogin{}).
		Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("repository: username check: %w", err)
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}

	pwHash, pwSalt, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.UserAccount{
		LastName:    lastName,
		Gender:      gender,
		DateOfBirth: dateOfBirth,
		AvatarURL:   avatarURL,
	}

	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		login := models.UserLogin{
			UserID:       user.ID,
			Username:     username,
			PasswordHash: pwHash,
			PasswordSalt: pwSalt,
			CreatedAt:    time.Now().UTC(),
		}
		return tx.Create(&login).Error
	})
	if err != nil {
		return nil, fmt.Errorf("repository: register: %w", err)
	}

	return &user, nil
}
