// Package users provides database operations for user management.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetUserByTokenHash(ctx, auth.HashToken(token))
package users

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/reading-tracker/internal/entities"
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser creates a new user without a token.
func (r *Repository) CreateUser(ctx context.Context, username, email string) (*entities.User, error) {
	user := &entities.User{
		Username: username,
		Email:    email,
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// SetTokenHash replaces the user's API token hash.
func (r *Repository) SetTokenHash(ctx context.Context, userID uint, hash string) error {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&entities.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{"token_hash": hash, "token_created_at": now})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetUserByTokenHash retrieves a user by the hash of their API token.
func (r *Repository) GetUserByTokenHash(ctx context.Context, hash string) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).Where("token_hash = ? AND token_hash <> ''", hash).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(ctx context.Context, id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by username.
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUserIDs returns the ids of every user, ascending.
func (r *Repository) ListUserIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&entities.User{}).Order("id").Pluck("id", &ids).Error
	return ids, err
}
