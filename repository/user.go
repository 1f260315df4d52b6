// Package repository contains the data access layer. Every edge mutation and
// its counter adjustment run inside a single transaction, and unique
// constraint violations are the canonical "already exists" signal.
package repository

import (
	"context"
	"errors"

	"chirp/models"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	UpdateFields(ctx context.Context, id uint, fields map[string]any) error

	GetProfile(ctx context.Context, username string, viewerID uint) (*models.ProfileView, error)
	GetFollowers(ctx context.Context, userID, viewerID uint, limit, offset int) ([]models.UserSummary, error)
	GetFollowing(ctx context.Context, userID, viewerID uint, limit, offset int) ([]models.UserSummary, error)
	GetSuggestions(ctx context.Context, viewerID uint, limit int) ([]models.UserSummary, error)
	Search(ctx context.Context, query string, limit, offset int) ([]models.UserSummary, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User")
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // Return nil for not found, not an error
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.NewConflictError("Email or username already registered")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// UpdateFields applies a partial profile update built by the handler.
func (r *userRepository) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) GetProfile(ctx context.Context, username string, viewerID uint) (*models.ProfileView, error) {
	var profile models.ProfileView
	err := r.db.WithContext(ctx).Raw(`
		SELECT u.id, u.name, u.username, u.bio, u.location, u.website, u.avatar, u.cover_photo, u.verified,
		       u.followers_count, u.following_count, u.posts_count, u.created_at,
		       EXISTS(SELECT 1 FROM follows WHERE follower_id = ? AND following_id = u.id) AS is_following
		FROM users u
		WHERE u.username = ?`,
		viewerID, username,
	).Scan(&profile).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if profile.ID == 0 {
		return nil, models.NewNotFoundError("User")
	}
	return &profile, nil
}

func (r *userRepository) GetFollowers(ctx context.Context, userID, viewerID uint, limit, offset int) ([]models.UserSummary, error) {
	var users []models.UserSummary
	err := r.db.WithContext(ctx).Raw(`
		SELECT u.id, u.name, u.username, u.avatar, u.verified, u.bio,
		       EXISTS(SELECT 1 FROM follows WHERE follower_id = ? AND following_id = u.id) AS is_following
		FROM follows f
		JOIN users u ON f.follower_id = u.id
		WHERE f.following_id = ?
		ORDER BY f.created_at DESC
		LIMIT ? OFFSET ?`,
		viewerID, userID, limit, offset,
	).Scan(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) GetFollowing(ctx context.Context, userID, viewerID uint, limit, offset int) ([]models.UserSummary, error) {
	var users []models.UserSummary
	err := r.db.WithContext(ctx).Raw(`
		SELECT u.id, u.name, u.username, u.avatar, u.verified, u.bio,
		       EXISTS(SELECT 1 FROM follows WHERE follower_id = ? AND following_id = u.id) AS is_following
		FROM follows f
		JOIN users u ON f.following_id = u.id
		WHERE f.follower_id = ?
		ORDER BY f.created_at DESC
		LIMIT ? OFFSET ?`,
		viewerID, userID, limit, offset,
	).Scan(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// GetSuggestions returns popular users the viewer does not follow yet.
func (r *userRepository) GetSuggestions(ctx context.Context, viewerID uint, limit int) ([]models.UserSummary, error) {
	var users []models.UserSummary
	err := r.db.WithContext(ctx).Raw(`
		SELECT u.id, u.name, u.username, u.avatar, u.verified, u.bio
		FROM users u
		WHERE u.id <> ?
		  AND u.id NOT IN (SELECT following_id FROM follows WHERE follower_id = ?)
		ORDER BY u.followers_count DESC
		LIMIT ?`,
		viewerID, viewerID, limit,
	).Scan(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) Search(ctx context.Context, query string, limit, offset int) ([]models.UserSummary, error) {
	var users []models.UserSummary
	pattern := "%" + query + "%"
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, username, avatar, verified, bio
		FROM users
		WHERE LOWER(name) LIKE LOWER(?) OR LOWER(username) LIKE LOWER(?)
		LIMIT ? OFFSET ?`,
		pattern, pattern, limit, offset,
	).Scan(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
