package repository

import (
	"context"
	"errors"
	"time"

	"chirp/models"

	"gorm.io/gorm"
)

// TokenRepository persists refresh tokens so they can be rotated and revoked
// server-side.
type TokenRepository interface {
	Store(ctx context.Context, userID uint, token string, expiresAt time.Time) error
	IsValid(ctx context.Context, token string) (bool, error)
	Revoke(ctx context.Context, token string) error
}

type tokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository creates a new refresh token repository
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Store(ctx context.Context, userID uint, token string, expiresAt time.Time) error {
	rt := models.RefreshToken{
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
	}
	if err := r.db.WithContext(ctx).Create(&rt).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// IsValid reports whether the token exists, is unrevoked and unexpired.
func (r *tokenRepository) IsValid(ctx context.Context, token string) (bool, error) {
	var rt models.RefreshToken
	err := r.db.WithContext(ctx).
		Where("token = ? AND revoked = ? AND expires_at > ?", token, false, time.Now()).
		First(&rt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return true, nil
}

func (r *tokenRepository) Revoke(ctx context.Context, token string) error {
	err := r.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token = ?", token).
		Update("revoked", true).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
