package auth

import (
	"context"
	"time"

	"gorm.io/gorm"

	"solace/internal/model/auth"
)

// RefreshTokenRepo is the refresh token store
type RefreshTokenRepo struct {
	db *gorm.DB
}

// NewRefreshTokenRepo creates a refresh token repository
func NewRefreshTokenRepo(db *gorm.DB) *RefreshTokenRepo {
	return &RefreshTokenRepo{db: db}
}

// Create inserts a refresh token
func (r *RefreshTokenRepo) Create(ctx context.Context, token *auth.RefreshToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

// FindByToken looks a refresh token up by its value
func (r *RefreshTokenRepo) FindByToken(ctx context.Context, token string) (*auth.RefreshToken, error) {
	var refreshToken auth.RefreshToken
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&refreshToken).Error; err != nil {
		return nil, err
	}
	return &refreshToken, nil
}

// DeleteByToken removes a refresh token by its value
func (r *RefreshTokenRepo) DeleteByToken(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Where("token = ?", token).Delete(&auth.RefreshToken{}).Error
}

// DeleteByUserID removes all of a user's refresh tokens
func (r *RefreshTokenRepo) DeleteByUserID(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&auth.RefreshToken{}).Error
}

// DeleteExpired removes all expired refresh tokens
func (r *RefreshTokenRepo) DeleteExpired(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("expires_at < ?", time.Now()).Delete(&auth.RefreshToken{}).Error
}
