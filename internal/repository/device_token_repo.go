package repository

import (
	"context"
	"errors"
	"time"

	"courtbook/internal/domain"

	"gorm.io/gorm"
)

type DeviceTokenRepository struct {
	db *gorm.DB
}

func NewDeviceTokenRepository(db *gorm.DB) *DeviceTokenRepository {
	return &DeviceTokenRepository{db: db}
}

type deviceTokenModel struct {
	ID         int64      `gorm:"column:id;primaryKey"`
	UserID     int64      `gorm:"column:user_id;uniqueIndex:idx_device_tokens_user_token"`
	Token      string     `gorm:"column:token;uniqueIndex:idx_device_tokens_user_token;index"`
	DeviceType string     `gorm:"column:device_type"`
	DeviceName string     `gorm:"column:device_name"`
	IsActive   bool       `gorm:"column:is_active;index"`
	LastUsedAt *time.Time `gorm:"column:last_used_at"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at"`
}

func (deviceTokenModel) TableName() string { return "device_tokens" }

func toDomainDeviceToken(m deviceTokenModel) *domain.DeviceToken {
	return &domain.DeviceToken{
		ID:         m.ID,
		UserID:     m.UserID,
		Token:      m.Token,
		DeviceType: m.DeviceType,
		DeviceName: m.DeviceName,
		IsActive:   m.IsActive,
		LastUsedAt: m.LastUsedAt,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// Upsert registers a token for a user, or refreshes it when the pair already
// exists: reactivates, updates device metadata and bumps last_used_at.
// Idempotent on (user_id, token).
func (r *DeviceTokenRepository) Upsert(ctx context.Context, userID int64, token, deviceType, deviceName string, now time.Time) (*domain.DeviceToken, error) {
	var m deviceTokenModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND token = ?", userID, token).
		First(&m).Error

	switch {
	case err == nil:
		updates := map[string]any{
			"is_active":    true,
			"last_used_at": now,
		}
		if deviceType != "" {
			updates["device_type"] = deviceType
		}
		if deviceName != "" {
			updates["device_name"] = deviceName
		}
		if err := r.db.WithContext(ctx).Model(&deviceTokenModel{}).
			Where("id = ?", m.ID).
			Updates(updates).Error; err != nil {
			return nil, err
		}
		return r.getByID(ctx, m.ID)

	case errors.Is(err, gorm.ErrRecordNotFound):
		m = deviceTokenModel{
			UserID:     userID,
			Token:      token,
			DeviceType: deviceType,
			DeviceName: deviceName,
			IsActive:   true,
			LastUsedAt: &now,
		}
		if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
			return nil, err
		}
		return toDomainDeviceToken(m), nil

	default:
		return nil, err
	}
}

func (r *DeviceTokenRepository) getByID(ctx context.Context, id int64) (*domain.DeviceToken, error) {
	var m deviceTokenModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return toDomainDeviceToken(m), nil
}

// Remove deletes a user's token registration. Returns false when the pair
// did not exist.
func (r *DeviceTokenRepository) Remove(ctx context.Context, userID int64, token string) (bool, error) {
	tx := r.db.WithContext(ctx).
		Where("user_id = ? AND token = ?", userID, token).
		Delete(&deviceTokenModel{})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *DeviceTokenRepository) ListByUser(ctx context.Context, userID int64) ([]domain.DeviceToken, error) {
	var rows []deviceTokenModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.DeviceToken, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainDeviceToken(m))
	}
	return out, nil
}

// ActiveTokensForUsers returns the active token strings for a user set.
func (r *DeviceTokenRepository) ActiveTokensForUsers(ctx context.Context, userIDs []int64) ([]string, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var tokens []string
	err := r.db.WithContext(ctx).Model(&deviceTokenModel{}).
		Where("user_id IN ? AND is_active = ?", userIDs, true).
		Pluck("token", &tokens).Error
	return tokens, err
}

// ActiveTokens returns every active token in the registry.
func (r *DeviceTokenRepository) ActiveTokens(ctx context.Context) ([]string, error) {
	var tokens []string
	err := r.db.WithContext(ctx).Model(&deviceTokenModel{}).
		Where("is_active = ?", true).
		Pluck("token", &tokens).Error
	return tokens, err
}

// DeactivateByToken flips every registration of the token string inactive.
// Idempotent: deactivating an inactive token is a no-op.
func (r *DeviceTokenRepository) DeactivateByToken(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Model(&deviceTokenModel{}).
		Where("token = ?", token).
		Update("is_active", false).Error
}

func (r *DeviceTokenRepository) DeactivateByID(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&deviceTokenModel{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

// TouchLastUsed bumps last_used_at after a successful single-token send.
func (r *DeviceTokenRepository) TouchLastUsed(ctx context.Context, token string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&deviceTokenModel{}).
		Where("token = ?", token).
		Update("last_used_at", at).Error
}
