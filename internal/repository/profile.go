package repository

import (
	"context"
	"errors"

	"resonate/internal/models"

	"gorm.io/gorm"
)

// ProfileRepository reads the denormalized author profiles synced from the
// identity service. This core never writes profiles.
type ProfileRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Profile, error)
	// GetByIDs returns the profiles for the given user ids keyed by id,
	// in one batched query.
	GetByIDs(ctx context.Context, ids []uint) (map[uint]*models.Profile, error)
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByID(ctx context.Context, id uint) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Profile", id)
		}
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) GetByIDs(ctx context.Context, ids []uint) (map[uint]*models.Profile, error) {
	result := make(map[uint]*models.Profile, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var profiles []models.Profile
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, err
	}
	for i := range profiles {
		result[profiles[i].ID] = &profiles[i]
	}
	return result, nil
}

// NotificationRepository persists and reads notification records.
type NotificationRepository interface {
	ListByRecipient(ctx context.Context, recipientID uint, limit int) ([]*models.Notification, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID uint, limit int) ([]*models.Notification, error) {
	var notifications []*models.Notification
	err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("id DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}
