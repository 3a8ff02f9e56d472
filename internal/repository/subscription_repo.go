package repository

import (
	"context"

	"gorm.io/gorm"

	"foodgram/internal/domain"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// ListAuthors возвращает страницу авторов, на которых подписан userID,
// в порядке оформления подписок.
func (r *SubscriptionRepository) ListAuthors(ctx context.Context, userID int64, limit, offset int) ([]domain.User, int64, error) {
	base := r.db.WithContext(ctx).Model(&domain.Subscription{}).
		Where("subscriptions.user_id = ?", userID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var authors []domain.User
	err := r.db.WithContext(ctx).Model(&domain.User{}).
		Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
		Where("subscriptions.user_id = ?", userID).
		Order("subscriptions.id").
		Limit(limit).
		Offset(offset).
		Find(&authors).Error
	return authors, total, err
}
