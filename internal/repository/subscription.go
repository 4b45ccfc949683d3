package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"creator-funnel/internal/model"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *model.Subscription) error
	Get(ctx context.Context, id string) (*model.Subscription, error)
	FindByTransactionID(ctx context.Context, transactionID string) (*model.Subscription, error)
	// FindActive returns a completed subscription, or a pending one created at or after pendingSince.
	FindActive(ctx context.Context, phoneNumber string, creatorRef int64, pendingSince time.Time) (*model.Subscription, error)
	// Transition moves a pending subscription to a terminal status. It reports false if the row was no longer pending.
	Transition(ctx context.Context, id string, to model.SubscriptionStatus, paymentStatus, reason string, at time.Time) (bool, error)
	ExpirePendingBefore(ctx context.Context, cutoff, at time.Time, reason string) (int64, error)
	ListCompletedByCreator(ctx context.Context, creatorID string) ([]model.Subscription, error)
}

type subscriptionRepoImpl struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepoImpl{
		db: db,
	}
}

func (r *subscriptionRepoImpl) Create(ctx context.Context, sub *model.Subscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *subscriptionRepoImpl) Get(ctx context.Context, id string) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&sub).Error
	if err != nil {
		return nil, err
	}

	return &sub, nil
}

func (r *subscriptionRepoImpl) FindByTransactionID(ctx context.Context, transactionID string) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.WithContext(ctx).
		Where("clubzila_transaction_id = ?", transactionID).
		First(&sub).
		Error

	if err != nil {
		return nil, err
	}

	return &sub, nil
}

func (r *subscriptionRepoImpl) FindActive(ctx context.Context, phoneNumber string, creatorRef int64, pendingSince time.Time) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.WithContext(ctx).
		Where("user_phone_number = ? AND creator_ref = ?", phoneNumber, creatorRef).
		Where(
			r.db.Where("status = ?", model.SubscriptionCompleted).
				Or("status = ? AND created_at >= ?", model.SubscriptionPending, pendingSince),
		).
		Order("created_at DESC").
		First(&sub).Error
	if err != nil {
		return nil, err
	}

	return &sub, nil
}

func (r *subscriptionRepoImpl) Transition(ctx context.Context, id string, to model.SubscriptionStatus, paymentStatus, reason string, at time.Time) (bool, error) {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": at,
	}
	if paymentStatus != "" {
		updates["clubzila_payment_status"] = paymentStatus
	}
	if reason != "" {
		updates["failure_reason"] = reason
	}
	if to == model.SubscriptionCompleted {
		updates["completed_at"] = at
	}

	result := r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("id = ? AND status = ?", id, model.SubscriptionPending).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *subscriptionRepoImpl) ExpirePendingBefore(ctx context.Context, cutoff, at time.Time, reason string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("status = ? AND created_at < ?", model.SubscriptionPending, cutoff).
		Updates(map[string]interface{}{
			"status":         model.SubscriptionFailed,
			"failure_reason": reason,
			"updated_at":     at,
		})

	return result.RowsAffected, result.Error
}

func (r *subscriptionRepoImpl) ListCompletedByCreator(ctx context.Context, creatorID string) ([]model.Subscription, error) {
	var subs []model.Subscription
	err := r.db.WithContext(ctx).
		Where("creator_id = ? AND status = ?", creatorID, model.SubscriptionCompleted).
		Find(&subs).Error
	return subs, err
}
