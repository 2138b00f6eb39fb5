package repository

import (
	"context"
	"time"

	"payhere-integration-demo/internal/model"

	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, sub *model.Subscription) error
	FindByOrderID(ctx context.Context, orderID string) (*model.Subscription, error)
	List(ctx context.Context) ([]*model.Subscription, error)

	// MarkActive moves the order pending→active and records the provider
	// subscription id. It reports whether this call performed the
	// transition; false means the order was already terminal.
	MarkActive(ctx context.Context, tx *gorm.DB, orderID, payhereSubscriptionID string) (bool, error)

	// MarkFailed moves the order pending→failed_or_cancelled with the same
	// won/lost semantics as MarkActive.
	MarkFailed(ctx context.Context, tx *gorm.DB, orderID string) (bool, error)

	LinkAPIKey(ctx context.Context, tx *gorm.DB, orderID string, apiKeyID uint, plaintext string) error

	// TakePlainKey reads and clears the stashed plaintext in one atomic
	// step. Empty string means it was never stashed or a concurrent (or
	// earlier) reader already took it.
	TakePlainKey(ctx context.Context, orderID string) (string, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, sub *model.Subscription) error {
	return tx.WithContext(ctx).Create(sub).Error
}

func (r *orderRepoImpl) FindByOrderID(ctx context.Context, orderID string) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&sub).Error

	if err != nil {
		return nil, err
	}

	return &sub, nil
}

func (r *orderRepoImpl) List(ctx context.Context) ([]*model.Subscription, error) {
	var subs []*model.Subscription
	err := r.db.WithContext(ctx).Find(&subs).Error
	if err != nil {
		return nil, err
	}

	return subs, nil
}

// The status guard in the WHERE clause is what serializes concurrent
// notifications for one order: only the first caller sees a pending row, so
// only the first caller's update affects a row.
func (r *orderRepoImpl) MarkActive(ctx context.Context, tx *gorm.DB, orderID, payhereSubscriptionID string) (bool, error) {
	res := tx.WithContext(ctx).Model(&model.Subscription{}).
		Where("order_id = ? AND status = ?", orderID, model.StatusPending).
		Updates(map[string]interface{}{
			"status":                  model.StatusActive,
			"payhere_subscription_id": payhereSubscriptionID,
			"updated_at":              time.Now(),
		})

	return res.RowsAffected > 0, res.Error
}

func (r *orderRepoImpl) MarkFailed(ctx context.Context, tx *gorm.DB, orderID string) (bool, error) {
	res := tx.WithContext(ctx).Model(&model.Subscription{}).
		Where("order_id = ? AND status = ?", orderID, model.StatusPending).
		Updates(map[string]interface{}{
			"status":     model.StatusFailed,
			"updated_at": time.Now(),
		})

	return res.RowsAffected > 0, res.Error
}

func (r *orderRepoImpl) LinkAPIKey(ctx context.Context, tx *gorm.DB, orderID string, apiKeyID uint, plaintext string) error {
	return tx.WithContext(ctx).Model(&model.Subscription{}).
		Where("order_id = ?", orderID).
		Updates(map[string]interface{}{
			"api_key_id":    apiKeyID,
			"api_key_plain": plaintext,
			"updated_at":    time.Now(),
		}).Error
}

func (r *orderRepoImpl) TakePlainKey(ctx context.Context, orderID string) (string, error) {
	var plain string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sub model.Subscription
		if err := tx.Where("order_id = ?", orderID).First(&sub).Error; err != nil {
			return err
		}
		if sub.APIKeyPlain == nil {
			return nil
		}

		// compare-and-swap clear: losing a race leaves plain empty
		res := tx.Model(&model.Subscription{}).
			Where("order_id = ? AND api_key_plain = ?", orderID, *sub.APIKeyPlain).
			Update("api_key_plain", nil)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		plain = *sub.APIKeyPlain
		return nil
	})

	return plain, err
}
