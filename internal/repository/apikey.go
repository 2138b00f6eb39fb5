package repository

import (
	"context"

	"payhere-integration-demo/internal/model"

	"gorm.io/gorm"
)

type APIKeyRepository interface {
	Create(ctx context.Context, tx *gorm.DB, key *model.APIKey) error
	FindActiveByHash(ctx context.Context, keyHash string) (*model.APIKey, error)

	// ConsumeQuota decrements quota_remaining by one if any quota is left.
	// consumed=false means the counter was already at zero; the decrement
	// is a single conditional UPDATE, so concurrent callers never push the
	// counter below zero and never lose an update.
	ConsumeQuota(ctx context.Context, keyID uint) (remaining int64, consumed bool, err error)
}

type apiKeyRepoImpl struct {
	db *gorm.DB
}

func NewAPIKeyRepository(db *gorm.DB) APIKeyRepository {
	return &apiKeyRepoImpl{
		db: db,
	}
}

func (r *apiKeyRepoImpl) Create(ctx context.Context, tx *gorm.DB, key *model.APIKey) error {
	return tx.WithContext(ctx).Create(key).Error
}

func (r *apiKeyRepoImpl) FindActiveByHash(ctx context.Context, keyHash string) (*model.APIKey, error) {
	var key model.APIKey
	err := r.db.WithContext(ctx).
		Where("key_hash = ? AND active = ?", keyHash, true).
		First(&key).Error

	if err != nil {
		return nil, err
	}

	return &key, nil
}

func (r *apiKeyRepoImpl) ConsumeQuota(ctx context.Context, keyID uint) (int64, bool, error) {
	var (
		remaining int64
		consumed  bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.APIKey{}).
			Where("id = ? AND quota_remaining > 0", keyID).
			Update("quota_remaining", gorm.Expr("quota_remaining - 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		consumed = true

		// Fetch the updated counter within the same transaction
		var key model.APIKey
		if err := tx.First(&key, keyID).Error; err != nil {
			return err
		}
		remaining = key.QuotaRemaining
		return nil
	})

	return remaining, consumed, err
}
