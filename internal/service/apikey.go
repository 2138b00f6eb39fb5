package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"payhere-integration-demo/internal/apperr"
	"payhere-integration-demo/internal/model"
	"payhere-integration-demo/internal/repository"

	"gorm.io/gorm"
)

// apiKeyBytes is the entropy of a key plaintext: 32 random bytes, 256 bits,
// rendered URL-safe.
const apiKeyBytes = 32

type APIKeyService interface {
	// MintTx issues a fresh key inside the caller's transaction and returns
	// the plaintext exactly once. Only the sha256 digest is stored.
	MintTx(ctx context.Context, tx *gorm.DB, ownerEmail string, quota int64) (keyID uint, plaintext string, err error)

	// ValidateAndConsume checks a presented plaintext, burns one unit of
	// quota and returns the key with its updated counter. Unknown or
	// inactive keys fail with apperr.ErrUnauthorized, depleted keys with
	// apperr.ErrQuotaExhausted.
	ValidateAndConsume(ctx context.Context, plaintext string) (*model.APIKey, error)
}

type apiKeyServiceImpl struct {
	apiKeyRepo repository.APIKeyRepository
}

func NewAPIKeyService(apiKeyRepo repository.APIKeyRepository) APIKeyService {
	return &apiKeyServiceImpl{
		apiKeyRepo: apiKeyRepo,
	}
}

func (s *apiKeyServiceImpl) MintTx(ctx context.Context, tx *gorm.DB, ownerEmail string, quota int64) (uint, string, error) {
	buf := make([]byte, apiKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return 0, "", fmt.Errorf("generate api key: %w", err)
	}
	plaintext := base64.RawURLEncoding.EncodeToString(buf)

	key := &model.APIKey{
		KeyHash:        HashAPIKey(plaintext),
		OwnerEmail:     ownerEmail,
		Active:         true,
		QuotaRemaining: quota,
	}
	if err := s.apiKeyRepo.Create(ctx, tx, key); err != nil {
		return 0, "", fmt.Errorf("store api key: %w", err)
	}

	return key.ID, plaintext, nil
}

func (s *apiKeyServiceImpl) ValidateAndConsume(ctx context.Context, plaintext string) (*model.APIKey, error) {
	if plaintext == "" {
		return nil, apperr.ErrUnauthorized
	}

	key, err := s.apiKeyRepo.FindActiveByHash(ctx, HashAPIKey(plaintext))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrUnauthorized
		}
		return nil, fmt.Errorf("lookup api key: %w", err)
	}

	remaining, consumed, err := s.apiKeyRepo.ConsumeQuota(ctx, key.ID)
	if err != nil {
		return nil, fmt.Errorf("consume quota: %w", err)
	}
	if !consumed {
		return nil, apperr.ErrQuotaExhausted
	}

	key.QuotaRemaining = remaining
	return key, nil
}

// HashAPIKey is the at-rest digest of a key plaintext.
func HashAPIKey(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
