package repository

import (
	"context"
	"testing"

	"payhere-integration-demo/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func pendingOrder(t *testing.T, db *gorm.DB, repo OrderRepository, orderID string) {
	t.Helper()
	err := repo.Create(context.Background(), db, &model.Subscription{
		OrderID:       orderID,
		CustomerEmail: "buyer@example.com",
		PlanID:        1,
		Status:        model.StatusPending,
	})
	require.NoError(t, err)
}

func TestOrderCreateAndFind(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	pendingOrder(t, db, repo, "abc123")

	sub, err := repo.FindByOrderID(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, sub.Status)
	assert.Equal(t, "buyer@example.com", sub.CustomerEmail)

	_, err = repo.FindByOrderID(ctx, "nope")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestMarkActiveOnlyOnce(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	pendingOrder(t, db, repo, "abc123")

	won, err := repo.MarkActive(ctx, db, "abc123", "ph-sub-9")
	require.NoError(t, err)
	assert.True(t, won)

	// a replayed success notification loses the conditional update
	won, err = repo.MarkActive(ctx, db, "abc123", "ph-sub-9")
	require.NoError(t, err)
	assert.False(t, won)

	// and a late failure notification cannot regress the state
	won, err = repo.MarkFailed(ctx, db, "abc123")
	require.NoError(t, err)
	assert.False(t, won)

	sub, err := repo.FindByOrderID(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, sub.Status)
	assert.Equal(t, "ph-sub-9", sub.PayhereSubscriptionID)
}

func TestMarkFailed(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	pendingOrder(t, db, repo, "abc123")

	won, err := repo.MarkFailed(ctx, db, "abc123")
	require.NoError(t, err)
	assert.True(t, won)

	won, err = repo.MarkActive(ctx, db, "abc123", "")
	require.NoError(t, err)
	assert.False(t, won, "terminal failure must not become active")

	sub, err := repo.FindByOrderID(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, sub.Status)
}

func TestTakePlainKeyAtMostOnce(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	pendingOrder(t, db, repo, "abc123")
	_, err := repo.MarkActive(ctx, db, "abc123", "")
	require.NoError(t, err)
	require.NoError(t, repo.LinkAPIKey(ctx, db, "abc123", 7, "the-plain-key"))

	plain, err := repo.TakePlainKey(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "the-plain-key", plain)

	// second take finds the stash cleared
	plain, err = repo.TakePlainKey(ctx, "abc123")
	require.NoError(t, err)
	assert.Empty(t, plain)

	sub, err := repo.FindByOrderID(ctx, "abc123")
	require.NoError(t, err)
	assert.Nil(t, sub.APIKeyPlain)
	require.NotNil(t, sub.APIKeyID)
	assert.Equal(t, uint(7), *sub.APIKeyID)
}

func TestTakePlainKeyUnknownOrder(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)

	_, err := repo.TakePlainKey(context.Background(), "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
