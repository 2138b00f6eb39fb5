package service

import (
	"context"
	"testing"

	"payhere-integration-demo/internal/apperr"
	"payhere-integration-demo/internal/client"
	"payhere-integration-demo/internal/config"
	"payhere-integration-demo/internal/dto"
	"payhere-integration-demo/internal/model"
	"payhere-integration-demo/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type payhereFixture struct {
	db        *gorm.DB
	svc       PayhereService
	apiKeySvc APIKeyService
	orderRepo repository.OrderRepository
}

func newPayhereFixture(t *testing.T) *payhereFixture {
	t.Helper()

	db := newTestDB(t)
	planRepo := repository.NewPlanRepository(db)
	require.NoError(t, planRepo.Seed(context.Background()))

	orderRepo := repository.NewOrderRepository(db)
	apiKeySvc := NewAPIKeyService(repository.NewAPIKeyRepository(db))
	payhereClient := client.NewPayhereClient(&config.PayHere{
		MerchantID:     testMerchantID,
		MerchantSecret: testSecret,
		Mode:           "sandbox",
	})

	svc := NewPayhereService(db, payhereClient, "https://api.example.com", orderRepo, planRepo, apiKeySvc, zerolog.Nop())

	return &payhereFixture{db: db, svc: svc, apiKeySvc: apiKeySvc, orderRepo: orderRepo}
}

func (f *payhereFixture) subscribe(t *testing.T) *dto.CheckoutRedirect {
	t.Helper()
	redirect, err := f.svc.Subscribe(context.Background(), &dto.SubscribeRequest{
		FirstName: "Saman",
		LastName:  "Perera",
		Email:     "saman@example.com",
		PlanID:    1,
	})
	require.NoError(t, err)
	return redirect
}

func (f *payhereFixture) notification(orderID, statusCode string) *dto.Notification {
	return &dto.Notification{
		MerchantID:      testMerchantID,
		OrderID:         orderID,
		PayhereAmount:   "1000.00",
		PayhereCurrency: "LKR",
		StatusCode:      statusCode,
		Md5Sig:          notifySig(testSecret, orderID, "1000.00", "LKR", statusCode),
		SubscriptionID:  "ph-sub-42",
	}
}

func fieldValue(redirect *dto.CheckoutRedirect, name string) string {
	for _, f := range redirect.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

func TestSubscribeCreatesPendingOrder(t *testing.T) {
	f := newPayhereFixture(t)
	redirect := f.subscribe(t)

	assert.Equal(t, "https://sandbox.payhere.lk/pay/checkout", redirect.CheckoutURL)
	assert.NotEmpty(t, redirect.OrderID)
	assert.Equal(t, redirect.OrderID, fieldValue(redirect, "order_id"))
	assert.Equal(t, "1000.00", fieldValue(redirect, "amount"))
	assert.Equal(t, "LKR", fieldValue(redirect, "currency"))
	assert.Equal(t, "Starter subscription", fieldValue(redirect, "items"))
	assert.Equal(t, "Sri Lanka", fieldValue(redirect, "country"))
	assert.Equal(t, "https://api.example.com/webhooks/payhere", fieldValue(redirect, "notify_url"))
	assert.Equal(t, "https://api.example.com/subscribe/return?order_id="+redirect.OrderID, fieldValue(redirect, "return_url"))
	assert.Equal(t, notifySigForCheckout(redirect.OrderID), fieldValue(redirect, "hash"))

	order, err := f.orderRepo.FindByOrderID(context.Background(), redirect.OrderID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, order.Status)
	assert.Equal(t, "saman@example.com", order.CustomerEmail)
}

// notifySigForCheckout reproduces the outbound checkout hash (no status code).
func notifySigForCheckout(orderID string) string {
	c := client.NewPayhereClient(&config.PayHere{MerchantID: testMerchantID, MerchantSecret: testSecret})
	return c.CheckoutHash(orderID, decimal.NewFromInt(1000), "LKR")
}

func TestSubscribeUnknownPlan(t *testing.T) {
	f := newPayhereFixture(t)
	_, err := f.svc.Subscribe(context.Background(), &dto.SubscribeRequest{
		FirstName: "Saman", LastName: "Perera", Email: "saman@example.com", PlanID: 99,
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSuccessNotificationActivatesAndMints(t *testing.T) {
	f := newPayhereFixture(t)
	ctx := context.Background()
	redirect := f.subscribe(t)

	require.NoError(t, f.svc.HandleNotification(ctx, f.notification(redirect.OrderID, "2")))

	order, err := f.orderRepo.FindByOrderID(ctx, redirect.OrderID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, order.Status)
	assert.Equal(t, "ph-sub-42", order.PayhereSubscriptionID)
	require.NotNil(t, order.APIKeyID)
	require.NotNil(t, order.APIKeyPlain)

	// minted key carries the plan quota and authenticates
	key, err := f.apiKeySvc.ValidateAndConsume(ctx, *order.APIKeyPlain)
	require.NoError(t, err)
	assert.EqualValues(t, 9999, key.QuotaRemaining)
	assert.Equal(t, "saman@example.com", key.OwnerEmail)
}

func TestReplayedSuccessNotificationMintsNothing(t *testing.T) {
	f := newPayhereFixture(t)
	ctx := context.Background()
	redirect := f.subscribe(t)

	require.NoError(t, f.svc.HandleNotification(ctx, f.notification(redirect.OrderID, "2")))
	require.NoError(t, f.svc.HandleNotification(ctx, f.notification(redirect.OrderID, "2")))

	var count int64
	require.NoError(t, f.db.Model(&model.APIKey{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "replay must not mint a second key")

	order, err := f.orderRepo.FindByOrderID(ctx, redirect.OrderID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, order.Status)
}

func TestDeclineNotificationFailsOrder(t *testing.T) {
	f := newPayhereFixture(t)
	ctx := context.Background()
	redirect := f.subscribe(t)

	require.NoError(t, f.svc.HandleNotification(ctx, f.notification(redirect.OrderID, "-1")))

	order, err := f.orderRepo.FindByOrderID(ctx, redirect.OrderID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, order.Status)

	var count int64
	require.NoError(t, f.db.Model(&model.APIKey{}).Count(&count).Error)
	assert.Zero(t, count, "declined payment must not mint a key")

	// the return page stays on the generic pending answer forever
	_, err = f.svc.RevealAPIKey(ctx, redirect.OrderID)
	assert.ErrorIs(t, err, apperr.ErrOrderPending)
}

func TestIntermediateStatusCodeIsNoOp(t *testing.T) {
	f := newPayhereFixture(t)
	ctx := context.Background()
	redirect := f.subscribe(t)

	require.NoError(t, f.svc.HandleNotification(ctx, f.notification(redirect.OrderID, "0")))

	order, err := f.orderRepo.FindByOrderID(ctx, redirect.OrderID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, order.Status)
}

func TestForgedSignatureRejectedWithoutMutation(t *testing.T) {
	f := newPayhereFixture(t)
	ctx := context.Background()
	redirect := f.subscribe(t)

	n := f.notification(redirect.OrderID, "2")
	n.Md5Sig = notifySig("wrong-secret", redirect.OrderID, "1000.00", "LKR", "2")

	err := f.svc.HandleNotification(ctx, n)
	assert.ErrorIs(t, err, apperr.ErrForgedSignature)

	order, err := f.orderRepo.FindByOrderID(ctx, redirect.OrderID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, order.Status)
}

func TestTamperedAmountRejected(t *testing.T) {
	f := newPayhereFixture(t)
	ctx := context.Background()
	redirect := f.subscribe(t)

	n := f.notification(redirect.OrderID, "2")
	n.PayhereAmount = "1.00" // digest still computed over 1000.00

	assert.ErrorIs(t, f.svc.HandleNotification(ctx, n), apperr.ErrForgedSignature)
}

func TestUnknownOrderRejected(t *testing.T) {
	f := newPayhereFixture(t)

	err := f.svc.HandleNotification(context.Background(), f.notification("never-issued", "2"))
	assert.ErrorIs(t, err, apperr.ErrUnknownOrder)
}

func TestRevealAPIKeyOnce(t *testing.T) {
	f := newPayhereFixture(t)
	ctx := context.Background()
	redirect := f.subscribe(t)

	require.NoError(t, f.svc.HandleNotification(ctx, f.notification(redirect.OrderID, "2")))

	plaintext, err := f.svc.RevealAPIKey(ctx, redirect.OrderID)
	require.NoError(t, err)
	require.NotEqual(t, KeyNotAvailable, plaintext)
	assert.GreaterOrEqual(t, len(plaintext), 43, "32 bytes url-safe")

	// every later visit only ever sees the sentinel
	again, err := f.svc.RevealAPIKey(ctx, redirect.OrderID)
	require.NoError(t, err)
	assert.Equal(t, KeyNotAvailable, again)

	// the disclosed key is the one that authenticates
	_, err = f.apiKeySvc.ValidateAndConsume(ctx, plaintext)
	assert.NoError(t, err)
}

func TestRevealAPIKeyStates(t *testing.T) {
	f := newPayhereFixture(t)
	ctx := context.Background()
	redirect := f.subscribe(t)

	_, err := f.svc.RevealAPIKey(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.svc.RevealAPIKey(ctx, redirect.OrderID)
	assert.ErrorIs(t, err, apperr.ErrOrderPending)
}

func TestListSubscriptions(t *testing.T) {
	f := newPayhereFixture(t)
	f.subscribe(t)
	f.subscribe(t)

	subs, err := f.svc.ListSubscriptions(context.Background())
	require.NoError(t, err)
	assert.Len(t, subs, 2)
}
