package service

import (
	"context"
	"errors"
	"fmt"

	"payhere-integration-demo/internal/apperr"
	"payhere-integration-demo/internal/client"
	"payhere-integration-demo/internal/dto"
	"payhere-integration-demo/internal/model"
	"payhere-integration-demo/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// KeyNotAvailable is what the return page shows once the one-time plaintext
// has been disclosed (or was never minted for this order).
const KeyNotAvailable = "key_not_available"

// fallbackQuota is granted when an active order references a plan that has
// since disappeared; the payment is already confirmed, so the notification
// must not be rejected over reference data.
const fallbackQuota = 1000

type PayhereService interface {
	// Subscribe persists a pending order and returns the signed checkout
	// redirect payload. Failure to persist aborts the whole call.
	Subscribe(ctx context.Context, req *dto.SubscribeRequest) (*dto.CheckoutRedirect, error)

	// HandleNotification runs the per-order state machine for one inbound
	// provider notification. It returns apperr.ErrForgedSignature or
	// apperr.ErrUnknownOrder for rejections; duplicates and intermediate
	// status codes acknowledge as no-ops.
	HandleNotification(ctx context.Context, n *dto.Notification) error

	// RevealAPIKey performs the at-most-once plaintext disclosure for the
	// return page. After the first successful reveal it returns
	// KeyNotAvailable. Non-active orders fail with apperr.ErrOrderPending.
	RevealAPIKey(ctx context.Context, orderID string) (string, error)

	ListSubscriptions(ctx context.Context) ([]*model.Subscription, error)
}

type payhereServiceImpl struct {
	db             *gorm.DB
	payhereClient  client.PayhereClient
	serviceBaseURL string
	orderRepo      repository.OrderRepository
	planRepo       repository.PlanRepository
	apiKeyService  APIKeyService
	logger         zerolog.Logger
}

func NewPayhereService(
	db *gorm.DB,
	payhereClient client.PayhereClient,
	serviceBaseURL string,
	orderRepo repository.OrderRepository,
	planRepo repository.PlanRepository,
	apiKeyService APIKeyService,
	logger zerolog.Logger,
) PayhereService {
	return &payhereServiceImpl{
		db:             db,
		payhereClient:  payhereClient,
		serviceBaseURL: serviceBaseURL,
		orderRepo:      orderRepo,
		planRepo:       planRepo,
		apiKeyService:  apiKeyService,
		logger:         logger,
	}
}

func (s *payhereServiceImpl) Subscribe(ctx context.Context, req *dto.SubscribeRequest) (*dto.CheckoutRedirect, error) {
	plan, err := s.planRepo.FindByID(ctx, req.PlanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("find plan: %w", err)
	}

	orderID := uuid.NewString()

	err = s.orderRepo.Create(ctx, s.db, &model.Subscription{
		OrderID:       orderID,
		CustomerEmail: req.Email,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		PlanID:        plan.ID,
		Status:        model.StatusPending,
	})
	if err != nil {
		return nil, fmt.Errorf("store pending order: %w", err)
	}

	hash := s.payhereClient.CheckoutHash(orderID, plan.Price, plan.Currency)

	return &dto.CheckoutRedirect{
		CheckoutURL: s.payhereClient.CheckoutURL(),
		OrderID:     orderID,
		Fields: []dto.FormField{
			{Name: "merchant_id", Value: s.payhereClient.MerchantID()},
			{Name: "return_url", Value: s.serviceBaseURL + "/subscribe/return?order_id=" + orderID},
			{Name: "cancel_url", Value: s.serviceBaseURL + "/subscribe/cancel?order_id=" + orderID},
			{Name: "notify_url", Value: s.serviceBaseURL + "/webhooks/payhere"},
			{Name: "order_id", Value: orderID},
			{Name: "items", Value: plan.Name + " subscription"},
			{Name: "currency", Value: plan.Currency},
			{Name: "amount", Value: client.FormatAmount(plan.Price)},
			{Name: "recurrence", Value: plan.Recurrence},
			{Name: "duration", Value: plan.Duration},
			{Name: "first_name", Value: req.FirstName},
			{Name: "last_name", Value: req.LastName},
			{Name: "email", Value: req.Email},
			{Name: "phone", Value: req.Phone},
			{Name: "address", Value: req.Address},
			{Name: "city", Value: req.City},
			{Name: "country", Value: "Sri Lanka"},
			{Name: "hash", Value: hash},
		},
	}, nil
}

func (s *payhereServiceImpl) HandleNotification(ctx context.Context, n *dto.Notification) error {
	if !s.payhereClient.VerifyNotificationSig(n.OrderID, n.PayhereAmount, n.PayhereCurrency, n.StatusCode, n.Md5Sig) {
		return apperr.ErrForgedSignature
	}

	order, err := s.orderRepo.FindByOrderID(ctx, n.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrUnknownOrder
		}
		return fmt.Errorf("find order: %w", err)
	}

	if _, err := model.ParseStatus(string(order.Status)); err != nil {
		return fmt.Errorf("order %s: %w", order.OrderID, err)
	}

	switch n.StatusCode {
	case "2":
		return s.activateOrder(ctx, order, n.SubscriptionID)
	case "-1", "-2", "-3":
		return s.failOrder(ctx, order)
	default:
		// intermediate provider code, acknowledge without state change
		s.logger.Info().
			Str("order_id", n.OrderID).
			Str("status_code", n.StatusCode).
			Msg("ignoring non-terminal payhere status code")
		return nil
	}
}

// activateOrder transitions pending→active and mints the API key in one
// transaction. The conditional MarkActive serializes concurrent success
// notifications: only the winner mints, everyone else acknowledges.
func (s *payhereServiceImpl) activateOrder(ctx context.Context, order *model.Subscription, providerSubID string) error {
	if !order.Status.CanTransition(model.StatusActive) {
		s.logger.Info().
			Str("order_id", order.OrderID).
			Str("status", string(order.Status)).
			Msg("duplicate success notification, order already terminal")
		return nil
	}

	quota := int64(fallbackQuota)
	plan, err := s.planRepo.FindByID(ctx, order.PlanID)
	if err != nil {
		s.logger.Warn().
			Str("order_id", order.OrderID).
			Uint("plan_id", order.PlanID).
			Err(err).
			Msg("plan lookup failed, issuing fallback quota")
	} else {
		quota = plan.MonthlyQuota
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		won, err := s.orderRepo.MarkActive(ctx, tx, order.OrderID, providerSubID)
		if err != nil {
			return fmt.Errorf("mark order active: %w", err)
		}
		if !won {
			s.logger.Info().
				Str("order_id", order.OrderID).
				Msg("lost activation race, acknowledging as duplicate")
			return nil
		}

		keyID, plaintext, err := s.apiKeyService.MintTx(ctx, tx, order.CustomerEmail, quota)
		if err != nil {
			return fmt.Errorf("mint api key: %w", err)
		}

		if err := s.orderRepo.LinkAPIKey(ctx, tx, order.OrderID, keyID, plaintext); err != nil {
			return fmt.Errorf("link api key: %w", err)
		}

		s.logger.Info().
			Str("order_id", order.OrderID).
			Str("owner", order.CustomerEmail).
			Int64("quota", quota).
			Msg("order activated, api key minted")
		return nil
	})
}

func (s *payhereServiceImpl) failOrder(ctx context.Context, order *model.Subscription) error {
	if !order.Status.CanTransition(model.StatusFailed) {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		won, err := s.orderRepo.MarkFailed(ctx, tx, order.OrderID)
		if err != nil {
			return fmt.Errorf("mark order failed: %w", err)
		}
		if won {
			s.logger.Info().
				Str("order_id", order.OrderID).
				Msg("order marked failed_or_cancelled")
		}
		return nil
	})
}

func (s *payhereServiceImpl) RevealAPIKey(ctx context.Context, orderID string) (string, error) {
	order, err := s.orderRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperr.ErrNotFound
		}
		return "", fmt.Errorf("find order: %w", err)
	}

	// failed and pending orders get the same generic answer
	if order.Status != model.StatusActive {
		return "", apperr.ErrOrderPending
	}

	plaintext, err := s.orderRepo.TakePlainKey(ctx, orderID)
	if err != nil {
		return "", fmt.Errorf("take plain key: %w", err)
	}
	if plaintext == "" {
		return KeyNotAvailable, nil
	}

	return plaintext, nil
}

func (s *payhereServiceImpl) ListSubscriptions(ctx context.Context) ([]*model.Subscription, error) {
	return s.orderRepo.List(ctx)
}
