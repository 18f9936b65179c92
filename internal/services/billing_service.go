package services

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/pratik-mahalle/tasknest/internal/billing"
	"github.com/pratik-mahalle/tasknest/internal/domain/account"
	"github.com/pratik-mahalle/tasknest/internal/pkg/errors"
	"github.com/pratik-mahalle/tasknest/internal/pkg/logger"
	"github.com/pratik-mahalle/tasknest/internal/pkg/metrics"
)

// PaymentOutcome describes what a webhook delivery did
type PaymentOutcome string

const (
	PaymentApplied   PaymentOutcome = "applied"
	PaymentDuplicate PaymentOutcome = "duplicate"
	PaymentIgnored   PaymentOutcome = "ignored"
	PaymentFailed    PaymentOutcome = "failed"
)

// BillingService turns confirmed payments into subscription upgrades
type BillingService struct {
	gateway       billing.Gateway
	store         billing.IdempotencyStore
	accounts      account.Repository
	subscriptions account.SubscriptionService
	logger        *logger.Logger
}

// NewBillingService creates a new billing service
func NewBillingService(
	gateway billing.Gateway,
	store billing.IdempotencyStore,
	accounts account.Repository,
	subscriptions account.SubscriptionService,
	log *logger.Logger,
) *BillingService {
	return &BillingService{
		gateway:       gateway,
		store:         store,
		accounts:      accounts,
		subscriptions: subscriptions,
		logger:        log,
	}
}

// Plans lists the purchasable plans
func (s *BillingService) Plans() []billing.Plan {
	return s.gateway.Plans()
}

// CreateCheckout starts a payment for plan
func (s *BillingService) CreateCheckout(ctx context.Context, accountID string, plan account.Tier) (*billing.CheckoutSession, error) {
	if !plan.IsPaid() {
		return nil, errors.BadRequest(fmt.Sprintf("Plan %q cannot be purchased", plan))
	}
	if _, err := s.accounts.Get(ctx, accountID); err != nil {
		return nil, err
	}

	sess, err := s.gateway.CreateCheckoutSession(ctx, accountID, plan)
	switch {
	case stderrors.Is(err, billing.ErrBillingDisabled):
		return nil, errors.ServiceUnavailable("Billing is not configured")
	case stderrors.Is(err, billing.ErrUnknownPlan):
		return nil, errors.BadRequest(fmt.Sprintf("Plan %q is not available", plan))
	case err != nil:
		s.logger.With("account_id", accountID).ErrorWithErr(err, "Failed to create checkout session")
		return nil, errors.PaymentError("Failed to create checkout session", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"account_id": accountID,
		"plan":       plan,
		"session_id": sess.ID,
	}).Info("Checkout session created")

	return sess, nil
}

// HandleWebhook verifies a gateway webhook and applies the payment it confirms
func (s *BillingService) HandleWebhook(ctx context.Context, payload []byte, signature string) (PaymentOutcome, error) {
	evt, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		metrics.RecordPaymentEvent("rejected")
		s.logger.WarnWithErr(err, "Rejected payment webhook")
		if stderrors.Is(err, billing.ErrInvalidSignature) {
			return PaymentFailed, errors.Unauthorized("Invalid webhook signature")
		}
		return PaymentFailed, errors.BadRequest("Malformed payment event")
	}
	if evt == nil {
		metrics.RecordPaymentEvent(string(PaymentIgnored))
		return PaymentIgnored, nil
	}

	return s.HandleConfirmedPayment(ctx, *evt)
}

// HandleConfirmedPayment upgrades the account once per payment reference.
// A failed upgrade releases the reference so the gateway can redeliver it.
func (s *BillingService) HandleConfirmedPayment(ctx context.Context, evt account.PaymentConfirmation) (PaymentOutcome, error) {
	if !evt.PlanType.IsPaid() {
		return PaymentFailed, errors.BadRequest(fmt.Sprintf("Plan %q cannot be purchased", evt.PlanType))
	}
	if evt.PaymentReference == "" {
		return PaymentFailed, errors.BadRequest("Payment reference is required")
	}

	log := s.logger.WithFields(map[string]interface{}{
		"account_id":  evt.AccountID,
		"plan":        evt.PlanType,
		"payment_ref": evt.PaymentReference,
	})

	first, err := s.store.MarkProcessed(ctx, evt)
	if err != nil {
		metrics.RecordPaymentEvent(string(PaymentFailed))
		log.ErrorWithErr(err, "Failed to record payment")
		return PaymentFailed, errors.Internal("Failed to record payment", err)
	}
	if !first {
		metrics.RecordPaymentEvent(string(PaymentDuplicate))
		log.Info("Duplicate payment confirmation ignored")
		return PaymentDuplicate, nil
	}

	if _, err := s.subscriptions.Upgrade(ctx, evt.AccountID, evt.PlanType, evt.PaymentReference); err != nil {
		metrics.RecordPaymentEvent(string(PaymentFailed))
		if releaseErr := s.store.Release(ctx, evt.PaymentReference); releaseErr != nil {
			log.ErrorWithErr(releaseErr, "Failed to release payment reference")
		}
		log.ErrorWithErr(err, "Failed to apply payment")
		return PaymentFailed, err
	}

	metrics.RecordPaymentEvent(string(PaymentApplied))
	log.Info("Payment applied")
	return PaymentApplied, nil
}
