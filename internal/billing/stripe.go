// Package billing connects paid plans to the Stripe payment gateway.
package billing

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/pratik-mahalle/tasknest/internal/config"
	"github.com/pratik-mahalle/tasknest/internal/domain/account"
	"github.com/stripe/stripe-go/v82"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
)

const (
	MetadataAccountID = "account_id"
	MetadataPlanType  = "plan_type"
)

var (
	// ErrBillingDisabled is returned when no Stripe key is configured
	ErrBillingDisabled = stderrors.New("billing is not configured")

	// ErrUnknownPlan is returned for plans without a configured price
	ErrUnknownPlan = stderrors.New("unknown plan")

	// ErrInvalidSignature is returned when a webhook fails verification
	ErrInvalidSignature = stderrors.New("invalid webhook signature")

	// ErrMalformedEvent is returned when a verified event lacks plan data
	ErrMalformedEvent = stderrors.New("malformed payment event")
)

// Plan is a purchasable subscription
type Plan struct {
	Tier         account.Tier `json:"tier"`
	Name         string       `json:"name"`
	PriceID      string       `json:"price_id,omitempty"`
	DailyLimit   int          `json:"daily_limit"`
	MonthlyLimit int          `json:"monthly_limit"`
	PeriodDays   int          `json:"period_days"`
	Available    bool         `json:"available"`
}

// CheckoutSession is a hosted payment page
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Gateway creates payments and turns verified webhooks into confirmations
type Gateway interface {
	// Plans lists the paid plans
	Plans() []Plan

	// CreateCheckoutSession starts a payment for plan on behalf of accountID
	CreateCheckoutSession(ctx context.Context, accountID string, plan account.Tier) (*CheckoutSession, error)

	// ParseWebhook verifies a webhook. It returns nil for events that do not
	// confirm a payment.
	ParseWebhook(payload []byte, signature string) (*account.PaymentConfirmation, error)
}

// StripeGateway implements Gateway with Stripe Checkout
type StripeGateway struct {
	cfg    config.BillingConfig
	limits account.Limits
	prices map[account.Tier]string
}

// NewStripeGateway creates a Stripe gateway. The secret key is installed
// globally for the stripe-go client.
func NewStripeGateway(cfg config.BillingConfig, limits account.Limits) *StripeGateway {
	if cfg.StripeSecretKey != "" {
		stripe.Key = cfg.StripeSecretKey
	}

	return &StripeGateway{
		cfg:    cfg,
		limits: limits,
		prices: map[account.Tier]string{
			account.TierBasic: cfg.BasicPriceID,
			account.TierPro:   cfg.ProPriceID,
		},
	}
}

// Plans lists the paid plans with their limits
func (g *StripeGateway) Plans() []Plan {
	days := int(g.limits.SubscriptionPeriod.Hours() / 24)
	return []Plan{
		{
			Tier:         account.TierBasic,
			Name:         "Basic",
			PriceID:      g.prices[account.TierBasic],
			DailyLimit:   g.limits.FreeDaily,
			MonthlyLimit: g.limits.MonthlyPool,
			PeriodDays:   days,
			Available:    g.cfg.Enabled() && g.prices[account.TierBasic] != "",
		},
		{
			Tier:         account.TierPro,
			Name:         "Pro",
			PriceID:      g.prices[account.TierPro],
			DailyLimit:   account.Unlimited,
			MonthlyLimit: account.Unlimited,
			PeriodDays:   days,
			Available:    g.cfg.Enabled() && g.prices[account.TierPro] != "",
		},
	}
}

// CreateCheckoutSession creates a one-off payment session for one
// subscription period of plan
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, accountID string, plan account.Tier) (*CheckoutSession, error) {
	if !g.cfg.Enabled() {
		return nil, ErrBillingDisabled
	}
	priceID, ok := g.prices[plan]
	if !ok || priceID == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlan, plan)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(accountID),
		SuccessURL:        stripe.String(g.cfg.SuccessURL),
		CancelURL:         stripe.String(g.cfg.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.AddMetadata(MetadataAccountID, accountID)
	params.AddMetadata(MetadataPlanType, string(plan))

	sess, err := checkoutsession.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create checkout session: %w", err)
	}

	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// ParseWebhook verifies the Stripe signature and extracts a confirmation
// from paid checkout.session.completed events
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*account.PaymentConfirmation, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.cfg.StripeWebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		return nil, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return nil, nil
	}

	accountID := sess.Metadata[MetadataAccountID]
	if accountID == "" {
		accountID = sess.ClientReferenceID
	}
	if accountID == "" {
		return nil, fmt.Errorf("%w: session %s has no account", ErrMalformedEvent, sess.ID)
	}

	plan, err := account.ParseTier(sess.Metadata[MetadataPlanType])
	if err != nil || !plan.IsPaid() {
		return nil, fmt.Errorf("%w: session %s has plan %q", ErrMalformedEvent, sess.ID, sess.Metadata[MetadataPlanType])
	}

	return &account.PaymentConfirmation{
		AccountID:        accountID,
		PlanType:         plan,
		PaymentReference: sess.ID,
	}, nil
}

var _ Gateway = (*StripeGateway)(nil)
