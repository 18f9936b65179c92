package handlers

import (
	"io"
	"net/http"

	"github.com/pratik-mahalle/tasknest/internal/api/dto"
	"github.com/pratik-mahalle/tasknest/internal/api/middleware"
	"github.com/pratik-mahalle/tasknest/internal/domain/account"
	"github.com/pratik-mahalle/tasknest/internal/pkg/errors"
	"github.com/pratik-mahalle/tasknest/internal/pkg/logger"
	"github.com/pratik-mahalle/tasknest/internal/pkg/utils"
	"github.com/pratik-mahalle/tasknest/internal/pkg/validator"
	"github.com/pratik-mahalle/tasknest/internal/services"
)

// StripeSignatureHeader carries the webhook signature
const StripeSignatureHeader = "Stripe-Signature"

// BillingHandler handles plan listing, checkout and payment webhooks
type BillingHandler struct {
	billing       *services.BillingService
	subscriptions account.SubscriptionService
	logger        *logger.Logger
	validator     *validator.Validator
}

// NewBillingHandler creates a new BillingHandler
func NewBillingHandler(
	billing *services.BillingService,
	subscriptions account.SubscriptionService,
	log *logger.Logger,
	val *validator.Validator,
) *BillingHandler {
	return &BillingHandler{
		billing:       billing,
		subscriptions: subscriptions,
		logger:        log,
		validator:     val,
	}
}

// ListPlans returns the paid plans, marking the caller's current one
// @Summary List subscription plans
// @Tags Billing
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.PlanDTO "List of plans"
// @Router /api/v1/billing/plans [get]
func (h *BillingHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	id, ok := requireAccountID(w, r)
	if !ok {
		return
	}

	a, err := h.subscriptions.GetEffectiveAccount(r.Context(), id)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	plans := h.billing.Plans()
	out := make([]dto.PlanDTO, 0, len(plans))
	for _, p := range plans {
		out = append(out, dto.ToPlanDTO(p, string(a.Tier)))
	}

	utils.WriteSuccess(w, http.StatusOK, out)
}

// Checkout starts a hosted payment for a plan
// @Summary Create checkout session
// @Tags Billing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CheckoutRequest true "Plan to buy"
// @Success 201 {object} dto.CheckoutResponse
// @Failure 400 {object} utils.ErrorResponse "Invalid plan"
// @Failure 503 {object} utils.ErrorResponse "Billing not configured"
// @Router /api/v1/billing/checkout [post]
func (h *BillingHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	id, ok := requireAccountID(w, r)
	if !ok {
		return
	}

	var req dto.CheckoutRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	plan, err := account.ParseTier(req.Plan)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	sess, err := h.billing.CreateCheckout(r.Context(), id, plan)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusCreated, dto.CheckoutResponse{
		SessionID: sess.ID,
		URL:       sess.URL,
	})
}

// Webhook receives payment events from Stripe
// @Summary Payment webhook
// @Tags Billing
// @Accept json
// @Produce json
// @Success 200 {object} dto.WebhookResponse
// @Failure 400 {object} utils.ErrorResponse "Malformed event"
// @Failure 401 {object} utils.ErrorResponse "Invalid signature"
// @Router /api/v1/billing/webhook [post]
func (h *BillingHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		utils.WriteError(w, errors.BadRequest("Failed to read webhook body"))
		return
	}

	outcome, err := h.billing.HandleWebhook(r.Context(), payload, r.Header.Get(StripeSignatureHeader))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.AddLogField(w, "payment_outcome", outcome)
	utils.WriteSuccess(w, http.StatusOK, dto.WebhookResponse{Outcome: string(outcome)})
}
