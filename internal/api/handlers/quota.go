package handlers

import (
	"net/http"

	"github.com/pratik-mahalle/tasknest/internal/api/dto"
	"github.com/pratik-mahalle/tasknest/internal/api/middleware"
	"github.com/pratik-mahalle/tasknest/internal/domain/account"
	"github.com/pratik-mahalle/tasknest/internal/pkg/logger"
	"github.com/pratik-mahalle/tasknest/internal/pkg/utils"
)

// QuotaHandler exposes quota and subscription status
type QuotaHandler struct {
	quota         account.QuotaService
	subscriptions account.SubscriptionService
	logger        *logger.Logger
}

// NewQuotaHandler creates a new quota handler
func NewQuotaHandler(quota account.QuotaService, subscriptions account.SubscriptionService, log *logger.Logger) *QuotaHandler {
	return &QuotaHandler{
		quota:         quota,
		subscriptions: subscriptions,
		logger:        log,
	}
}

// Get returns whether the next AI operation would be allowed
// @Summary Current quota
// @Tags Quota
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.QuotaDTO
// @Failure 404 {object} utils.ErrorResponse "Account not found"
// @Router /api/v1/quota [get]
func (h *QuotaHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := requireAccountID(w, r)
	if !ok {
		return
	}

	d, err := h.quota.CheckQuota(r.Context(), id)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.SetQuotaHeaders(w, d)
	utils.WriteSuccess(w, http.StatusOK, dto.ToQuotaDTO(d))
}

// Status returns the subscription and usage summary
// @Summary Subscription status
// @Tags Quota
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SubscriptionStatusDTO
// @Failure 404 {object} utils.ErrorResponse "Account not found"
// @Router /api/v1/subscription [get]
func (h *QuotaHandler) Status(w http.ResponseWriter, r *http.Request) {
	id, ok := requireAccountID(w, r)
	if !ok {
		return
	}

	status, err := h.subscriptions.GetStatus(r.Context(), id)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.ToSubscriptionStatusDTO(status))
}
