package handlers

import (
	"net/http"

	"github.com/pratik-mahalle/tasknest/internal/api/dto"
	"github.com/pratik-mahalle/tasknest/internal/api/middleware"
	"github.com/pratik-mahalle/tasknest/internal/domain/account"
	"github.com/pratik-mahalle/tasknest/internal/pkg/logger"
	"github.com/pratik-mahalle/tasknest/internal/pkg/utils"
	"github.com/pratik-mahalle/tasknest/internal/pkg/validator"
	"github.com/pratik-mahalle/tasknest/internal/providers"
)

// AIHandler serves the quota-gated AI features. Routes must sit behind
// middleware.FeatureGate.
type AIHandler struct {
	assistant providers.Assistant
	quota     account.QuotaService
	logger    *logger.Logger
	validator *validator.Validator
}

// NewAIHandler creates a new AI handler
func NewAIHandler(assistant providers.Assistant, quota account.QuotaService, log *logger.Logger, val *validator.Validator) *AIHandler {
	return &AIHandler{
		assistant: assistant,
		quota:     quota,
		logger:    log,
		validator: val,
	}
}

// record charges the successful AI call. The response is still sent if
// recording fails since the work is already done.
func (h *AIHandler) record(w http.ResponseWriter, r *http.Request, id string) dto.QuotaDTO {
	d, err := h.quota.RecordUsage(r.Context(), id)
	if err != nil {
		h.logger.With("account_id", id).ErrorWithErr(err, "Failed to record AI usage")
		prev, _ := middleware.GetQuotaDecision(r)
		return dto.ToQuotaDTO(prev)
	}
	middleware.SetQuotaHeaders(w, d)
	return dto.ToQuotaDTO(d)
}

// Categorize assigns a category to a task
// @Summary Categorize task
// @Tags AI
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AITextRequest true "Task text"
// @Success 200 {object} dto.CategorizeResponse
// @Failure 429 {object} utils.ErrorResponse "Quota exceeded"
// @Failure 502 {object} utils.ErrorResponse "AI provider error"
// @Router /api/v1/ai/categorize [post]
func (h *AIHandler) Categorize(w http.ResponseWriter, r *http.Request) {
	id, ok := requireAccountID(w, r)
	if !ok {
		return
	}

	var req dto.AITextRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	category, err := h.assistant.Categorize(r.Context(), req.Text)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.CategorizeResponse{
		Category: category,
		Quota:    h.record(w, r, id),
	})
}

// Suggest proposes follow-up tasks
// @Summary Suggest tasks
// @Tags AI
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AITextRequest true "Task text"
// @Success 200 {object} dto.SuggestResponse
// @Failure 429 {object} utils.ErrorResponse "Quota exceeded"
// @Failure 502 {object} utils.ErrorResponse "AI provider error"
// @Router /api/v1/ai/suggest [post]
func (h *AIHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	id, ok := requireAccountID(w, r)
	if !ok {
		return
	}

	var req dto.AITextRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	suggestions, err := h.assistant.Suggest(r.Context(), req.Text)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.SuggestResponse{
		Suggestions: suggestions,
		Quota:       h.record(w, r, id),
	})
}
