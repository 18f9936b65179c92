package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/pratik-mahalle/tasknest/internal/domain/account"
	"github.com/pratik-mahalle/tasknest/internal/pkg/errors"
	"github.com/pratik-mahalle/tasknest/internal/pkg/logger"
	"github.com/pratik-mahalle/tasknest/internal/pkg/utils"
)

// QuotaDecisionKey is the context key for the quota decision of the request
const QuotaDecisionKey ContextKey = "quotaDecision"

// Quota headers set on gated responses
const (
	QuotaLimitHeader     = "X-Quota-Limit"
	QuotaRemainingHeader = "X-Quota-Remaining"
	QuotaResetHeader     = "X-Quota-Reset"
	QuotaTierHeader      = "X-Quota-Tier"
)

// QuotaChecker is the part of the quota service the gate needs
type QuotaChecker interface {
	CheckQuota(ctx context.Context, id string) (account.Decision, error)
}

// FeatureGate rejects AI requests from accounts without remaining quota.
// Allowed requests carry the decision in their context. Usage is recorded
// by the handler once the AI call succeeded.
func FeatureGate(quota QuotaChecker, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := GetAccountID(r)
			if !ok {
				utils.WriteError(w, errors.Unauthorized("Authentication required"))
				return
			}

			d, err := quota.CheckQuota(r.Context(), id)
			if err != nil {
				log.WithFields(map[string]interface{}{
					"account_id": id,
					"request_id": RequestIDFromContext(r.Context()),
				}).WarnWithErr(err, "Quota check failed")
				WriteError(w, err)
				return
			}

			SetQuotaHeaders(w, d)
			AddLogField(w, "quota_tier", d.Tier)

			if !d.Allowed {
				AddLogField(w, "quota_exceeded", true)
				WriteError(w, account.NewQuotaExceeded(d))
				return
			}

			ctx := context.WithValue(r.Context(), QuotaDecisionKey, d)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SetQuotaHeaders exposes d on the response
func SetQuotaHeaders(w http.ResponseWriter, d account.Decision) {
	h := w.Header()
	h.Set(QuotaLimitHeader, strconv.Itoa(d.Limit))
	h.Set(QuotaRemainingHeader, strconv.Itoa(d.Remaining))
	h.Set(QuotaTierHeader, string(d.Tier))
	if d.ResetAt != nil {
		h.Set(QuotaResetHeader, strconv.FormatInt(d.ResetAt.Unix(), 10))
	} else {
		h.Del(QuotaResetHeader)
	}
}

// GetQuotaDecision returns the decision stored by FeatureGate
func GetQuotaDecision(r *http.Request) (account.Decision, bool) {
	d, ok := r.Context().Value(QuotaDecisionKey).(account.Decision)
	return d, ok
}
