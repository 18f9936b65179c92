package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pratik-mahalle/tasknest/internal/domain/account"
	"github.com/pratik-mahalle/tasknest/internal/pkg/logger"
)

type stubChecker struct {
	decision account.Decision
	err      error
}

func (s stubChecker) CheckQuota(ctx context.Context, id string) (account.Decision, error) {
	return s.decision, s.err
}

type errorBody struct {
	Success bool `json:"success"`
	Error   struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

func TestFeatureGate(t *testing.T) {
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	resetAt := time.Date(2026, time.March, 11, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		accountID   string
		checker     stubChecker
		wantStatus  int
		wantCode    string
		wantNext    bool
		wantHeaders map[string]string
	}{
		{
			name:      "allowed",
			accountID: "acc-1",
			checker: stubChecker{decision: account.Decision{
				Allowed: true, Used: 1, Limit: 3, Remaining: 2, ResetAt: &resetAt,
				Tier: account.TierFree, Pool: account.PoolDaily,
			}},
			wantStatus: http.StatusOK,
			wantNext:   true,
			wantHeaders: map[string]string{
				QuotaLimitHeader:     "3",
				QuotaRemainingHeader: "2",
				QuotaResetHeader:     "1773219600",
				QuotaTierHeader:      "free",
			},
		},
		{
			name:      "pro is unlimited",
			accountID: "acc-1",
			checker: stubChecker{decision: account.Decision{
				Allowed: true, Limit: account.Unlimited, Remaining: account.Unlimited,
				Tier: account.TierPro, Pool: account.PoolUnlimited,
			}},
			wantStatus: http.StatusOK,
			wantNext:   true,
			wantHeaders: map[string]string{
				QuotaLimitHeader: "-1",
				QuotaResetHeader: "",
				QuotaTierHeader:  "pro",
			},
		},
		{
			name:      "exhausted",
			accountID: "acc-1",
			checker: stubChecker{decision: account.Decision{
				Used: 3, Limit: 3, ResetAt: &resetAt,
				Tier: account.TierFree, Pool: account.PoolDaily,
			}},
			wantStatus: http.StatusTooManyRequests,
			wantCode:   "QUOTA_EXCEEDED",
			wantHeaders: map[string]string{
				QuotaRemainingHeader: "0",
			},
		},
		{
			name:       "unknown account",
			accountID:  "missing",
			checker:    stubChecker{err: account.ErrNotFound},
			wantStatus: http.StatusNotFound,
			wantCode:   "ACCOUNT_NOT_FOUND",
		},
		{
			name:       "check failure",
			accountID:  "acc-1",
			checker:    stubChecker{err: errors.New("connection refused")},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
		},
		{
			name:       "unauthenticated",
			wantStatus: http.StatusUnauthorized,
			wantCode:   "UNAUTHORIZED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			var seen account.Decision
			handler := FeatureGate(tt.checker, log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				seen, _ = GetQuotaDecision(r)
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodPost, "/api/v1/ai/categorize", nil)
			if tt.accountID != "" {
				req = req.WithContext(WithAccountID(req.Context(), tt.accountID))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if nextCalled != tt.wantNext {
				t.Errorf("next called = %v, want %v", nextCalled, tt.wantNext)
			}
			if tt.wantNext && seen.Tier != tt.checker.decision.Tier {
				t.Errorf("decision in context = %+v", seen)
			}
			for k, v := range tt.wantHeaders {
				if got := rec.Header().Get(k); got != v {
					t.Errorf("header %s = %q, want %q", k, got, v)
				}
			}
			if tt.wantCode != "" {
				var body errorBody
				if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
					t.Fatalf("decode body: %v", err)
				}
				if body.Success || body.Error.Code != tt.wantCode {
					t.Errorf("error code = %q, want %q", body.Error.Code, tt.wantCode)
				}
			}
		})
	}
}

func TestFeatureGate_QuotaExceededDetails(t *testing.T) {
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	resetAt := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	checker := stubChecker{decision: account.Decision{
		Used: 100, Limit: 100, ResetAt: &resetAt,
		Tier: account.TierBasic, Pool: account.PoolMonthly,
	}}

	handler := FeatureGate(checker, log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next must not run")
	}))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(WithAccountID(req.Context(), "acc-1"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var body errorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	if body.Error.Message != "Monthly AI limit reached. Upgrade to pro for unlimited usage." {
		t.Errorf("message = %q", body.Error.Message)
	}
	d := body.Error.Details
	if d["requiredTier"] != "pro" || d["tier"] != "basic" || d["pool"] != "monthly" {
		t.Errorf("details = %v", d)
	}
	if d["limit"] != float64(100) || d["used"] != float64(100) || d["remaining"] != float64(0) {
		t.Errorf("details = %v", d)
	}
}
