package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pratik-mahalle/tasknest/internal/api/handlers"
	"github.com/pratik-mahalle/tasknest/internal/api/middleware"
	"github.com/pratik-mahalle/tasknest/internal/billing"
	"github.com/pratik-mahalle/tasknest/internal/config"
	"github.com/pratik-mahalle/tasknest/internal/domain/account"
	"github.com/pratik-mahalle/tasknest/internal/pkg/logger"
	"github.com/pratik-mahalle/tasknest/internal/pkg/validator"
	"github.com/pratik-mahalle/tasknest/internal/repository/postgres"
	"github.com/pratik-mahalle/tasknest/internal/services"
	"github.com/pratik-mahalle/tasknest/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"
)

const (
	testJWTSecret     = "test-secret"
	testWebhookSecret = "whsec_router_test"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

// detailObject decodes error details sent as an object (quota errors)
func (e envelope) detailObject(t *testing.T) map[string]interface{} {
	t.Helper()
	var details map[string]interface{}
	require.NoError(t, json.Unmarshal(e.Error.Details, &details), string(e.Error.Details))
	return details
}

// detailFields returns the field names of a validation error's details
func (e envelope) detailFields(t *testing.T) []string {
	t.Helper()
	var details []struct {
		Field string `json:"field"`
	}
	require.NoError(t, json.Unmarshal(e.Error.Details, &details), string(e.Error.Details))
	fields := make([]string, 0, len(details))
	for _, d := range details {
		fields = append(fields, d.Field)
	}
	return fields
}

type testServer struct {
	handler   http.Handler
	assistant *testutil.MockAssistant
	repo      *postgres.AccountRepository
	readyErr  error
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	log := logger.New(logger.Config{Level: "error", Format: "json"})
	val := validator.New()
	limits := account.DefaultLimits()
	cfg := &config.Config{
		Server: config.ServerConfig{Environment: "test", FrontendURL: "http://localhost:5173"},
		Auth: config.AuthConfig{
			JWTSecret:          testJWTSecret,
			AccessTokenExpiry:  time.Hour,
			RefreshTokenExpiry: 24 * time.Hour,
		},
		Billing: config.BillingConfig{StripeWebhookSecret: testWebhookSecret},
	}

	db := testutil.NewTestDB(t)
	repo := postgres.NewAccountRepository(db)
	scheduler := services.NewResetScheduler(repo, limits, log)
	scheduler.Start(context.Background())
	t.Cleanup(scheduler.Stop)

	subs := services.NewSubscriptionService(repo, scheduler, limits, log)
	quota := services.NewQuotaService(repo, subs, scheduler, limits, log)
	accounts := services.NewAccountService(repo, log)
	gateway := billing.NewStripeGateway(cfg.Billing, limits)
	billingSvc := services.NewBillingService(gateway, postgres.NewPaymentEventRepository(db), repo, subs, log)

	ts := &testServer{
		assistant: &testutil.MockAssistant{Category: "work", Suggestions: []string{"Draft agenda", "Invite team"}},
		repo:      repo,
	}

	h := &Handlers{
		Health: handlers.NewHealthHandler(map[string]handlers.HealthCheck{
			"database": func(ctx context.Context) error { return ts.readyErr },
		}, log),
		Account: handlers.NewAccountHandler(accounts, cfg.Auth, log, val),
		Quota:   handlers.NewQuotaHandler(quota, subs, log),
		Billing: handlers.NewBillingHandler(billingSvc, subs, log, val),
		AI:      handlers.NewAIHandler(ts.assistant, quota, log, val),
	}
	ts.handler = New(cfg, log, h, quota, middleware.NewRateLimiter(1000, 1000))
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}, headers ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case []byte:
		buf.Write(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func (ts *testServer) signup(t *testing.T) (id, access, refresh string) {
	t.Helper()

	rec, env := ts.do(t, http.MethodPost, "/api/v1/accounts", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Account struct {
			ID   string `json:"id"`
			Tier string `json:"tier"`
		} `json:"account"`
		Tokens struct {
			AccessToken  string `json:"accessToken"`
			RefreshToken string `json:"refreshToken"`
		} `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.Equal(t, "free", created.Account.Tier)
	return created.Account.ID, created.Tokens.AccessToken, created.Tokens.RefreshToken
}

func paymentWebhook(id, plan, sessionID string) ([]byte, string) {
	payload := []byte(fmt.Sprintf(`{
		"id": "evt_%s",
		"object": "event",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": %q,
			"object": "checkout.session",
			"payment_status": "paid",
			"metadata": {"account_id": %q, "plan_type": %q}
		}}
	}`, sessionID, sessionID, id, plan))

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload: payload,
		Secret:  testWebhookSecret,
	})
	return payload, signed.Header
}

func TestRouter_FreeUserHitsLimitThenUpgrades(t *testing.T) {
	ts := newTestServer(t)
	id, token, _ := ts.signup(t)
	task := map[string]string{"text": "Prepare the quarterly report"}

	for i := 1; i <= 3; i++ {
		rec, env := ts.do(t, http.MethodPost, "/api/v1/ai/categorize", token, task)
		require.Equal(t, http.StatusOK, rec.Code, "use %d", i)
		assert.Equal(t, fmt.Sprint(3-i), rec.Header().Get(middleware.QuotaRemainingHeader))

		var resp struct {
			Category string `json:"category"`
			Quota    struct {
				Used      int `json:"used"`
				Remaining int `json:"remaining"`
			} `json:"quota"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &resp))
		assert.Equal(t, "work", resp.Category)
		assert.Equal(t, i, resp.Quota.Used)
	}

	rec, env := ts.do(t, http.MethodPost, "/api/v1/ai/categorize", token, task)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "QUOTA_EXCEEDED", env.Error.Code)
	details := env.detailObject(t)
	assert.Equal(t, "basic", details["requiredTier"])
	assert.Equal(t, float64(0), details["remaining"])
	assert.Equal(t, 3, ts.assistant.Calls, "rejected requests never reach the provider")

	payload, sig := paymentWebhook(id, "basic", "cs_test_basic")
	rec, env = ts.do(t, http.MethodPost, "/api/v1/billing/webhook", "", payload, "Stripe-Signature", sig)
	require.Equal(t, http.StatusOK, rec.Code, env.Error.Message)
	assert.JSONEq(t, `{"outcome":"applied"}`, string(env.Data))

	rec, env = ts.do(t, http.MethodPost, "/api/v1/billing/webhook", "", payload, "Stripe-Signature", sig)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"outcome":"duplicate"}`, string(env.Data))

	rec, env = ts.do(t, http.MethodGet, "/api/v1/subscription", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var status struct {
		Tier          string `json:"tier"`
		IsActive      bool   `json:"isActive"`
		DaysRemaining int    `json:"daysRemaining"`
		DailyUsage    int    `json:"dailyUsage"`
		MonthlyLimit  int    `json:"monthlyLimit"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.Equal(t, "basic", status.Tier)
	assert.True(t, status.IsActive)
	assert.Equal(t, 30, status.DaysRemaining)
	assert.Equal(t, 0, status.DailyUsage)
	assert.Equal(t, 100, status.MonthlyLimit)

	rec, _ = ts.do(t, http.MethodPost, "/api/v1/ai/suggest", token, task)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "basic", rec.Header().Get(middleware.QuotaTierHeader))
}

func TestRouter_ProviderFailureIsNotCharged(t *testing.T) {
	ts := newTestServer(t)
	id, token, _ := ts.signup(t)
	ts.assistant.Err = errors.New("model overloaded")

	rec, _ := ts.do(t, http.MethodPost, "/api/v1/ai/suggest", token, map[string]string{"text": "plan trip"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	a, err := ts.repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 0, a.DailyUsageCount)
}

func TestRouter_Validation(t *testing.T) {
	ts := newTestServer(t)
	_, token, _ := ts.signup(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       interface{}
		wantStatus int
		wantCode   string
		wantField  string
	}{
		{"empty AI text", http.MethodPost, "/api/v1/ai/categorize", map[string]string{"text": ""}, http.StatusBadRequest, "VALIDATION_ERROR", "text"},
		{"malformed JSON", http.MethodPost, "/api/v1/ai/suggest", []byte(`{"text":`), http.StatusBadRequest, "BAD_REQUEST", ""},
		{"free plan checkout", http.MethodPost, "/api/v1/billing/checkout", map[string]string{"plan": "free"}, http.StatusBadRequest, "VALIDATION_ERROR", "plan"},
		{"billing not configured", http.MethodPost, "/api/v1/billing/checkout", map[string]string{"plan": "pro"}, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := ts.do(t, tt.method, tt.path, token, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, env.Error.Code)
			if tt.wantField != "" {
				assert.Contains(t, env.detailFields(t), tt.wantField)
			}
		})
	}
}

func TestRouter_Authentication(t *testing.T) {
	ts := newTestServer(t)
	id, token, refresh := ts.signup(t)

	for _, path := range []string{"/api/v1/quota", "/api/v1/subscription", "/api/v1/accounts/me", "/api/v1/billing/plans"} {
		rec, _ := ts.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec, env := ts.do(t, http.MethodGet, "/api/v1/accounts/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, id, me.ID)

	rec, env = ts.do(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refreshToken": refresh})
	require.Equal(t, http.StatusOK, rec.Code)
	var tokens struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &tokens))
	rec, _ = ts.do(t, http.MethodGet, "/api/v1/quota", tokens.AccessToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = ts.do(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refreshToken": token})
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "access tokens cannot refresh")
}

func TestRouter_QuotaAndPlans(t *testing.T) {
	ts := newTestServer(t)
	_, token, _ := ts.signup(t)

	rec, env := ts.do(t, http.MethodGet, "/api/v1/quota", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "3", rec.Header().Get(middleware.QuotaLimitHeader))
	var q struct {
		Allowed bool   `json:"allowed"`
		Limit   int    `json:"limit"`
		Tier    string `json:"tier"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &q))
	assert.True(t, q.Allowed)
	assert.Equal(t, 3, q.Limit)
	assert.Equal(t, "free", q.Tier)

	rec, env = ts.do(t, http.MethodGet, "/api/v1/billing/plans", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var plans []struct {
		ID        string `json:"id"`
		IsCurrent bool   `json:"isCurrent"`
		Available bool   `json:"available"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &plans))
	require.Len(t, plans, 2)
	assert.Equal(t, "basic", plans[0].ID)
	assert.Equal(t, "pro", plans[1].ID)
	assert.False(t, plans[0].IsCurrent || plans[1].IsCurrent)
	assert.False(t, plans[0].Available, "no secret key configured")
}

func TestRouter_WebhookRejectsBadSignature(t *testing.T) {
	ts := newTestServer(t)
	id, _, _ := ts.signup(t)

	payload, _ := paymentWebhook(id, "pro", "cs_test_forged")
	rec, env := ts.do(t, http.MethodPost, "/api/v1/billing/webhook", "", payload, "Stripe-Signature", "t=1,v1=deadbeef")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	a, err := ts.repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, account.TierFree, a.Tier)
}

func TestRouter_Health(t *testing.T) {
	ts := newTestServer(t)

	rec, _ := ts.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))

	rec, env := ts.do(t, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready","database":"connected"}`, string(env.Data))

	ts.readyErr = errors.New("database is closed")
	rec, env = ts.do(t, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "database is unavailable", env.Error.Message)
}

func TestRouter_SwaggerDocument(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var doc struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "TaskNest API", doc.Info.Title)
	for _, path := range []string{"/api/v1/ai/categorize", "/api/v1/billing/webhook", "/api/v1/subscription"} {
		assert.Contains(t, doc.Paths, path)
	}
}
