package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, status int, body string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, Token: "token"})
}

func TestClient_ErrorDetails(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		wantCode     string
		wantTier     string
		wantFields   []string
		wantQuotaErr bool
	}{
		{
			name:       "validation error with field list",
			status:     http.StatusBadRequest,
			body:       `{"success":false,"error":{"code":"VALIDATION_ERROR","message":"Request validation failed","details":[{"field":"text","tag":"required","message":"text is required"}]}}`,
			wantCode:   CodeValidation,
			wantFields: []string{"text"},
		},
		{
			name:         "quota error with object details",
			status:       http.StatusTooManyRequests,
			body:         `{"success":false,"error":{"code":"QUOTA_EXCEEDED","message":"Daily AI limit reached. Upgrade to basic for more usage.","details":{"limit":3,"used":3,"remaining":0,"requiredTier":"basic"}}}`,
			wantCode:     CodeQuotaExceeded,
			wantTier:     "basic",
			wantQuotaErr: true,
		},
		{
			name:     "error without details",
			status:   http.StatusNotFound,
			body:     `{"success":false,"error":{"code":"ACCOUNT_NOT_FOUND","message":"Account not found"}}`,
			wantCode: CodeAccountNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.status, tt.body)

			_, err := c.Categorize(context.Background(), "")
			apiErr, ok := AsAPIError(err)
			if !ok {
				t.Fatalf("error = %v, want *APIError", err)
			}
			if apiErr.Code != tt.wantCode || apiErr.StatusCode != tt.status {
				t.Errorf("got code %q status %d, want %q %d", apiErr.Code, apiErr.StatusCode, tt.wantCode, tt.status)
			}
			if got := apiErr.RequiredTier(); got != tt.wantTier {
				t.Errorf("RequiredTier() = %q, want %q", got, tt.wantTier)
			}
			if got := apiErr.IsQuotaExceeded(); got != tt.wantQuotaErr {
				t.Errorf("IsQuotaExceeded() = %v, want %v", got, tt.wantQuotaErr)
			}

			fields := apiErr.FieldErrors()
			if len(fields) != len(tt.wantFields) {
				t.Fatalf("FieldErrors() = %+v, want fields %v", fields, tt.wantFields)
			}
			for i, f := range fields {
				if f.Field != tt.wantFields[i] {
					t.Errorf("field %d = %q, want %q", i, f.Field, tt.wantFields[i])
				}
			}
		})
	}
}

func TestClient_NonJSONError(t *testing.T) {
	c := newTestClient(t, http.StatusBadGateway, "upstream down")

	_, err := c.Quota(context.Background())
	apiErr, ok := AsAPIError(err)
	if !ok {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Message != "upstream down" || !apiErr.IsServerError() {
		t.Errorf("got %+v", apiErr)
	}
}

func TestAPIError_FieldSummary(t *testing.T) {
	e := &APIError{
		Code:    CodeValidation,
		Details: []byte(`[{"field":"plan","tag":"paid_tier","message":"plan must be basic or pro"},{"field":"text","tag":"required","message":"text is required"}]`),
	}
	want := "plan: plan must be basic or pro; text: text is required"
	if got := e.FieldSummary(); got != want {
		t.Errorf("FieldSummary() = %q, want %q", got, want)
	}
}
