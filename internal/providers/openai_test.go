package providers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pratik-mahalle/tasknest/internal/config"
	"github.com/pratik-mahalle/tasknest/internal/pkg/errors"
)

func completionServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]interface{}{"message": "upstream failure", "type": "server_error"},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": time.Now().Unix(),
			"model":   "gpt-4o-mini",
			"choices": []map[string]interface{}{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]interface{}{"role": "assistant", "content": content},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestAssistant(srv *httptest.Server) *OpenAIAssistant {
	return NewOpenAIAssistant(config.AIConfig{
		OpenAIAPIKey: "sk-test",
		BaseURL:      srv.URL + "/v1",
		Timeout:      5 * time.Second,
	})
}

func TestOpenAIAssistant_Categorize(t *testing.T) {
	srv := completionServer(t, http.StatusOK, "Shopping.")

	got, err := newTestAssistant(srv).Categorize(context.Background(), "order new running shoes")
	if err != nil {
		t.Fatalf("Categorize() error = %v", err)
	}
	if got != "shopping" {
		t.Errorf("Categorize() = %q, want shopping", got)
	}
}

func TestOpenAIAssistant_Suggest(t *testing.T) {
	srv := completionServer(t, http.StatusOK, "1. List the documents\n2. Fill the form\n3. Submit online\n4. Celebrate")

	got, err := newTestAssistant(srv).Suggest(context.Background(), "renew passport")
	if err != nil {
		t.Fatalf("Suggest() error = %v", err)
	}
	if len(got) != maxSuggestions || got[2] != "Submit online" {
		t.Errorf("Suggest() = %q", got)
	}
}

func TestOpenAIAssistant_UpstreamError(t *testing.T) {
	srv := completionServer(t, http.StatusInternalServerError, "")

	_, err := newTestAssistant(srv).Categorize(context.Background(), "anything")

	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		t.Fatalf("Categorize() error = %v, want AppError", err)
	}
	if appErr.Code != errors.ErrCodeAIProvider || appErr.StatusCode != http.StatusBadGateway {
		t.Errorf("got code=%s status=%d", appErr.Code, appErr.StatusCode)
	}
	if !strings.Contains(appErr.Message, "openai") {
		t.Errorf("Message = %q", appErr.Message)
	}
}

func TestNewAssistant(t *testing.T) {
	if a := NewAssistant(config.AIConfig{}); a.Name() != "fallback" {
		t.Errorf("NewAssistant() without key = %s, want fallback", a.Name())
	}
	if a := NewAssistant(config.AIConfig{OpenAIAPIKey: "sk-test"}); a.Name() != "openai" {
		t.Errorf("NewAssistant() with key = %s, want openai", a.Name())
	}
}
