package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float32 `json:"temperature"`
}

func newTestCompleter(t *testing.T, handler http.HandlerFunc) *Completer {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewCompleter(&CompleterConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "gpt-4o-mini",
		Logger:  zap.NewNop(),
	})
}

func TestCompleter_Complete(t *testing.T) {
	var gotReq chatRequest

	c := newTestCompleter(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotReq)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "  A detailed job description.  "}}],
			"usage": {"total_tokens": 42}
		}`))
	})

	got, err := c.Complete(context.Background(), "You are a helpful assistant.", "Generate a job description")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if got != "A detailed job description." {
		t.Errorf("Complete = %q, want trimmed content", got)
	}
	if gotReq.Model != "gpt-4o-mini" {
		t.Errorf("model = %q", gotReq.Model)
	}
	if len(gotReq.Messages) != 2 {
		t.Fatalf("expected system+user messages, got %d", len(gotReq.Messages))
	}
	if gotReq.Messages[0].Role != "system" || gotReq.Messages[1].Role != "user" {
		t.Errorf("unexpected roles: %s, %s", gotReq.Messages[0].Role, gotReq.Messages[1].Role)
	}
	if gotReq.MaxTokens != 300 {
		t.Errorf("max_tokens = %d, want default 300", gotReq.MaxTokens)
	}
}

func TestCompleter_NoSystemMessage(t *testing.T) {
	var gotReq chatRequest

	c := newTestCompleter(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "ok"}}]}`))
	})

	if _, err := c.Complete(context.Background(), "", "analyze this"); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Role != "user" {
		t.Errorf("expected single user message, got %+v", gotReq.Messages)
	}
}

func TestCompleter_ProviderError(t *testing.T) {
	c := newTestCompleter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "boom"}}`))
	})

	if _, err := c.Complete(context.Background(), "", "prompt"); err == nil {
		t.Fatal("expected error")
	}
}

func TestCompleter_EmptyChoices(t *testing.T) {
	c := newTestCompleter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": []}`))
	})

	if _, err := c.Complete(context.Background(), "", "prompt"); err == nil {
		t.Fatal("expected error for empty choices")
	}
}
