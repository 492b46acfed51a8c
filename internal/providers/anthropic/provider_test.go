// internal/providers/anthropic/provider_test.go
package anthropic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/anastev982/llm-eval-framework/internal/appconfig"
	"github.com/anastev982/llm-eval-framework/internal/providers"
)

func TestProviderStream(t *testing.T) {
	t.Parallel()

	var capturedBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		capturedBody = body
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude-test","content":[{"type":"text","text":"finance"}],"stop_reason":"end_turn","stop_sequence":null,"usage":{"input_tokens":20,"output_tokens":2}}`))
	}))
	defer server.Close()

	provider := New(&appconfig.Config{TimeoutSeconds: 5}, option.WithBaseURL(server.URL), option.WithAPIKey("test-key"))

	text, meta, err := providers.Complete(context.Background(), provider, "claude-test", "classify", "Text: rates rose\nLabel:", appconfig.Parameters{})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if text != "finance" {
		t.Fatalf("unexpected text %q", text)
	}
	if meta.Provider != Name || meta.Model != "claude-test" || meta.PromptTokens != 20 || meta.CompletionTokens != 2 {
		t.Fatalf("unexpected metadata: %+v", meta)
	}

	var payload struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
		System    []struct {
			Text string `json:"text"`
		} `json:"system"`
		Messages []struct {
			Role string `json:"role"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(capturedBody, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Model != "claude-test" || payload.MaxTokens != defaultMaxTokens {
		t.Fatalf("unexpected payload: %s", capturedBody)
	}
	if len(payload.System) != 1 || payload.System[0].Text != "classify" {
		t.Fatalf("unexpected system prompt: %s", capturedBody)
	}
	if len(payload.Messages) != 1 || payload.Messages[0].Role != "user" {
		t.Fatalf("unexpected messages: %s", capturedBody)
	}
}

func TestProviderDoesNotRetry(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"boom"}}`))
	}))
	defer server.Close()

	provider := New(&appconfig.Config{TimeoutSeconds: 5}, option.WithBaseURL(server.URL), option.WithAPIKey("test-key"))
	if _, _, err := providers.Complete(context.Background(), provider, "claude-test", "", "hi", appconfig.Parameters{}); err == nil {
		t.Fatal("expected error")
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected exactly one request, got %d", got)
	}
}

func TestBuildParamsOverrides(t *testing.T) {
	t.Parallel()

	maxTokens := 64
	temp := 0.3
	params := buildParams(providers.StreamRequest{
		Model:      "claude-test",
		JSONMode:   true,
		Parameters: appconfig.Parameters{MaxTokens: &maxTokens, Temperature: &temp},
		History: []providers.ChatMessage{
			{Role: providers.RoleUser, Content: "q"},
			{Role: providers.RoleAssistant, Content: "a"},
		},
	})
	if params.MaxTokens != 64 {
		t.Fatalf("expected max tokens 64, got %d", params.MaxTokens)
	}
	if len(params.System) != 1 {
		t.Fatalf("expected JSON instruction as system prompt, got %+v", params.System)
	}
	if len(params.Messages) != 2 || params.Messages[1].Role != "assistant" {
		t.Fatalf("unexpected messages: %+v", params.Messages)
	}
}
