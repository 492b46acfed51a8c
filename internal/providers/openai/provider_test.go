// internal/providers/openai/provider_test.go
package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anastev982/llm-eval-framework/internal/appconfig"
	"github.com/anastev982/llm-eval-framework/internal/providers"
)

func TestProviderStreamDisableStreaming(t *testing.T) {
	t.Parallel()

	var capturedBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		capturedBody = body
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","model":"test-model","choices":[{"index":0,"message":{"role":"assistant","content":"sports"},"finish_reason":"stop"}],"usage":{"prompt_tokens":12,"completion_tokens":1,"total_tokens":13}}`))
	}))
	defer server.Close()

	temp := 0.0
	maxTokens := 16
	provider := New(&appconfig.Config{TimeoutSeconds: 5, BaseURL: server.URL + "/v1/"})

	req := providers.StreamRequest{
		Model:            "test-model",
		SystemPrompt:     "classify",
		History:          []providers.ChatMessage{{Role: providers.RoleUser, Content: "Text: goal!\nLabel:"}},
		Parameters:       appconfig.Parameters{Temperature: &temp, MaxTokens: &maxTokens},
		DisableStreaming: true,
	}

	var chunks []providers.ChatMessage
	var meta providers.StreamMetadata
	err := provider.Stream(context.Background(), req, providers.StreamCallbacks{
		OnChunk: func(msg providers.ChatMessage) error {
			chunks = append(chunks, msg)
			return nil
		},
		OnComplete: func(m providers.StreamMetadata) error {
			meta = m
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Stream returned error: %v", err)
	}

	if len(chunks) != 1 || chunks[0].Content != "sports" {
		t.Fatalf("unexpected chunks: %+v", chunks)
	}
	if meta.Model != "test-model" || !meta.Done || meta.Provider != Name {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
	if meta.PromptTokens != 12 || meta.CompletionTokens != 1 {
		t.Fatalf("unexpected usage: %+v", meta)
	}

	var payload struct {
		Model    string `json:"model"`
		Stream   bool   `json:"stream"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		MaxTokens int `json:"max_tokens"`
	}
	if err := json.Unmarshal(capturedBody, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Stream {
		t.Fatal("expected stream=false")
	}
	if len(payload.Messages) != 2 || payload.Messages[0].Role != "system" || payload.Messages[1].Role != "user" {
		t.Fatalf("unexpected messages: %+v", payload.Messages)
	}
	if payload.MaxTokens != 16 {
		t.Fatalf("expected max_tokens=16, got %d", payload.MaxTokens)
	}
}

func TestProviderStreamSSE(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		events := []string{
			`{"id":"c1","object":"chat.completion.chunk","model":"test-model","choices":[{"index":0,"delta":{"role":"assistant","content":"3 "}}]}`,
			`{"id":"c1","object":"chat.completion.chunk","model":"test-model","choices":[{"index":0,"delta":{"content":"years"}}]}`,
		}
		for _, e := range events {
			_, _ = io.WriteString(w, "data: "+e+"\n\n")
		}
		_, _ = io.WriteString(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	provider := New(&appconfig.Config{TimeoutSeconds: 5, BaseURL: server.URL + "/v1"})
	var out strings.Builder
	err := provider.Stream(context.Background(), providers.StreamRequest{
		Model:   "test-model",
		History: []providers.ChatMessage{{Role: providers.RoleUser, Content: "how long?"}},
	}, providers.StreamCallbacks{
		OnChunk: func(msg providers.ChatMessage) error {
			out.WriteString(msg.Content)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Stream returned error: %v", err)
	}
	if out.String() != "3 years" {
		t.Fatalf("unexpected streamed text %q", out.String())
	}
}

func TestProviderStreamHTTPError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	provider := New(&appconfig.Config{TimeoutSeconds: 5, BaseURL: server.URL + "/v1"})
	_, _, err := providers.Complete(context.Background(), provider, "m", "", "hi", appconfig.Parameters{})
	if err == nil {
		t.Fatal("expected error from 401 response")
	}
	if !strings.Contains(err.Error(), "openai:") {
		t.Fatalf("expected wrapped openai error, got %v", err)
	}
}

func TestBuildRequestJSONMode(t *testing.T) {
	t.Parallel()

	req := buildRequest(providers.StreamRequest{Model: "m", JSONMode: true})
	if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_object" {
		t.Fatalf("expected json_object response format, got %+v", req.ResponseFormat)
	}
	if len(req.Messages) != 0 {
		t.Fatalf("expected no messages without system prompt or history, got %+v", req.Messages)
	}
}
