// internal/providers/multiplex/provider_test.go
package multiplex

import (
	"context"
	"errors"
	"testing"

	"github.com/anastev982/llm-eval-framework/internal/providers"
)

type stubProvider struct {
	streamCalled bool
	gotModel     string
	closeCalled  int
}

func (s *stubProvider) Stream(ctx context.Context, req providers.StreamRequest, callbacks providers.StreamCallbacks) error {
	s.streamCalled = true
	s.gotModel = req.Model
	return nil
}

func (s *stubProvider) Close() error {
	s.closeCalled++
	return nil
}

func TestNormalizeType(t *testing.T) {
	tests := map[string]string{
		"":          TypeOpenAI,
		"llama.cpp": TypeOpenAI,
		" Ollama ":  TypeOpenAI,
		"CLAUDE":    TypeAnthropic,
		"google":    TypeGemini,
		"custom":    "custom",
	}

	for input, want := range tests {
		if got := NormalizeType(input); got != want {
			t.Fatalf("NormalizeType(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestRoute(t *testing.T) {
	tests := []struct {
		model     string
		wantType  string
		wantModel string
	}{
		{model: "gpt-4o-mini", wantType: TypeOpenAI, wantModel: "gpt-4o-mini"},
		{model: "claude-3-5-haiku-latest", wantType: TypeAnthropic, wantModel: "claude-3-5-haiku-latest"},
		{model: "gemini-2.5-flash", wantType: TypeGemini, wantModel: "gemini-2.5-flash"},
		{model: "anthropic:my-proxy-model", wantType: TypeAnthropic, wantModel: "my-proxy-model"},
		{model: "openai:claude-behind-gateway", wantType: TypeOpenAI, wantModel: "claude-behind-gateway"},
		{model: "llama3.1:8b", wantType: TypeOpenAI, wantModel: "llama3.1:8b"},
	}

	for _, tt := range tests {
		gotType, gotModel := Route(tt.model, "openai")
		if gotType != tt.wantType || gotModel != tt.wantModel {
			t.Fatalf("Route(%q) = (%q,%q), want (%q,%q)", tt.model, gotType, gotModel, tt.wantType, tt.wantModel)
		}
	}
}

func TestProviderRoutesAndStripsPrefix(t *testing.T) {
	openai := &stubProvider{}
	anthropic := &stubProvider{}
	p := New(map[string]providers.ChatProvider{"openai": openai, "claude": anthropic}, "")

	if err := p.Stream(context.Background(), providers.StreamRequest{Model: "anthropic:custom"}, providers.StreamCallbacks{}); err != nil {
		t.Fatalf("Stream returned error: %v", err)
	}
	if !anthropic.streamCalled || anthropic.gotModel != "custom" {
		t.Fatalf("expected anthropic provider with stripped model, got %+v", anthropic)
	}
	if openai.streamCalled {
		t.Fatal("openai provider should not be called")
	}
}

func TestProviderMissingType(t *testing.T) {
	p := New(map[string]providers.ChatProvider{"openai": &stubProvider{}}, "openai")

	err := p.Stream(context.Background(), providers.StreamRequest{Model: "gemini-2.5-flash"}, providers.StreamCallbacks{})
	if !errors.Is(err, ErrNoProvider) {
		t.Fatalf("expected ErrNoProvider, got %v", err)
	}
}

func TestCloseDeduplicatesProviders(t *testing.T) {
	shared := &stubProvider{}
	p := New(map[string]providers.ChatProvider{"openai": shared, "ollama-alias": shared}, "openai")

	if err := p.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if shared.closeCalled != 1 {
		t.Fatalf("expected shared provider to be closed once, got %d", shared.closeCalled)
	}
}
