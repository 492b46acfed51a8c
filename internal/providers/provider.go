// internal/providers/provider.go

// Package providers defines the interface for calling language models.
// Evaluators receive one explicit ChatProvider and never reach for global client state;
// concrete implementations (OpenAI-compatible, Anthropic, Gemini) live in subpackages
// and are assembled by the providerfactory package.
package providers

import (
	"context"
	"strings"
	"time"

	"github.com/anastev982/llm-eval-framework/internal/appconfig"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in a chat conversation.
type ChatMessage struct {
	Role    string
	Content string
}

// StreamMetadata describes a completed model call.
type StreamMetadata struct {
	Provider         string
	Model            string
	CreatedAt        time.Time
	Done             bool
	PromptTokens     int
	CompletionTokens int
}

// StreamRequest encapsulates all the information needed to call a model.
type StreamRequest struct {
	Model            string
	SystemPrompt     string
	History          []ChatMessage
	Parameters       appconfig.Parameters
	JSONMode         bool
	DisableStreaming bool
}

// StreamCallbacks defines the callback functions that are invoked during a call.
// OnChunk is called for each piece of text received, and OnComplete once the call finished.
type StreamCallbacks struct {
	OnChunk    func(ChatMessage) error
	OnComplete func(StreamMetadata) error
}

// ChatProvider is the interface that all model providers must implement.
type ChatProvider interface {
	// Stream sends the request and forwards the response to callbacks.
	Stream(ctx context.Context, req StreamRequest, callbacks StreamCallbacks) error
	// Close cleans up any resources used by the provider.
	Close() error
}

// Complete sends one system/user prompt pair without streaming and returns the
// concatenated response text.
func Complete(ctx context.Context, provider ChatProvider, model, systemPrompt, userPrompt string, params appconfig.Parameters) (string, StreamMetadata, error) {
	var output strings.Builder
	var meta StreamMetadata

	req := StreamRequest{
		Model:        model,
		SystemPrompt: systemPrompt,
		Parameters:   params,
		History: []ChatMessage{{
			Role:    RoleUser,
			Content: userPrompt,
		}},
		DisableStreaming: true,
	}

	callbacks := StreamCallbacks{
		OnChunk: func(chunk ChatMessage) error {
			output.WriteString(chunk.Content)
			return nil
		},
		OnComplete: func(m StreamMetadata) error {
			meta = m
			return nil
		},
	}

	if err := provider.Stream(ctx, req, callbacks); err != nil {
		return "", meta, err
	}
	return output.String(), meta, nil
}
