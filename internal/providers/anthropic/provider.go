// internal/providers/anthropic/provider.go
// Package anthropic provides a ChatProvider backed by the Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/anastev982/llm-eval-framework/internal/appconfig"
	"github.com/anastev982/llm-eval-framework/internal/logging"
	"github.com/anastev982/llm-eval-framework/internal/providers"
)

// Name identifies this provider in logs and metadata.
const Name = "anthropic"

// defaultMaxTokens is sent when the configuration leaves maxTokens unset; the API requires it.
const defaultMaxTokens = 1024

// Provider implements the providers.ChatProvider interface using the Anthropic SDK.
// Responses are always requested in one piece; StreamRequest.DisableStreaming is not consulted.
type Provider struct {
	client  sdk.Client
	timeout time.Duration
}

// New constructs a Provider. The API key is read from ANTHROPIC_API_KEY unless
// opts override it. SDK retries are disabled: a failed call is reported as-is.
func New(cfg *appconfig.Config, opts ...option.RequestOption) *Provider {
	timeout := cfg.RequestTimeout()
	base := []option.RequestOption{
		option.WithMaxRetries(0),
		option.WithRequestTimeout(timeout),
	}
	return &Provider{
		client:  sdk.NewClient(append(base, opts...)...),
		timeout: timeout,
	}
}

// Stream issues a Messages request and forwards the text blocks to the provided callbacks.
func (p *Provider) Stream(ctx context.Context, req providers.StreamRequest, callbacks providers.StreamCallbacks) error {
	params := buildParams(req)
	logging.LogRequest("LLMEVAL->LLM", Name, req.Model, params)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	message, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return fmt.Errorf("anthropic: messages request failed: %w", err)
	}
	logging.LogRequest("LLM->LLMEVAL", Name, req.Model, message.RawJSON())

	var text strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 && len(message.Content) > 0 {
		return errors.New("anthropic: no text content in response")
	}

	if callbacks.OnChunk != nil && text.Len() > 0 {
		if err := callbacks.OnChunk(providers.ChatMessage{Role: providers.RoleAssistant, Content: text.String()}); err != nil {
			return err
		}
	}
	if callbacks.OnComplete != nil {
		model := string(message.Model)
		if model == "" {
			model = req.Model
		}
		return callbacks.OnComplete(providers.StreamMetadata{
			Provider:         Name,
			Model:            model,
			CreatedAt:        time.Now(),
			Done:             true,
			PromptTokens:     int(message.Usage.InputTokens),
			CompletionTokens: int(message.Usage.OutputTokens),
		})
	}
	return nil
}

// Close releases any resources held by the provider.
func (p *Provider) Close() error {
	return nil
}

func buildParams(req providers.StreamRequest) sdk.MessageNewParams {
	maxTokens := int64(defaultMaxTokens)
	if mt := req.Parameters.MaxTokens; mt != nil && *mt > 0 {
		maxTokens = int64(*mt)
	}

	messages := make([]sdk.MessageParam, 0, len(req.History))
	for _, msg := range req.History {
		block := sdk.NewTextBlock(msg.Content)
		if msg.Role == providers.RoleAssistant {
			messages = append(messages, sdk.NewAssistantMessage(block))
			continue
		}
		messages = append(messages, sdk.NewUserMessage(block))
	}

	params := sdk.MessageNewParams{
		Model:     sdk.Model(req.Model),
		MaxTokens: maxTokens,
		Messages:  messages,
	}
	system := req.SystemPrompt
	if req.JSONMode {
		system = strings.TrimSpace(system + "\nRespond with a single JSON object and nothing else.")
	}
	if system != "" {
		params.System = []sdk.TextBlockParam{{Text: system}}
	}
	if t := req.Parameters.Temperature; t != nil {
		params.Temperature = sdk.Float(*t)
	}
	if tp := req.Parameters.TopP; tp != nil {
		params.TopP = sdk.Float(*tp)
	}
	return params
}
