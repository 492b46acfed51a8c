// internal/providers/openai/provider.go
// Package openai provides a ChatProvider backed by the OpenAI chat completions API.
// Any OpenAI-compatible server (llama.cpp, Ollama's /v1, vLLM) works through the base URL.
package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/anastev982/llm-eval-framework/internal/appconfig"
	"github.com/anastev982/llm-eval-framework/internal/logging"
	"github.com/anastev982/llm-eval-framework/internal/providers"
)

// Name identifies this provider in logs and metadata.
const Name = "openai"

// Provider implements the providers.ChatProvider interface using the OpenAI API.
type Provider struct {
	client  *goopenai.Client
	timeout time.Duration
}

// New constructs a Provider configured with the application's request timeout.
// The API key is read from OPENAI_API_KEY.
func New(cfg *appconfig.Config) *Provider {
	timeout := cfg.RequestTimeout()
	clientCfg := goopenai.DefaultConfig(os.Getenv("OPENAI_API_KEY"))
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.BaseURL = strings.TrimRight(base, "/")
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}
	return &Provider{
		client:  goopenai.NewClientWithConfig(clientCfg),
		timeout: timeout,
	}
}

// Stream issues a chat completion request and forwards output to the provided callbacks.
func (p *Provider) Stream(ctx context.Context, req providers.StreamRequest, callbacks providers.StreamCallbacks) error {
	chatReq := buildRequest(req)
	logging.LogRequest("LLMEVAL->LLM", Name, req.Model, chatReq)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if req.DisableStreaming {
		return p.complete(ctx, chatReq, callbacks)
	}
	return p.stream(ctx, chatReq, callbacks)
}

func (p *Provider) complete(ctx context.Context, chatReq goopenai.ChatCompletionRequest, callbacks providers.StreamCallbacks) error {
	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return fmt.Errorf("openai: chat completion failed: %w", err)
	}
	logging.LogRequest("LLM->LLMEVAL", Name, chatReq.Model, resp)
	if len(resp.Choices) == 0 {
		return errors.New("openai: chat response contained no choices")
	}

	content := resp.Choices[0].Message.Content
	if callbacks.OnChunk != nil && content != "" {
		if err := callbacks.OnChunk(providers.ChatMessage{Role: providers.RoleAssistant, Content: content}); err != nil {
			return err
		}
	}
	if callbacks.OnComplete != nil {
		return callbacks.OnComplete(providers.StreamMetadata{
			Provider:         Name,
			Model:            firstNonEmpty(resp.Model, chatReq.Model),
			CreatedAt:        time.Now(),
			Done:             true,
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
		})
	}
	return nil
}

func (p *Provider) stream(ctx context.Context, chatReq goopenai.ChatCompletionRequest, callbacks providers.StreamCallbacks) error {
	stream, err := p.client.CreateChatCompletionStream(ctx, chatReq)
	if err != nil {
		return fmt.Errorf("openai: chat stream failed: %w", err)
	}
	defer stream.Close()

	finalModel := ""
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("openai: chat stream failed: %w", err)
		}
		if chunk.Model != "" {
			finalModel = chunk.Model
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		content := chunk.Choices[0].Delta.Content
		if callbacks.OnChunk != nil && content != "" {
			if err := callbacks.OnChunk(providers.ChatMessage{Role: providers.RoleAssistant, Content: content}); err != nil {
				return err
			}
		}
	}

	if callbacks.OnComplete != nil {
		return callbacks.OnComplete(providers.StreamMetadata{
			Provider:  Name,
			Model:     firstNonEmpty(finalModel, chatReq.Model),
			CreatedAt: time.Now(),
			Done:      true,
		})
	}
	return nil
}

// Close releases any resources held by the provider.
func (p *Provider) Close() error {
	return nil
}

func buildRequest(req providers.StreamRequest) goopenai.ChatCompletionRequest {
	messages := make([]goopenai.ChatCompletionMessage, 0, len(req.History)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleSystem, Content: req.SystemPrompt})
	}
	for _, msg := range req.History {
		role := goopenai.ChatMessageRoleUser
		if msg.Role == providers.RoleAssistant {
			role = goopenai.ChatMessageRoleAssistant
		}
		messages = append(messages, goopenai.ChatCompletionMessage{Role: role, Content: msg.Content})
	}

	chatReq := goopenai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: messages,
	}
	if t := req.Parameters.Temperature; t != nil {
		chatReq.Temperature = float32(*t)
	}
	if tp := req.Parameters.TopP; tp != nil {
		chatReq.TopP = float32(*tp)
	}
	if mt := req.Parameters.MaxTokens; mt != nil {
		chatReq.MaxTokens = *mt
	}
	if req.JSONMode {
		chatReq.ResponseFormat = &goopenai.ChatCompletionResponseFormat{Type: goopenai.ChatCompletionResponseFormatTypeJSONObject}
	}
	return chatReq
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
