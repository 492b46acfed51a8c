// internal/providers/gemini/provider.go
// Package gemini provides a ChatProvider backed by the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/anastev982/llm-eval-framework/internal/appconfig"
	"github.com/anastev982/llm-eval-framework/internal/logging"
	"github.com/anastev982/llm-eval-framework/internal/providers"
)

// Name identifies this provider in logs and metadata.
const Name = "gemini"

// ErrNoAPIKey is returned by New when neither GEMINI_API_KEY nor GOOGLE_API_KEY is set.
var ErrNoAPIKey = errors.New("gemini: GEMINI_API_KEY or GOOGLE_API_KEY must be set")

// Provider implements the providers.ChatProvider interface using google.golang.org/genai.
type Provider struct {
	client  *genai.Client
	timeout time.Duration
}

// APIKey returns the Gemini API key from the environment, or "".
func APIKey() string {
	for _, name := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return ""
}

// New constructs a Provider for the Gemini Developer API.
func New(ctx context.Context, cfg *appconfig.Config) (*Provider, error) {
	key := APIKey()
	if key == "" {
		return nil, ErrNoAPIKey
	}
	return NewWithConfig(ctx, cfg, &genai.ClientConfig{APIKey: key, Backend: genai.BackendGeminiAPI})
}

// NewWithConfig constructs a Provider from an explicit client configuration.
func NewWithConfig(ctx context.Context, cfg *appconfig.Config, clientCfg *genai.ClientConfig) (*Provider, error) {
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &Provider{client: client, timeout: cfg.RequestTimeout()}, nil
}

// Stream issues a GenerateContent request and forwards the response text to the provided callbacks.
// The response is always requested in one piece.
func (p *Provider) Stream(ctx context.Context, req providers.StreamRequest, callbacks providers.StreamCallbacks) error {
	contents := buildContents(req.History)
	genCfg := buildConfig(req)
	logging.LogRequest("LLMEVAL->LLM", Name, req.Model, contents)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.Models.GenerateContent(ctx, req.Model, contents, genCfg)
	if err != nil {
		return fmt.Errorf("gemini: generate content failed: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return errors.New("gemini: no candidates returned")
	}
	text := resp.Text()
	logging.LogRequest("LLM->LLMEVAL", Name, req.Model, text)

	if callbacks.OnChunk != nil && text != "" {
		if err := callbacks.OnChunk(providers.ChatMessage{Role: providers.RoleAssistant, Content: text}); err != nil {
			return err
		}
	}
	if callbacks.OnComplete != nil {
		meta := providers.StreamMetadata{
			Provider:  Name,
			Model:     req.Model,
			CreatedAt: time.Now(),
			Done:      true,
		}
		if resp.ModelVersion != "" {
			meta.Model = resp.ModelVersion
		}
		if usage := resp.UsageMetadata; usage != nil {
			meta.PromptTokens = int(usage.PromptTokenCount)
			meta.CompletionTokens = int(usage.CandidatesTokenCount)
		}
		return callbacks.OnComplete(meta)
	}
	return nil
}

// Close releases any resources held by the provider.
func (p *Provider) Close() error {
	return nil
}

func buildContents(history []providers.ChatMessage) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		role := genai.RoleUser
		if msg.Role == providers.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, genai.Role(role)))
	}
	return contents
}

func buildConfig(req providers.StreamRequest) *genai.GenerateContentConfig {
	genCfg := &genai.GenerateContentConfig{}
	if req.SystemPrompt != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}
	if t := req.Parameters.Temperature; t != nil {
		genCfg.Temperature = genai.Ptr(float32(*t))
	}
	if tp := req.Parameters.TopP; tp != nil {
		genCfg.TopP = genai.Ptr(float32(*tp))
	}
	if mt := req.Parameters.MaxTokens; mt != nil {
		genCfg.MaxOutputTokens = int32(*mt)
	}
	if req.JSONMode {
		genCfg.ResponseMIMEType = "application/json"
	}
	return genCfg
}
