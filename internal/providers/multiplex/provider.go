// internal/providers/multiplex/provider.go
// Package multiplex routes provider calls based on the model identifier.
package multiplex

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anastev982/llm-eval-framework/internal/providers"
)

// Provider types.
const (
	TypeOpenAI    = "openai"
	TypeAnthropic = "anthropic"
	TypeGemini    = "gemini"
)

// ErrNoProvider is returned when a model routes to a provider type that is not registered.
var ErrNoProvider = errors.New("no provider registered")

// Provider delegates calls to an underlying provider based on the model identifier.
//
// A model may name its provider explicitly ("anthropic:claude-3-5-haiku-latest").
// Without a prefix, "claude*" models go to anthropic, "gemini*" models go to
// gemini and everything else goes to the default provider type.
type Provider struct {
	providers   map[string]providers.ChatProvider
	defaultType string
}

// New constructs a Provider from a map of provider type to provider implementation.
func New(providerMap map[string]providers.ChatProvider, defaultType string) *Provider {
	normalized := make(map[string]providers.ChatProvider, len(providerMap))
	for key, provider := range providerMap {
		normalized[NormalizeType(key)] = provider
	}
	return &Provider{providers: normalized, defaultType: NormalizeType(defaultType)}
}

// Stream forwards the request to the provider selected for req.Model, with any
// provider prefix stripped from the model name.
func (p *Provider) Stream(ctx context.Context, req providers.StreamRequest, callbacks providers.StreamCallbacks) error {
	providerType, model := Route(req.Model, p.defaultType)
	provider, ok := p.providers[providerType]
	if !ok {
		return fmt.Errorf("%w for provider type %q (model %q)", ErrNoProvider, providerType, req.Model)
	}
	req.Model = model
	return provider.Stream(ctx, req, callbacks)
}

// Close cleans up any resources used by the provider.
func (p *Provider) Close() error {
	var firstErr error
	seen := map[providers.ChatProvider]struct{}{}
	for _, provider := range p.providers {
		if _, ok := seen[provider]; ok {
			continue
		}
		seen[provider] = struct{}{}
		if err := provider.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Route resolves the provider type and bare model name for a model identifier.
func Route(model, defaultType string) (string, string) {
	trimmed := strings.TrimSpace(model)
	if prefix, rest, ok := strings.Cut(trimmed, ":"); ok && rest != "" {
		if t := NormalizeType(prefix); IsKnownType(t) {
			return t, rest
		}
	}
	lower := strings.ToLower(trimmed)
	switch {
	case strings.HasPrefix(lower, "claude"):
		return TypeAnthropic, trimmed
	case strings.HasPrefix(lower, "gemini"):
		return TypeGemini, trimmed
	}
	return NormalizeType(defaultType), trimmed
}

// NormalizeType maps provider aliases onto the canonical provider types.
func NormalizeType(providerType string) string {
	normalized := strings.ToLower(strings.TrimSpace(providerType))
	switch normalized {
	case "", "openai", "openai-compatible", "llama.cpp", "llamacpp", "ollama", "vllm":
		return TypeOpenAI
	case "anthropic", "claude":
		return TypeAnthropic
	case "gemini", "google":
		return TypeGemini
	default:
		return normalized
	}
}

// IsKnownType reports whether providerType (already normalized) is supported.
func IsKnownType(providerType string) bool {
	switch providerType {
	case TypeOpenAI, TypeAnthropic, TypeGemini:
		return true
	}
	return false
}
