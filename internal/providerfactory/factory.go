// internal/providerfactory/factory.go
package providerfactory

import (
	"context"
	"fmt"

	"github.com/anastev982/llm-eval-framework/internal/appconfig"
	"github.com/anastev982/llm-eval-framework/internal/logging"
	"github.com/anastev982/llm-eval-framework/internal/metrics"
	"github.com/anastev982/llm-eval-framework/internal/providers"
	"github.com/anastev982/llm-eval-framework/internal/providers/anthropic"
	"github.com/anastev982/llm-eval-framework/internal/providers/gemini"
	"github.com/anastev982/llm-eval-framework/internal/providers/multiplex"
	"github.com/anastev982/llm-eval-framework/internal/providers/openai"
	"github.com/anastev982/llm-eval-framework/internal/providers/ratelimit"
)

// NewChatProvider assembles the chat provider used by an evaluation run. Calls are
// routed by model identifier to OpenAI-compatible, Anthropic or Gemini backends,
// recorded in aggregator when one is given, and paced by cfg.RequestsPerSecond.
func NewChatProvider(cfg *appconfig.Config, aggregator *metrics.Aggregator) (providers.ChatProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config provided to provider factory")
	}

	defaultType := multiplex.NormalizeType(cfg.Provider)
	if !multiplex.IsKnownType(defaultType) {
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}

	providerMap := map[string]providers.ChatProvider{
		multiplex.TypeOpenAI:    openai.New(cfg),
		multiplex.TypeAnthropic: anthropic.New(cfg),
	}

	if gemini.APIKey() != "" {
		geminiProvider, err := gemini.New(context.Background(), cfg)
		if err != nil {
			logging.LogEvent("Gemini provider unavailable: %v", err)
		} else {
			providerMap[multiplex.TypeGemini] = geminiProvider
		}
	} else if defaultType == multiplex.TypeGemini {
		return nil, gemini.ErrNoAPIKey
	}

	var provider providers.ChatProvider = multiplex.New(providerMap, defaultType)

	if aggregator != nil {
		provider = metrics.NewProvider(provider, aggregator)
	}

	provider = ratelimit.New(provider, cfg.RequestsPerSecond)
	logging.LogEvent("Chat provider ready: default=%s rps=%v", defaultType, cfg.RequestsPerSecond)

	return provider, nil
}
