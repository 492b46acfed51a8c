// internal/metrics/provider.go
package metrics

import (
	"context"
	"time"

	"github.com/anastev982/llm-eval-framework/internal/providers"
)

// Provider is a decorator that wraps a ChatProvider to record call metrics.
type Provider struct {
	wrapped    providers.ChatProvider
	aggregator *Aggregator
	now        func() time.Time
}

// NewProvider creates a new metrics-enabled provider that wraps an existing ChatProvider.
func NewProvider(wrapped providers.ChatProvider, aggregator *Aggregator) *Provider {
	return &Provider{wrapped: wrapped, aggregator: aggregator, now: time.Now}
}

// Stream times the call to the wrapped provider and records it, successful or not.
func (p *Provider) Stream(ctx context.Context, req providers.StreamRequest, callbacks providers.StreamCallbacks) error {
	start := p.now()
	var meta providers.StreamMetadata

	onComplete := func(m providers.StreamMetadata) error {
		meta = m
		if callbacks.OnComplete != nil {
			return callbacks.OnComplete(m)
		}
		return nil
	}

	err := p.wrapped.Stream(ctx, req, providers.StreamCallbacks{
		OnChunk:    callbacks.OnChunk,
		OnComplete: onComplete,
	})
	if p.aggregator != nil {
		p.aggregator.Record(req.Model, p.now().Sub(start), meta.PromptTokens, meta.CompletionTokens, err)
	}
	return err
}

// Close passes the call through to the wrapped provider.
func (p *Provider) Close() error {
	return p.wrapped.Close()
}
