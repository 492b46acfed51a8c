// internal/providers/ratelimit/provider.go
// Package ratelimit paces model calls to a configured request rate.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/anastev982/llm-eval-framework/internal/providers"
)

// Provider waits on a token bucket before each call to the wrapped provider.
// Calls are never retried; a canceled wait returns the context error.
type Provider struct {
	wrapped providers.ChatProvider
	limiter *rate.Limiter
}

// New wraps provider with a limiter allowing requestsPerSecond calls. A
// non-positive rate returns provider unchanged.
func New(provider providers.ChatProvider, requestsPerSecond float64) providers.ChatProvider {
	if requestsPerSecond <= 0 {
		return provider
	}
	return &Provider{
		wrapped: provider,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// Stream blocks until the limiter admits the call, then delegates.
func (p *Provider) Stream(ctx context.Context, req providers.StreamRequest, callbacks providers.StreamCallbacks) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}
	return p.wrapped.Stream(ctx, req, callbacks)
}

// Close passes the call through to the wrapped provider.
func (p *Provider) Close() error {
	return p.wrapped.Close()
}
