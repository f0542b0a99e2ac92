package embedder

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/verdara/siteops/pkg/types"
)

const (
	// DefaultBatchSize is how many chunk texts the orchestrator sends per
	// gateway call.
	DefaultBatchSize = 16

	// DefaultMaxAttempts is the per-provider attempt budget for a batch.
	DefaultMaxAttempts = 6
)

// Provider is a single remote embedding backend.
type Provider interface {
	// Name identifies the provider in logs and errors.
	Name() string

	// DefaultModel is the model used when no override is configured.
	DefaultModel() string

	// Embed returns one vector per input text, positionally aligned.
	// Transient failures are reported wrapping types.ErrProviderTransient;
	// everything else wraps types.ErrProviderFatal.
	Embed(ctx context.Context, model string, texts []string) ([][]float32, error)
}

// RetryConfig tunes the per-provider retry loop.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Jitter      time.Duration
}

// DefaultRetryConfig returns the production retry policy.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   time.Second,
		MaxDelay:    20 * time.Second,
		Jitter:      250 * time.Millisecond,
	}
}

// Gateway fans a batch of texts out to the first provider that can serve
// it, applying retry with backoff per provider and failing over in order.
type Gateway struct {
	providers []Provider
	model     string // explicit override; empty means per-provider default
	retry     RetryConfig
}

// NewGateway creates a gateway over an ordered provider list. An empty
// list fails with types.ErrNoProviderConfigured.
func NewGateway(providers []Provider, model string, retry RetryConfig) (*Gateway, error) {
	if len(providers) == 0 {
		return nil, types.ErrNoProviderConfigured
	}
	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = DefaultMaxAttempts
	}
	return &Gateway{providers: providers, model: model, retry: retry}, nil
}

// Model returns the model name recorded in index metadata: the explicit
// override when set, otherwise the primary provider's default.
func (g *Gateway) Model() string {
	if g.model != "" {
		return g.model
	}
	return g.providers[0].DefaultModel()
}

// EmbedBatch embeds texts, preserving order. Transient provider failures
// are retried with exponential backoff; a provider that exhausts its
// attempts is replaced by the next configured one. A non-transient
// failure aborts immediately without failover.
//
// The model override applies to the primary provider only. Model names
// are provider-specific, so a fallback provider is always called with
// its own default model.
func (g *Gateway) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var lastErr error
	for i, p := range g.providers {
		model := p.DefaultModel()
		if i == 0 && g.model != "" {
			model = g.model
		}

		vectors, err := g.embedWithRetry(ctx, p, model, texts)
		if err == nil {
			if len(vectors) != len(texts) {
				return nil, fmt.Errorf("%w: %s returned %d vectors for %d texts",
					types.ErrProviderFatal, p.Name(), len(vectors), len(texts))
			}
			return vectors, nil
		}
		if !errors.Is(err, types.ErrProviderTransient) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// embedWithRetry runs the per-provider attempt loop.
func (g *Gateway) embedWithRetry(ctx context.Context, p Provider, model string, texts []string) ([][]float32, error) {
	backoff := g.retry.BaseDelay
	var lastErr error

	for attempt := 1; attempt <= g.retry.MaxAttempts; attempt++ {
		vectors, err := p.Embed(ctx, model, texts)
		if err == nil {
			return vectors, nil
		}
		if !errors.Is(err, types.ErrProviderTransient) {
			return nil, err
		}
		lastErr = err

		if attempt == g.retry.MaxAttempts {
			break
		}

		delay := backoff
		if g.retry.Jitter > 0 {
			delay += time.Duration(rand.Int63n(int64(g.retry.Jitter)))
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		backoff *= 2
		if g.retry.MaxDelay > 0 && backoff > g.retry.MaxDelay {
			backoff = g.retry.MaxDelay
		}
	}

	return nil, fmt.Errorf("%s exhausted %d attempts: %w", p.Name(), g.retry.MaxAttempts, lastErr)
}
