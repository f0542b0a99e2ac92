package embedder

import (
	"fmt"
	"strings"

	"github.com/verdara/siteops/pkg/types"
)

// Config selects and orders providers from credentials.
type Config struct {
	Provider    string // explicit override: "openai" or "jina"; empty auto-detects
	Model       string // explicit model override; empty uses provider defaults
	OpenAIKey   string
	JinaKey     string
	MaxAttempts int
}

// New builds a Gateway from configuration.
//
// The primary provider is the explicit override when set, else OpenAI if
// its key is present, else Jina if its key is present. The other provider
// joins the failover list only when its credential is configured. With no
// override and no credentials the gateway cannot be built and
// types.ErrNoProviderConfigured is returned.
func New(cfg Config) (*Gateway, error) {
	retry := DefaultRetryConfig()
	if cfg.MaxAttempts > 0 {
		retry.MaxAttempts = cfg.MaxAttempts
	}

	var providers []Provider
	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI:
		providers = append(providers, NewOpenAIProvider(cfg.OpenAIKey))
		if cfg.JinaKey != "" {
			providers = append(providers, NewJinaProvider(cfg.JinaKey))
		}
	case ProviderJina:
		providers = append(providers, NewJinaProvider(cfg.JinaKey))
		if cfg.OpenAIKey != "" {
			providers = append(providers, NewOpenAIProvider(cfg.OpenAIKey))
		}
	case "":
		if cfg.OpenAIKey != "" {
			providers = append(providers, NewOpenAIProvider(cfg.OpenAIKey))
		}
		if cfg.JinaKey != "" {
			providers = append(providers, NewJinaProvider(cfg.JinaKey))
		}
		if len(providers) == 0 {
			return nil, types.ErrNoProviderConfigured
		}
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", types.ErrNoProviderConfigured, cfg.Provider)
	}

	return NewGateway(providers, cfg.Model, retry)
}
