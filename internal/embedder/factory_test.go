package embedder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdara/siteops/pkg/types"
)

func TestNewProviderSelection(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantErr   error
		wantOrder []string
		wantModel string
	}{
		{
			name:      "openai key only",
			cfg:       Config{OpenAIKey: "sk-test"},
			wantOrder: []string{ProviderOpenAI},
			wantModel: DefaultOpenAIModel,
		},
		{
			name:      "jina key only",
			cfg:       Config{JinaKey: "jina-test"},
			wantOrder: []string{ProviderJina},
			wantModel: DefaultJinaModel,
		},
		{
			name:      "both keys prefer openai",
			cfg:       Config{OpenAIKey: "sk-test", JinaKey: "jina-test"},
			wantOrder: []string{ProviderOpenAI, ProviderJina},
			wantModel: DefaultOpenAIModel,
		},
		{
			name:      "explicit jina override reorders",
			cfg:       Config{Provider: "jina", OpenAIKey: "sk-test", JinaKey: "jina-test"},
			wantOrder: []string{ProviderJina, ProviderOpenAI},
			wantModel: DefaultJinaModel,
		},
		{
			name:      "override without credential still selected",
			cfg:       Config{Provider: "openai"},
			wantOrder: []string{ProviderOpenAI},
			wantModel: DefaultOpenAIModel,
		},
		{
			name:      "model override wins",
			cfg:       Config{OpenAIKey: "sk-test", Model: "text-embedding-3-large"},
			wantOrder: []string{ProviderOpenAI},
			wantModel: "text-embedding-3-large",
		},
		{
			name:    "no credentials",
			cfg:     Config{},
			wantErr: types.ErrNoProviderConfigured,
		},
		{
			name:    "unknown provider",
			cfg:     Config{Provider: "acme", OpenAIKey: "sk-test"},
			wantErr: types.ErrNoProviderConfigured,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(tt.cfg)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			names := make([]string, len(g.providers))
			for i, p := range g.providers {
				names[i] = p.Name()
			}
			assert.Equal(t, tt.wantOrder, names)
			assert.Equal(t, tt.wantModel, g.Model())
		})
	}
}

func TestNewMaxAttempts(t *testing.T) {
	g, err := New(Config{OpenAIKey: "sk-test", MaxAttempts: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, g.retry.MaxAttempts)

	g, err = New(Config{OpenAIKey: "sk-test"})
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxAttempts, g.retry.MaxAttempts)
}

func TestTransientStatus(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{status: 200, want: false},
		{status: 400, want: false},
		{status: 401, want: false},
		{status: 404, want: false},
		{status: 429, want: true},
		{status: 500, want: true},
		{status: 502, want: true},
		{status: 503, want: true},
	}
	for _, tt := range tests {
		if got := transientStatus(tt.status); got != tt.want {
			t.Errorf("transientStatus(%d) = %v, want %v", tt.status, got, tt.want)
		}
	}
}
