package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/verdara/siteops/pkg/types"
)

const (
	ProviderOpenAI = "openai"
	ProviderJina   = "jina"

	DefaultOpenAIModel = "text-embedding-3-small"
	DefaultJinaModel   = "jina-embeddings-v3"

	jinaEndpoint = "https://api.jina.ai/v1/embeddings"

	// quotaCode is the error code both providers use for exhausted quota;
	// it arrives with a 4xx status but is retried like a rate limit.
	quotaCode = "insufficient_quota"
)

// OpenAIProvider embeds through the OpenAI embeddings API.
type OpenAIProvider struct {
	client *openai.Client
}

// NewOpenAIProvider creates the OpenAI provider. An empty key is allowed;
// calls will fail with an auth error at embed time.
func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	return &OpenAIProvider{client: openai.NewClient(apiKey)}
}

func (p *OpenAIProvider) Name() string         { return ProviderOpenAI }
func (p *OpenAIProvider) DefaultModel() string { return DefaultOpenAIModel }

func (p *OpenAIProvider) Embed(ctx context.Context, model string, texts []string) ([][]float32, error) {
	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Model: openai.EmbeddingModel(model),
		Input: texts,
	})
	if err != nil {
		return nil, classifyOpenAIError(err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: openai returned %d embeddings for %d inputs",
			types.ErrProviderFatal, len(resp.Data), len(texts))
	}

	// The API reports an index per datum; order by it rather than trusting
	// response order.
	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("%w: openai returned out-of-range index %d",
				types.ErrProviderFatal, d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}

// classifyOpenAIError maps API failures onto the transient/fatal taxonomy.
func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if transientStatus(apiErr.HTTPStatusCode) || codeString(apiErr.Code) == quotaCode {
			return fmt.Errorf("%w: openai: %v", types.ErrProviderTransient, err)
		}
		return fmt.Errorf("%w: openai: %v", types.ErrProviderFatal, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && transientStatus(reqErr.HTTPStatusCode) {
		return fmt.Errorf("%w: openai: %v", types.ErrProviderTransient, err)
	}

	return fmt.Errorf("%w: openai: %v", types.ErrProviderFatal, err)
}

func codeString(code any) string {
	s, _ := code.(string)
	return s
}

// JinaProvider embeds through the Jina AI embeddings API.
type JinaProvider struct {
	apiKey     string
	httpClient *http.Client
}

// NewJinaProvider creates the Jina provider. An empty key is allowed;
// calls will fail with an auth error at embed time.
func NewJinaProvider(apiKey string) *JinaProvider {
	return &JinaProvider{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (p *JinaProvider) Name() string         { return ProviderJina }
func (p *JinaProvider) DefaultModel() string { return DefaultJinaModel }

func (p *JinaProvider) Embed(ctx context.Context, model string, texts []string) ([][]float32, error) {
	body, err := json.Marshal(map[string]any{
		"model": model,
		"input": texts,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", types.ErrProviderFatal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, jinaEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", types.ErrProviderFatal, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: jina: %v", types.ErrProviderFatal, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		kind := types.ErrProviderFatal
		if transientStatus(resp.StatusCode) || bytes.Contains(bodyBytes, []byte(quotaCode)) {
			kind = types.ErrProviderTransient
		}
		return nil, fmt.Errorf("%w: jina api error %d: %s", kind, resp.StatusCode, bodyBytes)
	}

	var apiResp struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", types.ErrProviderFatal, err)
	}

	if len(apiResp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: jina returned %d embeddings for %d inputs",
			types.ErrProviderFatal, len(apiResp.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, d := range apiResp.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("%w: jina returned out-of-range index %d",
				types.ErrProviderFatal, d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}

// transientStatus reports whether an HTTP status warrants a retry.
func transientStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
