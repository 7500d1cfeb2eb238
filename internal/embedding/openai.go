package embedding

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/cohabitat/assistant-core/internal/config"
)

const (
	OpenAIProviderName   = "openai"
	OpenAIDefaultBaseURL = "https://api.openai.com/v1"
	OpenAIDefaultModel   = "text-embedding-3-small"
	openAIHTTPTimeout    = 30 * time.Second
)

type openAIProvider struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	modelName  string
	dimensions int
}

type openAIEmbedRequest struct {
	Input          []string `json:"input"`
	Model          string   `json:"model"`
	EncodingFormat string   `json:"encoding_format"`
	Dimensions     int      `json:"dimensions,omitempty"`
}

type openAIEmbedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Model string `json:"model"`
}

func init() {
	RegisterProvider(ProviderMetadata{
		Name:        OpenAIProviderName,
		Description: "OpenAI-compatible embedding via REST API (supports LiteLLM proxy)",
	}, newOpenAIProvider)
}

func newOpenAIProvider(cfg *config.Config) (Provider, error) {
	if cfg.EmbeddingAPIKey == "" {
		return nil, fmt.Errorf("EMBEDDING_API_KEY is required for openai provider")
	}

	baseURL := cfg.EmbeddingBaseURL
	if baseURL == "" {
		baseURL = OpenAIDefaultBaseURL
	}
	modelName := cfg.EmbeddingModel
	if modelName == "" {
		modelName = OpenAIDefaultModel
	}
	dimensions := cfg.EmbeddingDimensions
	if dimensions <= 0 {
		dimensions = config.DefaultEmbeddingDimensions
	}

	return &openAIProvider{
		client:     &http.Client{Timeout: openAIHTTPTimeout},
		baseURL:    baseURL,
		apiKey:     cfg.EmbeddingAPIKey,
		modelName:  modelName,
		dimensions: dimensions,
	}, nil
}

func (p *openAIProvider) Name() string    { return OpenAIProviderName }
func (p *openAIProvider) Dimensions() int { return p.dimensions }
func (p *openAIProvider) Close() error    { return nil }

func (p *openAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	reqBody := openAIEmbedRequest{
		Input:          texts,
		Model:          p.modelName,
		EncodingFormat: "float",
		Dimensions:     p.dimensions,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("send request to %s: %w", p.baseURL, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodySnippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &ProviderError{
			Provider: p.Name(),
			Err: fmt.Errorf("API error (model=%s, status=%d): %s",
				p.modelName, resp.StatusCode, strings.TrimSpace(string(bodySnippet))),
		}
	}

	var embedResp openAIEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("decode response from %s: %w", p.baseURL, err)}
	}

	if len(embedResp.Data) != len(texts) {
		return nil, &ProviderError{
			Provider: p.Name(),
			Err: fmt.Errorf("API returned %d results for %d inputs (model=%s)",
				len(embedResp.Data), len(texts), p.modelName),
		}
	}

	// Sort by index to preserve input order
	sort.Slice(embedResp.Data, func(i, j int) bool {
		return embedResp.Data[i].Index < embedResp.Data[j].Index
	})

	results := make([][]float32, len(embedResp.Data))
	for i, d := range embedResp.Data {
		results[i] = d.Embedding
	}
	return results, nil
}
