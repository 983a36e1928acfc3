package embedding

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
	"golang.org/x/time/rate"

	"foodrec/internal/domain"
)

// ErrNoEmbeddingInResponse is returned when the API answers with fewer
// vectors than texts sent.
var ErrNoEmbeddingInResponse = errors.New("embedding: missing vectors in response")

// OpenAIEmbedder calls an OpenAI-compatible /embeddings endpoint. Ollama,
// Jina and self-hosted servers are reached through the base URL.
type OpenAIEmbedder struct {
	sdk            openaisdk.Client
	model          string
	dimension      int
	sendDimensions bool
	batchSize      int
	limiter        *rate.Limiter
}

// OpenAIOptions configures an OpenAIEmbedder.
type OpenAIOptions struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimension  int
	BatchSize  int
	RateLimit  float64 // requests per second, 0 = unlimited
	MaxRetries int
}

// Dimensions of models that cannot be shortened through the dimensions parameter.
var fixedDimensions = map[string]int{
	"text-embedding-ada-002": 1536,
	"nomic-embed-text":       768,
	"mxbai-embed-large":      1024,
	"all-minilm":             384,
}

func NewOpenAIEmbedder(apiKeyEnv, model string, dimension, batchSize int, rps float64) (*OpenAIEmbedder, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key not found in environment variable: %s", domain.ErrModelUnavailable, apiKeyEnv)
	}
	return NewOpenAICompatibleEmbedder(OpenAIOptions{
		APIKey:     apiKey,
		BaseURL:    "https://api.openai.com/v1/",
		Model:      model,
		Dimension:  dimension,
		BatchSize:  batchSize,
		RateLimit:  rps,
		MaxRetries: 2,
	})
}

func NewJinaEmbedder(apiKeyEnv, model string, dimension, batchSize int, rps float64) (*OpenAIEmbedder, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key not found in environment variable: %s", domain.ErrModelUnavailable, apiKeyEnv)
	}
	return NewOpenAICompatibleEmbedder(OpenAIOptions{
		APIKey:     apiKey,
		BaseURL:    "https://api.jina.ai/v1/",
		Model:      model,
		Dimension:  dimension,
		BatchSize:  batchSize,
		RateLimit:  rps,
		MaxRetries: 2,
	})
}

func NewOllamaEmbedder(model, baseURL string, dimension, batchSize int) (*OpenAIEmbedder, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434/v1/"
	}
	return NewOpenAICompatibleEmbedder(OpenAIOptions{
		APIKey:     "ollama",
		BaseURL:    baseURL,
		Model:      model,
		Dimension:  dimension,
		BatchSize:  batchSize,
		MaxRetries: 1,
	})
}

func NewOpenAICompatibleEmbedder(opts OpenAIOptions) (*OpenAIEmbedder, error) {
	if opts.Model == "" {
		return nil, fmt.Errorf("%w: embedding model name is empty", domain.ErrModelUnavailable)
	}
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("%w: base URL is empty", domain.ErrModelUnavailable)
	}
	if !strings.HasSuffix(opts.BaseURL, "/") {
		opts.BaseURL += "/"
	}

	dimension := opts.Dimension
	sendDimensions := true
	if d, ok := fixedDimensions[opts.Model]; ok {
		dimension = d
		sendDimensions = false
	}
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: embedding dimension must be positive", domain.ErrModelUnavailable)
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 64
	}

	e := &OpenAIEmbedder{
		sdk: openaisdk.NewClient(
			option.WithAPIKey(opts.APIKey),
			option.WithBaseURL(opts.BaseURL),
			option.WithMaxRetries(opts.MaxRetries),
		),
		model:          opts.Model,
		dimension:      dimension,
		sendDimensions: sendDimensions,
		batchSize:      opts.BatchSize,
	}
	if opts.RateLimit > 0 {
		e.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}
	return e, nil
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	all := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += e.batchSize {
		end := i + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		vecs, err := e.embedBatch(ctx, texts[i:end])
		if err != nil {
			return nil, err
		}
		all = append(all, vecs...)
	}
	return all, nil
}

func (e *OpenAIEmbedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	params := openaisdk.EmbeddingNewParams{
		Input: openaisdk.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
		Model: openaisdk.EmbeddingModel(e.model),
	}
	if e.sendDimensions {
		params.Dimensions = param.NewOpt(int64(e.dimension))
	}

	resp, err := e.sdk.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %s embedding request: %v", domain.ErrModelUnavailable, e.model, err)
	}

	// Results can arrive out of order; index tells where each belongs.
	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(out) {
			continue
		}
		if len(d.Embedding) != e.dimension {
			return nil, fmt.Errorf("%w: got dimension %d, want %d", domain.ErrModelUnavailable, len(d.Embedding), e.dimension)
		}
		vec := make([]float32, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float32(v)
		}
		out[d.Index] = vec
	}
	for i, v := range out {
		if v == nil {
			return nil, fmt.Errorf("%w: %w (text %d)", domain.ErrModelUnavailable, ErrNoEmbeddingInResponse, i)
		}
	}
	return out, nil
}

func (e *OpenAIEmbedder) Dimension() int {
	return e.dimension
}

func (e *OpenAIEmbedder) ModelName() string {
	return e.model
}

// apiKeyOrPlaceholder lets self-hosted endpoints without auth run with no key set.
func apiKeyOrPlaceholder(env string) string {
	if env != "" {
		if key := os.Getenv(env); key != "" {
			return key
		}
	}
	return "none"
}
