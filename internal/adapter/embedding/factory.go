package embedding

import (
	"fmt"

	"foodrec/config"
	"foodrec/internal/domain"
	"foodrec/internal/port"
)

// New builds the embedder named by cfg.Provider.
func New(cfg config.EmbeddingConfig) (port.Embedder, error) {
	var (
		embedder port.Embedder
		err      error
	)

	switch cfg.Provider {
	case "", "hashing":
		embedder = NewHashingEmbedder(cfg.Dimension)
	case "onnx":
		embedder, err = NewONNXEmbedder(ONNXOptions{
			LibraryPath:   cfg.ONNX.LibraryPath,
			ModelPath:     cfg.ONNX.ModelPath,
			TokenizerPath: cfg.ONNX.TokenizerPath,
			Dimension:     cfg.Dimension,
			MaxSeqLen:     cfg.ONNX.MaxSeqLen,
		})
	case "openai":
		embedder, err = NewOpenAIEmbedder(cfg.APIKeyEnv, cfg.Model, cfg.Dimension, cfg.BatchSize, cfg.RateLimit)
	case "jina":
		embedder, err = NewJinaEmbedder(cfg.APIKeyEnv, cfg.Model, cfg.Dimension, cfg.BatchSize, cfg.RateLimit)
	case "ollama":
		embedder, err = NewOllamaEmbedder(cfg.Model, cfg.BaseURL, cfg.Dimension, cfg.BatchSize)
	case "compatible":
		embedder, err = NewOpenAICompatibleEmbedder(OpenAIOptions{
			APIKey:     apiKeyOrPlaceholder(cfg.APIKeyEnv),
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimension:  cfg.Dimension,
			BatchSize:  cfg.BatchSize,
			RateLimit:  cfg.RateLimit,
			MaxRetries: 2,
		})
	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider: %s", domain.ErrModelUnavailable, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return embedder, nil
}
