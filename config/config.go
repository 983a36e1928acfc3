package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the food recommender.
type Config struct {
	Catalog   CatalogConfig   `yaml:"catalog"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Recommend RecommendConfig `yaml:"recommend"`
	Search    SearchConfig    `yaml:"search"`
	Cache     CacheConfig     `yaml:"cache"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// CatalogConfig locates the JSON catalog snapshot.
type CatalogConfig struct {
	Dir             string   `yaml:"dir"`
	LabelPatterns   []string `yaml:"label_patterns"`
	ExcludePatterns []string `yaml:"exclude_patterns"`
	NutrientsFile   string   `yaml:"nutrients_file"`
}

// EmbeddingConfig holds embedding configuration.
type EmbeddingConfig struct {
	Provider  string     `yaml:"provider"`    // "hashing", "onnx", "openai", "ollama", "jina", "compatible"
	Model     string     `yaml:"model"`       // e.g., "text-embedding-3-small"
	BaseURL   string     `yaml:"base_url"`    // OpenAI-compatible endpoint
	APIKeyEnv string     `yaml:"api_key_env"` // Environment variable for API key
	Dimension int        `yaml:"dimension"`
	BatchSize int        `yaml:"batch_size"`
	RateLimit float64    `yaml:"rate_limit"` // Requests per second for remote providers (0 = unlimited)
	ONNX      ONNXConfig `yaml:"onnx"`
}

// ONNXConfig configures the local sentence-transformer backend.
type ONNXConfig struct {
	LibraryPath   string `yaml:"library_path"`
	ModelPath     string `yaml:"model_path"`
	TokenizerPath string `yaml:"tokenizer_path"`
	MaxSeqLen     int    `yaml:"max_seq_len"`
}

// ScoringConfig holds the nutrient weight table and sigmoid scale.
type ScoringConfig struct {
	Scale   float64            `yaml:"scale"`
	Weights map[string]float64 `yaml:"weights"`
}

// RecommendConfig holds recommendation configuration.
type RecommendConfig struct {
	TopK         int     `yaml:"top_k"`
	UnknownScore float64 `yaml:"unknown_score"` // Score assumed for URIs missing from the score table
}

// SearchConfig holds free-text search configuration.
type SearchConfig struct {
	TopK    int `yaml:"top_k"`
	MaxTopK int `yaml:"max_top_k"`
}

// CacheConfig holds encode cache configuration.
type CacheConfig struct {
	Enabled   bool `yaml:"enabled"`    // Persist catalog label vectors in .foodrec/cache.db
	QuerySize int  `yaml:"query_size"` // LRU entries for query vectors (0 = disabled)
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string        `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// DefaultWeights is the nutrient weight table: desirable nutrients weigh +1,
// undesirable ones -1.
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		"alcohol":                            -1,
		"calcium":                            1,
		"carbohydrate":                       -1,
		"fat, total":                         -1,
		"fatty acids, total polyunsaturated": 1,
		"fatty acids, total saturated":       -1,
		"fatty acids, total trans":           -1,
		"fibre, total dietary":               1,
		"protein, total":                     1,
		"vitamin B-12":                       1,
		"vitamin B-6, total":                 1,
		"vitamin C":                          1,
		"vitamin D":                          1,
		"vitamin E; alpha-tocopherol equiv from E vitamer activities": 1,
		"vitamin K, total":                 1,
		"energy kcal, total metabolisable": -1,
		"thiamin":                          1,
		"sugars, total":                    -1,
	}
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Dir:             "data",
			LabelPatterns:   []string{"food_item_labels_*.json"},
			ExcludePatterns: []string{"**/.foodrec/**"},
			NutrientsFile:   "nutrient_amounts_for_food_items.json",
		},
		Embedding: EmbeddingConfig{
			Provider:  "hashing", // Works offline; switch to "onnx" or "openai" for a trained model
			Model:     "foodrec-hashing-v1",
			APIKeyEnv: "OPENAI_API_KEY",
			Dimension: 384,
			BatchSize: 64,
			ONNX: ONNXConfig{
				MaxSeqLen: 128,
			},
		},
		Scoring: ScoringConfig{
			Scale:   0.01,
			Weights: DefaultWeights(),
		},
		Recommend: RecommendConfig{
			TopK:         10,
			UnknownScore: 0,
		},
		Search: SearchConfig{
			TopK:    20,
			MaxTopK: 100,
		},
		Cache: CacheConfig{
			Enabled:   false,
			QuerySize: 1000,
		},
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

var supportedProviders = map[string]struct{}{
	"hashing":    {},
	"onnx":       {},
	"openai":     {},
	"ollama":     {},
	"jina":       {},
	"compatible": {},
}

// Validate checks values that would otherwise fail deep inside the engine.
func (c *Config) Validate() error {
	if _, ok := supportedProviders[c.Embedding.Provider]; !ok {
		return fmt.Errorf("unsupported embedding provider: %s", c.Embedding.Provider)
	}
	if c.Embedding.Dimension <= 0 {
		return fmt.Errorf("embedding.dimension must be positive, got %d", c.Embedding.Dimension)
	}
	if c.Embedding.BatchSize <= 0 {
		return fmt.Errorf("embedding.batch_size must be positive, got %d", c.Embedding.BatchSize)
	}
	if c.Embedding.RateLimit < 0 {
		return fmt.Errorf("embedding.rate_limit must not be negative")
	}
	if c.Scoring.Scale <= 0 {
		return fmt.Errorf("scoring.scale must be positive, got %g", c.Scoring.Scale)
	}
	if c.Recommend.TopK <= 0 {
		return fmt.Errorf("recommend.top_k must be positive, got %d", c.Recommend.TopK)
	}
	if c.Search.TopK <= 0 || c.Search.MaxTopK < c.Search.TopK {
		return fmt.Errorf("search.top_k must be positive and not above search.max_top_k")
	}
	if c.Cache.QuerySize < 0 {
		return fmt.Errorf("cache.query_size must not be negative")
	}
	if len(c.Catalog.LabelPatterns) == 0 {
		return fmt.Errorf("catalog.label_patterns must not be empty")
	}
	return nil
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	// A weights section in YAML replaces the default table rather than merging into it.
	cfg.Scoring.Weights = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Scoring.Weights == nil {
		cfg.Scoring.Weights = DefaultWeights()
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for foodrec.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "foodrec.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".foodrec", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// CatalogDir resolves the catalog directory against the project root.
func (c *Config) CatalogDir(root string) string {
	if filepath.IsAbs(c.Catalog.Dir) {
		return c.Catalog.Dir
	}
	return filepath.Join(root, c.Catalog.Dir)
}

// CacheDBPath returns the path to the encode cache database.
func CacheDBPath(dir string) string {
	return filepath.Join(dir, ".foodrec", "cache.db")
}

// EnsureDataDir ensures the .foodrec directory exists.
func EnsureDataDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".foodrec"), 0755)
}
