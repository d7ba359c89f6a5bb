package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"docsum/internal/resilience"
)

// ProviderConfig selects the completion provider and its sampling parameters.
type ProviderConfig struct {
	// Name is inferred from Model when empty.
	Name         string  `yaml:"name,omitempty"`
	Model        string  `yaml:"model"`
	BaseURL      string  `yaml:"base_url,omitempty"`
	Temperature  float64 `yaml:"temperature"`
	TopP         float64 `yaml:"top_p"`
	MaxTokens    int     `yaml:"max_tokens"`
	MaxSentences int     `yaml:"max_sentences,omitempty"`
	// TimeoutSecs bounds one HTTP request. Zero leaves only the resilience timeout.
	TimeoutSecs int `yaml:"timeout_secs,omitempty"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL       string `yaml:"base_url"`
	Model         string `yaml:"model"`
	Dimensions    int    `yaml:"dimensions,omitempty"`
	TimeoutSecs   int    `yaml:"timeout_secs"`
	BatchSize     int    `yaml:"batch_size"`
	MaxInputWords int    `yaml:"max_input_words"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type      string                `yaml:"type"`
	OpenAI    *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
	CacheSize int                   `yaml:"cache_size"`
}

// ChunkerConfig configures how documents are split into chunks for RAG.
type ChunkerConfig struct {
	Type              string `yaml:"type"`
	ChunkSize         int    `yaml:"chunk_size"`
	Overlap           int    `yaml:"overlap"`
	SentencesPerChunk int    `yaml:"sentences_per_chunk"`
	OverlapSentences  int    `yaml:"overlap_sentences"`
}

type RAGConfig struct {
	TopK      int    `yaml:"top_k"`
	Separator string `yaml:"separator"`
	// Query is "document" or "key_topics".
	Query string `yaml:"query"`
}

type MapReduceConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// ResilienceConfig bounds every call to a completion or embedding provider.
type ResilienceConfig struct {
	TimeoutSecs       int     `yaml:"timeout_secs"`
	Retries           int     `yaml:"retries"`
	BackoffMillis     int     `yaml:"backoff_ms"`
	MaxBackoffMillis  int     `yaml:"max_backoff_ms"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

type PromptsConfig struct {
	// Path to a YAML file whose modes override the built-in prompts.
	Path string `yaml:"path,omitempty"`
}

type CacheConfig struct {
	Size    int `yaml:"size"`
	TTLSecs int `yaml:"ttl_secs"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Keys holds provider credentials. They are read from the environment only.
type Keys struct {
	OpenAI     string `env:"OPENAI_API_KEY"`
	Perplexity string `env:"PERPLEXITY_API_KEY"`
	Google     string `env:"GOOGLE_API_KEY"`
}

// Env lists the supported environment overrides.
type Env struct {
	Keys
	Model    string `env:"DOCSUM_MODEL"`
	Provider string `env:"DOCSUM_PROVIDER"`
	Method   string `env:"DOCSUM_METHOD"`
	LogLevel string `env:"DOCSUM_LOG_LEVEL"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Method     string           `yaml:"method"`
	Provider   ProviderConfig   `yaml:"provider"`
	Embedder   EmbedderConfig   `yaml:"embedder"`
	Chunker    ChunkerConfig    `yaml:"chunker"`
	RAG        RAGConfig        `yaml:"rag"`
	MapReduce  MapReduceConfig  `yaml:"map_reduce"`
	Resilience ResilienceConfig `yaml:"resilience"`
	Prompts    PromptsConfig    `yaml:"prompts"`
	Cache      CacheConfig      `yaml:"cache"`
	Log        LogConfig        `yaml:"log"`
	Keys       Keys             `yaml:"-"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyConfigDefaults(cfg)
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/docsum/config.yaml.
// If neither exists, it writes defaults to ~/.config/docsum/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := Default()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadEnv reads credentials and overrides from the environment.
func LoadEnv() (Env, error) {
	return env.ParseAs[Env]()
}

// ApplyEnv copies credentials and non-empty overrides into cfg.
func (c *AppConfig) ApplyEnv(e Env) {
	c.Keys = e.Keys
	if e.Model != "" {
		c.Provider.Model = e.Model
		if e.Provider == "" {
			c.Provider.Name = ""
		}
	}
	if e.Provider != "" {
		c.Provider.Name = e.Provider
	}
	if e.Method != "" {
		c.Method = e.Method
	}
	if e.LogLevel != "" {
		c.Log.Level = e.LogLevel
	}
}

// APIKey returns the credential for a provider name.
func (c *AppConfig) APIKey(provider string) string {
	switch provider {
	case "openai":
		return c.Keys.OpenAI
	case "perplexity":
		return c.Keys.Perplexity
	case "gemini":
		return c.Keys.Google
	}
	return ""
}

// Validate rejects settings that cannot work at runtime.
func (c *AppConfig) Validate() error {
	var errs []error
	switch c.Embedder.Type {
	case "tfidf", "openai":
	default:
		errs = append(errs, fmt.Errorf("unknown embedder: %s", c.Embedder.Type))
	}
	switch c.Chunker.Type {
	case "word":
		if c.Chunker.Overlap < 0 || c.Chunker.Overlap >= c.Chunker.ChunkSize {
			errs = append(errs, fmt.Errorf("chunker overlap %d must be in [0, chunk_size %d)", c.Chunker.Overlap, c.Chunker.ChunkSize))
		}
	case "sentence":
	default:
		errs = append(errs, fmt.Errorf("unknown chunker: %s", c.Chunker.Type))
	}
	if c.RAG.TopK <= 0 {
		errs = append(errs, fmt.Errorf("rag top_k must be positive, got %d", c.RAG.TopK))
	}
	switch c.RAG.Query {
	case "document", "key_topics":
	default:
		errs = append(errs, fmt.Errorf("unknown rag query: %s", c.RAG.Query))
	}
	if c.Resilience.Retries < 0 {
		errs = append(errs, fmt.Errorf("resilience retries must not be negative, got %d", c.Resilience.Retries))
	}
	return errors.Join(errs...)
}

// Policy converts the resilience section.
func (c *AppConfig) Policy() resilience.Policy {
	r := c.Resilience
	return resilience.Policy{
		Timeout:    time.Duration(r.TimeoutSecs) * time.Second,
		Retries:    uint64(max(r.Retries, 0)),
		Backoff:    time.Duration(r.BackoffMillis) * time.Millisecond,
		MaxBackoff: time.Duration(r.MaxBackoffMillis) * time.Millisecond,
		Limiter:    resilience.NewLimiter(r.RequestsPerSecond, r.Burst),
	}
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "docsum", "config.yaml"), nil
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	cfg := &AppConfig{
		Method: "zero_shot",
		Provider: ProviderConfig{
			Model:     "gpt-4o",
			TopP:      0.05,
			MaxTokens: 3500,
		},
		Embedder:  EmbedderConfig{Type: "tfidf", CacheSize: 4096},
		Chunker:   ChunkerConfig{Type: "word", ChunkSize: 500, Overlap: 50, SentencesPerChunk: 5, OverlapSentences: 1},
		RAG:       RAGConfig{TopK: 3, Separator: "\n\n", Query: "document"},
		MapReduce: MapReduceConfig{Concurrency: 4},
		Resilience: ResilienceConfig{
			TimeoutSecs:      30,
			Retries:          1,
			BackoffMillis:    500,
			MaxBackoffMillis: 5000,
		},
		Cache: CacheConfig{Size: 64, TTLSecs: 3600},
		Log:   LogConfig{Level: "warn"},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Method == "" {
		cfg.Method = "zero_shot"
	}
	if cfg.Chunker.Type == "" {
		cfg.Chunker.Type = "word"
	}
	if cfg.Chunker.ChunkSize == 0 {
		cfg.Chunker.ChunkSize = 500
	}
	if cfg.Chunker.SentencesPerChunk == 0 {
		cfg.Chunker.SentencesPerChunk = 5
	}
	if cfg.RAG.Query == "" {
		cfg.RAG.Query = "document"
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "tfidf"
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
		}
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
		if cfg.Embedder.OpenAI.BatchSize == 0 {
			cfg.Embedder.OpenAI.BatchSize = 32
		}
		if cfg.Embedder.OpenAI.MaxInputWords == 0 {
			cfg.Embedder.OpenAI.MaxInputWords = 6000
		}
	}
}
