package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"docsum/internal/chunker"
	"docsum/internal/completion"
	"docsum/internal/config"
	"docsum/internal/domain"
	"docsum/internal/embedding"
	"docsum/internal/embedding/openai"
	"docsum/internal/embedding/tfidf"
	"docsum/internal/logger"
	"docsum/internal/postprocess"
	"docsum/internal/prompt"
	"docsum/internal/resilience"
	"docsum/internal/service"
	"docsum/internal/summarizer"
)

// summaryService is the subset of the service the commands use.
type summaryService interface {
	Available() []summarizer.Info
	Summarize(ctx context.Context, text string, kind summarizer.Kind) (service.Result, error)
	Process(ctx context.Context, text string, op postprocess.Operation) (string, error)
	Adjust(ctx context.Context, text, audience, style string) (string, error)
	Visualize(ctx context.Context, summary string) (string, error)
	Quote(ctx context.Context, text string) (string, error)
}

type app struct {
	cfg      *config.AppConfig
	service  summaryService
	provider string
}

// appFactory assembles the application from a validated config.
var appFactory = newApp

// setup loads the config, applies command overrides, installs the logger
// and builds the application. The returned context carries the logger.
func setup(cmd *cobra.Command, override func(*config.AppConfig)) (context.Context, *app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	log := logger.Setup(cfg.Log.Level, cfg.Log.JSON)
	ctx := logger.ContextWithLogger(cmd.Context(), log)
	a, err := appFactory(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return ctx, a, nil
}

func loadConfig(cmd *cobra.Command) (*config.AppConfig, error) {
	var cfg *config.AppConfig
	var err error
	if configPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(configPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	e, err := config.LoadEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	cfg.ApplyEnv(e)
	if cmd.Flags().Changed("model") {
		cfg.Provider.Model = modelName
		cfg.Provider.Name = ""
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if cmd.Flags().Changed("log-json") {
		cfg.Log.JSON = logJSON
	}
	return cfg, nil
}

func newApp(ctx context.Context, cfg *config.AppConfig) (*app, error) {
	policy := cfg.Policy()
	provider := completion.Provider(cfg.Provider.Name)
	if provider == "" {
		model := cfg.Provider.Model
		if model == "" {
			model = completion.DefaultModel
		}
		p, err := completion.ProviderForModel(model)
		if err != nil {
			return nil, err
		}
		provider = p
	}
	comp, err := completion.New(completion.Config{
		Provider:     provider,
		Model:        cfg.Provider.Model,
		APIKey:       cfg.APIKey(string(provider)),
		BaseURL:      cfg.Provider.BaseURL,
		Temperature:  cfg.Provider.Temperature,
		TopP:         cfg.Provider.TopP,
		MaxTokens:    cfg.Provider.MaxTokens,
		MaxSentences: cfg.Provider.MaxSentences,
		Timeout:      time.Duration(cfg.Provider.TimeoutSecs) * time.Second,
		Policy:       policy,
	})
	if err != nil {
		return nil, err
	}

	reg, err := loadPrompts(cfg.Prompts.Path)
	if err != nil {
		return nil, err
	}
	if comp.Offline() {
		if reg, err = prompt.Passthrough(reg); err != nil {
			return nil, err
		}
	}

	emb, err := buildEmbedder(cfg, policy)
	if err != nil {
		logger.FromContext(ctx).Warn("rag disabled", "error", err)
		emb = nil
	}
	ch, err := buildChunker(cfg.Chunker)
	if err != nil {
		return nil, err
	}
	query, err := summarizer.ParseQueryMode(cfg.RAG.Query)
	if err != nil {
		return nil, err
	}

	svc, err := service.NewSummaryService(comp, reg, service.Options{
		Embedder: emb,
		RAG: []summarizer.RAGOption{
			summarizer.WithChunker(ch),
			summarizer.WithTopK(cfg.RAG.TopK),
			summarizer.WithSeparator(cfg.RAG.Separator),
			summarizer.WithQueryMode(query),
		},
		MapReduce:        []summarizer.MapReduceOption{summarizer.WithConcurrency(cfg.MapReduce.Concurrency)},
		QuoteConcurrency: cfg.MapReduce.Concurrency,
		CacheSize:        cfg.Cache.Size,
		CacheTTL:         time.Duration(cfg.Cache.TTLSecs) * time.Second,
	})
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, service: svc, provider: comp.Name()}, nil
}

func loadPrompts(path string) (*prompt.Registry, error) {
	if path == "" {
		return prompt.Default()
	}
	return prompt.LoadFile(path)
}

// buildEmbedder returns nil and an error when the configured embedder cannot
// be constructed, which leaves the RAG strategy unavailable.
func buildEmbedder(cfg *config.AppConfig, policy resilience.Policy) (domain.Embedder, error) {
	switch cfg.Embedder.Type {
	case "tfidf", "":
		return tfidf.NewEmbedder(), nil
	case "openai":
		oc := cfg.Embedder.OpenAI
		if oc == nil {
			return nil, fmt.Errorf("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			APIKey:        cfg.Keys.OpenAI,
			BaseURL:       oc.BaseURL,
			Model:         oc.Model,
			Dimensions:    oc.Dimensions,
			BatchSize:     oc.BatchSize,
			Timeout:       time.Duration(oc.TimeoutSecs) * time.Second,
			MaxInputWords: oc.MaxInputWords,
		})
		if err != nil {
			return nil, err
		}
		guarded := embedding.NewGuarded(client, policy)
		if cfg.Embedder.CacheSize <= 0 {
			return guarded, nil
		}
		return embedding.NewCached(guarded, cfg.Embedder.CacheSize)
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}
}

func buildChunker(cfg config.ChunkerConfig) (domain.Chunker, error) {
	switch cfg.Type {
	case "sentence":
		return chunker.NewSentenceChunker(cfg.SentencesPerChunk, cfg.OverlapSentences), nil
	case "word", "":
		return chunker.NewWordChunker(cfg.ChunkSize, cfg.Overlap)
	default:
		return nil, fmt.Errorf("unknown chunker: %s", cfg.Type)
	}
}
