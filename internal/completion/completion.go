// Package completion selects and guards text-generation providers.
package completion

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"docsum/internal/completion/extractive"
	"docsum/internal/completion/openai"
	"docsum/internal/domain"
	"docsum/internal/logger"
	"docsum/internal/openaicompat"
	"docsum/internal/resilience"
)

// Provider names a completion vendor.
type Provider string

const (
	ProviderOpenAI     Provider = "openai"
	ProviderPerplexity Provider = "perplexity"
	ProviderGemini     Provider = "gemini"
	// ProviderExtractive runs offline without any API.
	ProviderExtractive Provider = "extractive"
)

const DefaultModel = "gpt-4o"

// Models maps known model names to their provider.
var Models = map[string]Provider{
	"gpt-5":            ProviderOpenAI,
	"gpt-4.1":          ProviderOpenAI,
	"gpt-4o":           ProviderOpenAI,
	"gpt-4o-mini":      ProviderOpenAI,
	"gpt-4":            ProviderOpenAI,
	"o4-mini":          ProviderOpenAI,
	"gemini-2.5-flash": ProviderGemini,
	"sonar":            ProviderPerplexity,
	"extractive":       ProviderExtractive,
}

var defaultModels = map[Provider]string{
	ProviderOpenAI:     "gpt-4o-mini",
	ProviderPerplexity: "sonar",
	ProviderGemini:     "gemini-2.5-flash",
	ProviderExtractive: "extractive",
}

var baseURLs = map[Provider]string{
	ProviderOpenAI:     openaicompat.OpenAIBaseURL,
	ProviderPerplexity: openaicompat.PerplexityBaseURL,
	ProviderGemini:     openaicompat.GeminiBaseURL,
}

// ModelNames returns the known models sorted by name.
func ModelNames() []string {
	out := make([]string, 0, len(Models))
	for m := range Models {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// ProviderForModel resolves the provider of a model, by exact name first and
// then by family prefix.
func ProviderForModel(model string) (Provider, error) {
	if p, ok := Models[model]; ok {
		return p, nil
	}
	switch {
	case strings.HasPrefix(model, "gpt-"), strings.HasPrefix(model, "o1"), strings.HasPrefix(model, "o3"), strings.HasPrefix(model, "o4"):
		return ProviderOpenAI, nil
	case strings.HasPrefix(model, "gemini-"):
		return ProviderGemini, nil
	case strings.HasPrefix(model, "sonar"):
		return ProviderPerplexity, nil
	}
	return "", fmt.Errorf("unknown model %q", model)
}

// Config selects and parameterizes a provider.
type Config struct {
	// Provider is inferred from Model when empty.
	Provider    Provider
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float64
	TopP        float64
	MaxTokens   int
	// MaxSentences bounds the extractive provider's output.
	MaxSentences int
	// Timeout bounds one HTTP request of a remote provider.
	Timeout time.Duration
	Policy  resilience.Policy
}

// New builds the configured provider wrapped in the resilience guard.
func New(cfg Config) (*Guarded, error) {
	if cfg.Provider == "" {
		if cfg.Model == "" {
			cfg.Model = DefaultModel
		}
		p, err := ProviderForModel(cfg.Model)
		if err != nil {
			return nil, err
		}
		cfg.Provider = p
	}
	if cfg.Model == "" {
		cfg.Model = defaultModels[cfg.Provider]
	}
	var inner domain.Completer
	switch cfg.Provider {
	case ProviderExtractive:
		inner = extractive.NewCompleter(cfg.MaxSentences)
	case ProviderOpenAI, ProviderPerplexity, ProviderGemini:
		base := cfg.BaseURL
		if base == "" {
			base = baseURLs[cfg.Provider]
		}
		c, err := openai.NewCompleter(openai.Config{
			Provider:    string(cfg.Provider),
			APIKey:      cfg.APIKey,
			BaseURL:     base,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			TopP:        cfg.TopP,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		inner = c
	default:
		return nil, fmt.Errorf("unknown completion provider: %s", cfg.Provider)
	}
	return NewGuarded(string(cfg.Provider), inner, cfg.Policy), nil
}

// Guarded applies a resilience policy to a completer and normalizes its
// failures into *domain.CompletionError.
type Guarded struct {
	name   string
	inner  domain.Completer
	policy resilience.Policy
}

var _ domain.Completer = (*Guarded)(nil)

func NewGuarded(name string, inner domain.Completer, policy resilience.Policy) *Guarded {
	return &Guarded{name: name, inner: inner, policy: policy}
}

func (g *Guarded) Name() string { return g.name }

// Offline reports whether the provider needs no network access.
func (g *Guarded) Offline() bool { return g.name == string(ProviderExtractive) }

func (g *Guarded) Complete(ctx context.Context, prompt string) (string, error) {
	log := logger.FromContext(ctx)
	start := time.Now()
	var out string
	err := resilience.Do(ctx, g.policy, func(ctx context.Context) error {
		res, err := g.inner.Complete(ctx, prompt)
		if err != nil {
			return domain.AsCompletionError(g.name, err)
		}
		out = res
		return nil
	})
	if err != nil {
		log.Warn("completion failed", "provider", g.name, "error", err)
		return "", domain.AsCompletionError(g.name, err)
	}
	log.Debug("completion done", "provider", g.name, "prompt_chars", len(prompt), "reply_chars", len(out), "elapsed", time.Since(start))
	return out, nil
}
