package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"docsum/internal/domain"
	"docsum/internal/openaicompat"
)

// Config configures a chat completion client for an OpenAI-compatible vendor.
type Config struct {
	// Provider names the vendor in errors and logs.
	Provider    string
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	TopP        float64
	MaxTokens   int
	Timeout     time.Duration
}

// Completer calls the chat completions endpoint with a single user message.
type Completer struct {
	client openai.Client
	cfg    Config
}

var _ domain.Completer = (*Completer)(nil)

func NewCompleter(cfg Config) (*Completer, error) {
	if cfg.Provider == "" {
		cfg.Provider = "openai"
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: missing API key", cfg.Provider)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%s: missing model", cfg.Provider)
	}
	var opts []option.RequestOption
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	return &Completer{
		client: openaicompat.NewClient(cfg.APIKey, cfg.BaseURL, opts...),
		cfg:    cfg,
	}, nil
}

func (c *Completer) Name() string { return c.cfg.Provider }

func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(c.cfg.Temperature),
	}
	if c.cfg.TopP > 0 {
		params.TopP = openai.Float(c.cfg.TopP)
	}
	if c.cfg.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(c.cfg.MaxTokens))
	}
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", &domain.CompletionError{
			Provider:  c.cfg.Provider,
			Retryable: openaicompat.Retryable(err),
			Err:       fmt.Errorf("do request: %w", err),
		}
	}
	if len(resp.Choices) == 0 {
		return "", &domain.CompletionError{Provider: c.cfg.Provider, Err: errors.New("response has no choices")}
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
