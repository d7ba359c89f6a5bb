package openai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"docsum/internal/chunker"
	"docsum/internal/domain"
	"docsum/internal/openaicompat"
)

// DefaultMaxInputWords keeps a single input under the 8192-token limit of the
// OpenAI embedding models.
const DefaultMaxInputWords = 6000

// Client is an OpenAI-compatible embeddings client.
type Client struct {
	client        openai.Client
	model         string
	dimensions    int
	batchSize     int
	maxInputWords int
}

var _ domain.BatchEmbedder = (*Client)(nil)

// Config configures the OpenAI-compatible embeddings client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	// Dimensions requests shortened vectors from models that support it. Zero keeps the model default.
	Dimensions int
	BatchSize  int
	Timeout    time.Duration
	// MaxInputWords bounds one embeddings input. Longer texts are embedded in
	// windows and averaged.
	MaxInputWords int
}

// NewClient creates a new embeddings client using the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai embedder: missing API key")
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 32
	}
	if cfg.MaxInputWords <= 0 {
		cfg.MaxInputWords = DefaultMaxInputWords
	}
	var opts []option.RequestOption
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	return &Client{
		client:        openaicompat.NewClient(cfg.APIKey, cfg.BaseURL, opts...),
		model:         cfg.Model,
		dimensions:    cfg.Dimensions,
		batchSize:     cfg.BatchSize,
		maxInputWords: cfg.MaxInputWords,
	}, nil
}

// Name returns the identifier of this embedder implementation.
func (c *Client) Name() string { return "openai" }

// Embed returns an embedding vector for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	vecs, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in requests of at most BatchSize inputs. A text
// longer than MaxInputWords is split into windows whose vectors are averaged,
// weighted by word count, and L2-normalized.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	var inputs []string
	var owners []int
	var weights []float64
	for i, text := range texts {
		pieces := []string{text}
		if len(strings.Fields(text)) > c.maxInputWords {
			windows, err := chunker.SplitWords(text, c.maxInputWords, 0)
			if err != nil {
				return nil, &domain.EmbeddingError{Provider: c.Name(), Err: err}
			}
			pieces = windows
		}
		for _, p := range pieces {
			inputs = append(inputs, p)
			owners = append(owners, i)
			weights = append(weights, float64(max(len(strings.Fields(p)), 1)))
		}
	}

	vecs := make([][]float64, 0, len(inputs))
	for start := 0; start < len(inputs); start += c.batchSize {
		end := min(start+c.batchSize, len(inputs))
		batch, err := c.embed(ctx, inputs[start:end])
		if err != nil {
			return nil, err
		}
		vecs = append(vecs, batch...)
	}
	if len(inputs) == len(texts) {
		return vecs, nil
	}

	out := make([][]float64, len(texts))
	total := make([]float64, len(texts))
	for j, v := range vecs {
		i := owners[j]
		if out[i] == nil {
			out[i] = make([]float64, len(v))
		}
		if len(v) != len(out[i]) {
			return nil, &domain.EmbeddingError{Provider: c.Name(), Err: fmt.Errorf("window dimension %d, want %d", len(v), len(out[i]))}
		}
		for d, x := range v {
			out[i][d] += weights[j] * x
		}
		total[i] += weights[j]
	}
	for i, v := range out {
		for d := range v {
			v[d] /= total[i]
		}
		normalize(v)
	}
	return out, nil
}

func normalize(v []float64) {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	n := math.Sqrt(sum)
	for i := range v {
		v[i] /= n
	}
}

func (c *Client) embed(ctx context.Context, texts []string) ([][]float64, error) {
	params := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model: openai.EmbeddingModel(c.model),
	}
	if c.dimensions > 0 {
		params.Dimensions = openai.Int(int64(c.dimensions))
	}
	resp, err := c.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, &domain.EmbeddingError{Provider: c.Name(), Retryable: openaicompat.Retryable(err), Err: fmt.Errorf("do request: %w", err)}
	}
	if len(resp.Data) != len(texts) {
		return nil, &domain.EmbeddingError{
			Provider: c.Name(),
			Err:      fmt.Errorf("got %d embeddings for %d inputs", len(resp.Data), len(texts)),
		}
	}
	// the API may return items out of order; Index is authoritative
	vecs := make([][]float64, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(texts) || vecs[d.Index] != nil {
			return nil, &domain.EmbeddingError{Provider: c.Name(), Err: fmt.Errorf("bad embedding index %d", d.Index)}
		}
		if len(d.Embedding) == 0 {
			return nil, &domain.EmbeddingError{Provider: c.Name(), Err: errors.New("empty embedding")}
		}
		vecs[d.Index] = d.Embedding
	}
	return vecs, nil
}
