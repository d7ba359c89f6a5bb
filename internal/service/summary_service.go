package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"docsum/internal/document"
	"docsum/internal/domain"
	"docsum/internal/logger"
	"docsum/internal/postprocess"
	"docsum/internal/prompt"
	"docsum/internal/summarizer"
)

// Options configures the service. A nil Embedder disables the RAG strategy.
type Options struct {
	Embedder         domain.Embedder
	RAG              []summarizer.RAGOption
	MapReduce        []summarizer.MapReduceOption
	QuoteConcurrency int
	// CacheSize > 0 enables the summary cache.
	CacheSize int
	CacheTTL  time.Duration
}

// Result is a summary with metadata for presentation.
type Result struct {
	Summary       string           `json:"summary"`
	Kind          string           `json:"method"`
	Elapsed       time.Duration    `json:"elapsed_ns"`
	Source        document.Metrics `json:"source"`
	SummaryLength document.Metrics `json:"summary_metrics"`
	Cached        bool             `json:"cached"`
}

// SummaryService is the synchronous entry point used by the CLI and TUI.
type SummaryService struct {
	strategies map[summarizer.Kind]domain.Summarizer
	processor  *postprocess.Processor
	quoter     *summarizer.Quoter
	cache      *expirable.LRU[string, string]
}

func NewSummaryService(c domain.Completer, r prompt.Resolver, opts Options) (*SummaryService, error) {
	s := &SummaryService{strategies: map[summarizer.Kind]domain.Summarizer{}}
	deps := summarizer.Deps{
		Completer: c,
		Prompts:   r,
		Embedder:  opts.Embedder,
		RAG:       opts.RAG,
		MapReduce: opts.MapReduce,
	}
	for _, info := range summarizer.Kinds() {
		if info.Kind == summarizer.KindRAG && opts.Embedder == nil {
			continue
		}
		st, err := summarizer.New(info.Kind, deps)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", info.Name, err)
		}
		s.strategies[info.Kind] = st
	}
	p, err := postprocess.New(c, r)
	if err != nil {
		return nil, err
	}
	s.processor = p
	q, err := summarizer.NewQuoter(c, r, opts.QuoteConcurrency)
	if err != nil {
		return nil, err
	}
	s.quoter = q
	if opts.CacheSize > 0 {
		s.cache = expirable.NewLRU[string, string](opts.CacheSize, nil, opts.CacheTTL)
	}
	return s, nil
}

// Available lists the strategies this service can run.
func (s *SummaryService) Available() []summarizer.Info {
	var out []summarizer.Info
	for _, info := range summarizer.Kinds() {
		if _, ok := s.strategies[info.Kind]; ok {
			out = append(out, info)
		}
	}
	return out
}

// Summarize runs the strategy of the given kind. Failures are never cached.
func (s *SummaryService) Summarize(ctx context.Context, text string, kind summarizer.Kind) (Result, error) {
	st, ok := s.strategies[kind]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s is not configured", domain.ErrUnknownStrategy, kind)
	}
	log := logger.FromContext(ctx).With("method", kind.String())
	res := Result{Kind: kind.String(), Source: document.Measure(text)}
	start := time.Now()

	key := cacheKey(kind.String(), text)
	if s.cache != nil {
		if summary, ok := s.cache.Get(key); ok {
			res.Summary, res.Cached = summary, true
			res.SummaryLength = document.Measure(summary)
			log.Debug("summary cache hit")
			return res, nil
		}
	}
	summary, err := st.Summarize(ctx, text)
	if err != nil {
		log.Warn("summarize failed", "error", err)
		return Result{}, err
	}
	if s.cache != nil {
		s.cache.Add(key, summary)
	}
	res.Summary = summary
	res.Elapsed = time.Since(start)
	res.SummaryLength = document.Measure(summary)
	log.Info("summary ready", "words_in", res.Source.Words, "words_out", res.SummaryLength.Words, "elapsed", res.Elapsed)
	return res, nil
}

func (s *SummaryService) Process(ctx context.Context, text string, op postprocess.Operation) (string, error) {
	return s.processor.Process(ctx, text, op)
}

func (s *SummaryService) Adjust(ctx context.Context, text, audience, style string) (string, error) {
	return s.processor.Adjust(ctx, text, audience, style)
}

func (s *SummaryService) Visualize(ctx context.Context, summary string) (string, error) {
	return s.processor.Visualize(ctx, summary)
}

func (s *SummaryService) Quote(ctx context.Context, text string) (string, error) {
	return s.quoter.Quote(ctx, text)
}

func cacheKey(kind, text string) string {
	h := sha256.Sum256([]byte(text))
	return kind + ":" + hex.EncodeToString(h[:])
}
