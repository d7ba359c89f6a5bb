package summarizer

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"docsum/internal/domain"
	"docsum/internal/logger"
	"docsum/internal/prompt"
)

const DefaultConcurrency = 4

// MapReduce summarizes every paragraph independently, then summarizes the
// space-joined partial summaries. It makes P+1 completions for P paragraphs.
type MapReduce struct {
	completer   domain.Completer
	prompts     prompt.Resolver
	concurrency int
}

var _ domain.Summarizer = (*MapReduce)(nil)

type MapReduceOption func(*MapReduce)

// WithConcurrency bounds in-flight map completions. 1 runs them sequentially.
func WithConcurrency(n int) MapReduceOption {
	return func(m *MapReduce) {
		if n > 0 {
			m.concurrency = n
		}
	}
}

func NewMapReduce(c domain.Completer, r prompt.Resolver, opts ...MapReduceOption) (*MapReduce, error) {
	if err := prompt.RequireModes(r, prompt.ModeMap, prompt.ModeReduce); err != nil {
		return nil, err
	}
	m := &MapReduce{completer: c, prompts: r, concurrency: DefaultConcurrency}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func (m *MapReduce) Summarize(ctx context.Context, text string) (string, error) {
	if err := checkInput(text); err != nil {
		return "", err
	}
	paragraphs := SplitParagraphs(text)
	partials, err := mapEach(ctx, m.concurrency, paragraphs, func(ctx context.Context, p string) (string, error) {
		return generateText(ctx, m.completer, m.prompts, prompt.ModeMap, p)
	})
	if err != nil {
		return "", err
	}
	logger.FromContext(ctx).Debug("map phase done", "paragraphs", len(paragraphs))
	return generateText(ctx, m.completer, m.prompts, prompt.ModeReduce, strings.Join(partials, " "))
}

// mapEach runs fn over items with bounded concurrency and returns results in
// input order. The first failure cancels the remaining calls.
func mapEach(ctx context.Context, limit int, items []string, fn func(context.Context, string) (string, error)) ([]string, error) {
	out := make([]string, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(limit, 1))
	for i, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := fn(gctx, item)
			if err != nil {
				return err
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, domain.AsCompletionError("", err)
	}
	return out, nil
}
