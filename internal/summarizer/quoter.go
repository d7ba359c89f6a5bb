package summarizer

import (
	"context"
	"errors"
	"strings"

	"docsum/internal/domain"
	"docsum/internal/prompt"
)

// Quoter picks the most representative verbatim quote of a document: one
// candidate per paragraph, then a judging completion over all candidates.
type Quoter struct {
	completer   domain.Completer
	prompts     prompt.Resolver
	concurrency int
}

func NewQuoter(c domain.Completer, r prompt.Resolver, concurrency int) (*Quoter, error) {
	if err := prompt.RequireModes(r, prompt.ModeQuote, prompt.ModeJudgeQuote); err != nil {
		return nil, err
	}
	return &Quoter{completer: c, prompts: r, concurrency: max(concurrency, 1)}, nil
}

func (q *Quoter) Quote(ctx context.Context, text string) (string, error) {
	if err := checkInput(text); err != nil {
		return "", err
	}
	candidates, err := mapEach(ctx, q.concurrency, SplitParagraphs(text), func(ctx context.Context, p string) (string, error) {
		return generateText(ctx, q.completer, q.prompts, prompt.ModeQuote, p)
	})
	if err != nil {
		return "", err
	}
	quotes := candidates[:0]
	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" {
			quotes = append(quotes, c)
		}
	}
	if len(quotes) == 0 {
		return "", &domain.CompletionError{Provider: providerName(q.completer), Err: errors.New("no candidate quotes returned")}
	}
	return generate(ctx, q.completer, q.prompts, prompt.ModeJudgeQuote, map[string]string{"quotes": strings.Join(quotes, "\n")})
}
