package summarizer

import (
	"context"

	"docsum/internal/domain"
	"docsum/internal/prompt"
)

// ZeroShot summarizes the whole input with a single completion.
type ZeroShot struct {
	completer domain.Completer
	prompts   prompt.Resolver
}

var _ domain.Summarizer = (*ZeroShot)(nil)

func NewZeroShot(c domain.Completer, r prompt.Resolver) (*ZeroShot, error) {
	if err := prompt.RequireModes(r, prompt.ModeZeroShot); err != nil {
		return nil, err
	}
	return &ZeroShot{completer: c, prompts: r}, nil
}

func (s *ZeroShot) Summarize(ctx context.Context, text string) (string, error) {
	if err := checkInput(text); err != nil {
		return "", err
	}
	return generateText(ctx, s.completer, s.prompts, prompt.ModeZeroShot, text)
}
